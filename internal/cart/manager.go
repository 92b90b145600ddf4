package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"go.uber.org/zap"
)

// Manager is the only writer of cart and item internals. It mutates carts,
// sequences lifecycle events around the mutations and delegates pricing.
//
// A cart must not be handed to two goroutines at once; Manager does no locking.
type Manager struct {
	pricing  PricingProvider
	notifier Notifier
	repo     Repository
	logger   *zap.Logger

	// mergeOrderedQuantity switches the merge path of AddProductToCart from
	// "+1" to "+orderedQuantity".
	mergeOrderedQuantity bool
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithRepository(r Repository) Option {
	return func(m *Manager) {
		m.repo = r
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithOrderedQuantityMerge makes AddProductToCart honour orderedQuantity.
// Disabled by default: adding an existing product increments its quantity by one.
func WithOrderedQuantityMerge(enabled bool) Option {
	return func(m *Manager) {
		m.mergeOrderedQuantity = enabled
	}
}

func NewManager(pricing PricingProvider, opts ...Option) *Manager {
	m := &Manager{
		pricing:  pricing,
		notifier: NopNotifier{},
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) PricingProvider() PricingProvider {
	return m.pricing
}

// CreateCart creates an open cart of the given type. Pricing set and state are
// assigned before EventCartInit is dispatched.
func (m *Manager) CreateCart(ctx context.Context, cartType string) (*Cart, error) {
	if cartType == "" {
		cartType = DefaultType
	}

	c := newCart(cartType)
	if err := m.initCart(ctx, c); err != nil {
		return nil, fmt.Errorf("initCart: %w", err)
	}

	m.logger.Debug("cart created", zap.Stringer("cart_id", c.id), zap.String("cart_type", cartType))

	return c, nil
}

func (m *Manager) initCart(ctx context.Context, c *Cart) error {
	m.SetCartPricingSet(c, m.pricing.CreatePricingSet())
	m.SetCartState(c, StateOpen)

	if err := m.notifier.Dispatch(ctx, EventCartInit, CartEvent{Cart: c}); err != nil {
		return fmt.Errorf("notifier.Dispatch(%s): %w", EventCartInit, err)
	}

	return nil
}

// AddProductToCart adds the product as a new item, or bumps the quantity of
// the item already holding it. options are stored on new items only.
func (m *Manager) AddProductToCart(c *Cart, product domain.Product, options map[string]string, orderedQuantity int) (*Item, error) {
	if product == nil {
		return nil, ErrInvalidProduct
	}

	step := 1
	if m.mergeOrderedQuantity {
		if orderedQuantity < 0 {
			return nil, fmt.Errorf("orderedQuantity[%d]: %w", orderedQuantity, ErrInvalidQuantity)
		}
		if orderedQuantity > 0 {
			step = orderedQuantity
		}
	}

	if item := m.FindProductInCart(c, product); item != nil {
		item.setQuantity(item.quantity + step)
		c.touch()

		m.logger.Debug("cart item merged",
			zap.Stringer("cart_id", c.id),
			zap.Stringer("product_id", product.ProductID()),
			zap.Int("quantity", item.quantity))

		return item, nil
	}

	item := m.createItem(product, options)
	item.setQuantity(step)
	c.addItem(item)

	m.logger.Debug("cart item added",
		zap.Stringer("cart_id", c.id),
		zap.Stringer("product_id", product.ProductID()),
		zap.Bool("recurring", item.isRecurring))

	return item, nil
}

func (m *Manager) createItem(product domain.Product, options map[string]string) *Item {
	item := newItem(product)
	if len(options) > 0 {
		item.options = make(map[string]string, len(options))
		for k, v := range options {
			item.options[k] = v
		}
	}
	m.initItem(item)

	return item
}

func (m *Manager) initItem(item *Item) {
	item.SetName(item.product.ProductName())
	item.SetDescription(item.name)
	item.pricingSet = m.pricing.CreatePricingSet()
	item.isRecurring = domain.IsRecurring(item.product)
}

// RemoveProductFromCart detaches the item holding the product. A product that
// is not in the cart is ignored. With flush the cart is persisted right away
// when a repository is configured.
func (m *Manager) RemoveProductFromCart(ctx context.Context, c *Cart, product domain.Product, flush bool) error {
	item := m.FindProductInCart(c, product)
	if item == nil {
		return nil
	}

	c.removeItem(item)

	m.logger.Debug("cart item removed",
		zap.Stringer("cart_id", c.id),
		zap.Stringer("product_id", product.ProductID()))

	if flush {
		return m.persist(ctx, c)
	}

	return nil
}

// SetProductQuantity overwrites the quantity of the item holding the product.
// Zero removes the item.
func (m *Manager) SetProductQuantity(c *Cart, product domain.Product, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity[%d]: %w", quantity, ErrInvalidQuantity)
	}

	item := m.FindProductInCart(c, product)
	if item == nil {
		return fmt.Errorf("product[%s] in cart[%s]: %w", productID(product), c.id, ErrNotFound)
	}

	if quantity == 0 {
		c.removeItem(item)
		m.logger.Debug("cart item removed by zero quantity",
			zap.Stringer("cart_id", c.id),
			zap.Stringer("product_id", product.ProductID()))
		return nil
	}

	item.setQuantity(quantity)
	c.touch()

	return nil
}

// DeterminePrices lets listeners fill a fresh pricing context, then hands the
// cart to the pricing provider.
func (m *Manager) DeterminePrices(ctx context.Context, c *Cart, determineItemPrices bool) error {
	pctx := m.pricing.CreatePricingContext()

	if err := m.notifier.Dispatch(ctx, EventInitPricingContext, PricingEvent{Cart: c, Context: pctx}); err != nil {
		return fmt.Errorf("notifier.Dispatch(%s): %w", EventInitPricingContext, err)
	}

	if err := m.pricing.DetermineCartPrices(ctx, c, pctx, determineItemPrices); err != nil {
		return fmt.Errorf("pricing.DetermineCartPrices: %w", err)
	}

	return nil
}

func (m *Manager) UpdateCart(ctx context.Context, c *Cart, andPersist bool) error {
	if err := m.notifier.Dispatch(ctx, EventFinished, CartEvent{Cart: c}); err != nil {
		return fmt.Errorf("notifier.Dispatch(%s): %w", EventFinished, err)
	}

	if andPersist {
		return m.persist(ctx, c)
	}

	return nil
}

// FindProductInCart returns the first item holding the product, or nil.
func (m *Manager) FindProductInCart(c *Cart, product domain.Product) *Item {
	for _, item := range c.items {
		if domain.SameProduct(item.product, product) {
			return item
		}
	}

	return nil
}

func (m *Manager) FindBy(ctx context.Context, criteria Criteria, orderBy []OrderBy, limit, offset int) ([]*Cart, error) {
	if m.repo == nil {
		return nil, fmt.Errorf("FindBy: %w", ErrUnsupported)
	}

	carts, err := m.repo.FindBy(ctx, criteria, orderBy, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo.FindBy: %w", err)
	}

	for _, c := range carts {
		m.attachPricingSets(c)
	}

	return carts, nil
}

func (m *Manager) FindCartByID(ctx context.Context, id uuid.UUID) (*Cart, error) {
	if m.repo == nil {
		return nil, fmt.Errorf("FindCartByID: %w", ErrUnsupported)
	}

	c, err := m.repo.FindCartByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.FindCartByID: %w", err)
	}
	m.attachPricingSets(c)

	return c, nil
}

// SetCartState assigns the state as is. Transitions are not validated:
// any state may follow any other.
func (m *Manager) SetCartState(c *Cart, state State) {
	c.setState(state)
}

// SetCartItemState assigns the item state without transition checks.
func (m *Manager) SetCartItemState(item *Item, state ItemState) {
	item.state = state
}

func (m *Manager) SetCartPricingSet(c *Cart, ps *domain.PricingSet) {
	c.setPricingSet(ps)
}

// attachPricingSets gives loaded carts and items the pricing sets storage does not keep.
func (m *Manager) attachPricingSets(c *Cart) {
	if c.pricingSet == nil {
		c.setPricingSet(m.pricing.CreatePricingSet())
	}
	for _, item := range c.items {
		if item.pricingSet == nil {
			item.pricingSet = m.pricing.CreatePricingSet()
		}
	}
}

func (m *Manager) persist(ctx context.Context, c *Cart) error {
	if m.repo == nil {
		return nil
	}

	if err := m.repo.Persist(ctx, c); err != nil {
		return fmt.Errorf("repo.Persist: %w", err)
	}

	return nil
}

func productID(p domain.Product) string {
	if p == nil {
		return "<nil>"
	}
	return p.ProductID().String()
}
