package cart

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmanager/internal/domain"
)

const DefaultType = "default"

// Cart is the aggregate of an in-progress order.
// Its fields are written only by Manager.
type Cart struct {
	id         uuid.UUID
	cartType   string
	items      []*Item
	state      State
	pricingSet *domain.PricingSet
	createdAt  time.Time
	updatedAt  time.Time
}

func newCart(cartType string) *Cart {
	now := time.Now().UTC()

	return &Cart{
		id:        uuid.New(),
		cartType:  cartType,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *Cart) ID() uuid.UUID                  { return c.id }
func (c *Cart) Type() string                   { return c.cartType }
func (c *Cart) State() State                   { return c.state }
func (c *Cart) PricingSet() *domain.PricingSet { return c.pricingSet }
func (c *Cart) CreatedAt() time.Time           { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time           { return c.updatedAt }

// Items returns a copy of the item list in insertion order.
func (c *Cart) Items() []*Item {
	return slices.Clone(c.items)
}

func (c *Cart) ItemCount() int {
	return len(c.items)
}

func (c *Cart) addItem(item *Item) {
	c.items = append(c.items, item)
	c.touch()
}

func (c *Cart) removeItem(item *Item) bool {
	idx := slices.Index(c.items, item)
	if idx < 0 {
		return false
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.touch()

	return true
}

func (c *Cart) setState(state State) {
	c.state = state
	c.touch()
}

func (c *Cart) setPricingSet(ps *domain.PricingSet) {
	c.pricingSet = ps
}

func (c *Cart) touch() {
	c.updatedAt = time.Now().UTC()
}

// Item is a cart line binding one product to a quantity.
type Item struct {
	product     domain.Product
	quantity    int
	name        string
	description string
	state       ItemState
	pricingSet  *domain.PricingSet
	isRecurring bool
	options     map[string]string
}

func newItem(product domain.Product) *Item {
	return &Item{product: product, quantity: 1}
}

func (i *Item) Product() domain.Product        { return i.product }
func (i *Item) Quantity() int                  { return i.quantity }
func (i *Item) Name() string                   { return i.name }
func (i *Item) Description() string            { return i.description }
func (i *Item) State() ItemState               { return i.state }
func (i *Item) PricingSet() *domain.PricingSet { return i.pricingSet }
func (i *Item) IsRecurring() bool              { return i.isRecurring }

func (i *Item) Option(key string) (string, bool) {
	v, ok := i.options[key]
	return v, ok
}

func (i *Item) SetName(name string) {
	i.name = name
}

func (i *Item) SetDescription(description string) {
	i.description = description
}

func (i *Item) setQuantity(quantity int) {
	i.quantity = quantity
}

// Snapshot is the storable form of a cart. Pricing sets are not part of it,
// they are recomputed after loading.
type Snapshot struct {
	ID        uuid.UUID
	Type      string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []ItemSnapshot
}

type ItemSnapshot struct {
	Product     domain.Product
	Quantity    int
	Name        string
	Description string
	State       ItemState
	IsRecurring bool
	Options     map[string]string
}

func (c *Cart) Snapshot() Snapshot {
	s := Snapshot{
		ID:        c.id,
		Type:      c.cartType,
		State:     c.state,
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
		Items:     make([]ItemSnapshot, 0, len(c.items)),
	}

	for _, item := range c.items {
		s.Items = append(s.Items, ItemSnapshot{
			Product:     item.product,
			Quantity:    item.quantity,
			Name:        item.name,
			Description: item.description,
			State:       item.state,
			IsRecurring: item.isRecurring,
			Options:     maps.Clone(item.options),
		})
	}

	return s
}

// Restore rebuilds a cart loaded from storage.
func Restore(s Snapshot) *Cart {
	c := &Cart{
		id:        s.ID,
		cartType:  s.Type,
		state:     s.State,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		items:     make([]*Item, 0, len(s.Items)),
	}

	for _, is := range s.Items {
		c.items = append(c.items, &Item{
			product:     is.Product,
			quantity:    is.Quantity,
			name:        is.Name,
			description: is.Description,
			state:       is.State,
			isRecurring: is.IsRecurring,
			options:     maps.Clone(is.Options),
		})
	}

	return c
}
