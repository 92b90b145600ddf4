package cart_test

import (
	"context"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/cartmanager/internal/cart"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// recorder collects collaborator calls in program order.
type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

type fakePricing struct {
	rec *recorder

	determineErr    error
	gotContext      *domain.PricingContext
	gotIncludeItems bool
}

func (p *fakePricing) CreatePricingContext() *domain.PricingContext {
	p.rec.record("createPricingContext")
	return domain.NewPricingContext(currency.EUR)
}

func (p *fakePricing) CreatePricingSet() *domain.PricingSet {
	return domain.NewPricingSet()
}

func (p *fakePricing) DetermineCartPrices(_ context.Context, _ *cart.Cart, pctx *domain.PricingContext, includeItems bool) error {
	p.rec.record("determineCartPrices")
	p.gotContext = pctx
	p.gotIncludeItems = includeItems
	return p.determineErr
}

type fakeNotifier struct {
	rec *recorder

	events  []cart.EventName
	payload []any
	err     error
	onEvent func(name cart.EventName, event any)
}

func (n *fakeNotifier) Dispatch(_ context.Context, name cart.EventName, event any) error {
	n.rec.record("dispatch:" + string(name))
	n.events = append(n.events, name)
	n.payload = append(n.payload, event)
	if n.onEvent != nil {
		n.onEvent(name, event)
	}
	return n.err
}

func (n *fakeNotifier) count(name cart.EventName) int {
	var count int
	for _, e := range n.events {
		if e == name {
			count++
		}
	}
	return count
}

type fakeRepository struct {
	FindByFn       func(ctx context.Context, criteria cart.Criteria, orderBy []cart.OrderBy, limit, offset int) ([]*cart.Cart, error)
	FindCartByIDFn func(ctx context.Context, id uuid.UUID) (*cart.Cart, error)

	persisted  []uuid.UUID
	persistErr error
}

func (f *fakeRepository) FindBy(ctx context.Context, criteria cart.Criteria, orderBy []cart.OrderBy, limit, offset int) ([]*cart.Cart, error) {
	return f.FindByFn(ctx, criteria, orderBy, limit, offset)
}

func (f *fakeRepository) FindCartByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return f.FindCartByIDFn(ctx, id)
}

func (f *fakeRepository) Persist(_ context.Context, c *cart.Cart) error {
	f.persisted = append(f.persisted, c.ID())
	return f.persistErr
}

func randomProduct() domain.CatalogProduct {
	return domain.CatalogProduct{
		ID:   uuid.New(),
		Name: gofakeit.ProductName(),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
			Currency: currency.EUR,
		},
	}
}

func randomSubscription() domain.SubscriptionProduct {
	return domain.SubscriptionProduct{
		ID:       uuid.New(),
		Name:     gofakeit.ProductName(),
		Price:    domain.Money{Amount: decimal.NewFromInt(5), Currency: currency.EUR},
		Interval: "month",
	}
}

func newTestManager(opts ...cart.Option) (*cart.Manager, *fakePricing, *fakeNotifier, *recorder) {
	rec := &recorder{}
	pricing := &fakePricing{rec: rec}
	notifier := &fakeNotifier{rec: rec}

	opts = append([]cart.Option{cart.WithNotifier(notifier)}, opts...)

	return cart.NewManager(pricing, opts...), pricing, notifier, rec
}
