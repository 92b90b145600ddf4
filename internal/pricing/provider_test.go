package pricing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmanager/internal/cart"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"github.com/nikolayk812/cartmanager/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type unpricedProduct struct {
	id uuid.UUID
}

func (p unpricedProduct) ProductID() uuid.UUID { return p.id }
func (p unpricedProduct) ProductName() string  { return "unpriced" }

func eur(amount string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(amount), currency.EUR)
}

func TestDetermineCartPrices(t *testing.T) {
	provider := pricing.NewListPriceProvider(currency.EUR)
	m := cart.NewManager(provider)

	book := domain.CatalogProduct{ID: uuid.New(), Name: "book", Price: eur("12.50")}
	plan := domain.SubscriptionProduct{ID: uuid.New(), Name: "plan", Price: eur("4.99"), Interval: "month"}

	c, err := m.CreateCart(t.Context(), "")
	require.NoError(t, err)

	for _, p := range []domain.Product{book, book, plan} {
		_, err = m.AddProductToCart(c, p, nil, 0)
		require.NoError(t, err)
	}

	require.NoError(t, m.DeterminePrices(t.Context(), c, true))

	assertFigure(t, c.PricingSet(), pricing.Subtotal, "25.00")
	assertFigure(t, c.PricingSet(), pricing.Recurring, "4.99")
	assertFigure(t, c.PricingSet(), pricing.Total, "29.99")

	bookItem := m.FindProductInCart(c, book)
	require.NotNil(t, bookItem)
	assertFigure(t, bookItem.PricingSet(), pricing.Unit, "12.50")
	assertFigure(t, bookItem.PricingSet(), pricing.Total, "25.00")
}

func TestDetermineCartPrices_WithoutItems(t *testing.T) {
	provider := pricing.NewListPriceProvider(currency.EUR)
	m := cart.NewManager(provider)
	book := domain.CatalogProduct{ID: uuid.New(), Name: "book", Price: eur("10")}

	c, err := m.CreateCart(t.Context(), "")
	require.NoError(t, err)
	_, err = m.AddProductToCart(c, book, nil, 0)
	require.NoError(t, err)

	require.NoError(t, m.DeterminePrices(t.Context(), c, true))
	assertFigure(t, c.PricingSet(), pricing.Total, "10")

	// item figures are stale until the next full pass
	require.NoError(t, m.SetProductQuantity(c, book, 3))
	require.NoError(t, m.DeterminePrices(t.Context(), c, false))
	assertFigure(t, c.PricingSet(), pricing.Total, "10")

	require.NoError(t, m.DeterminePrices(t.Context(), c, true))
	assertFigure(t, c.PricingSet(), pricing.Total, "30")
}

func TestDetermineCartPrices_Errors(t *testing.T) {
	tests := []struct {
		name      string
		product   domain.Product
		listener  func(ctx context.Context, event any) error
		wantError error
	}{
		{
			name:      "product without price: error",
			product:   unpricedProduct{id: uuid.New()},
			wantError: pricing.ErrUnpricedProduct,
		},
		{
			name:      "product priced in another currency: error",
			product:   domain.CatalogProduct{ID: uuid.New(), Name: "usd", Price: domain.NewMoney(decimal.NewFromInt(1), currency.USD)},
			wantError: pricing.ErrCurrencyMismatch,
		},
		{
			name:    "listener switches the context currency: error",
			product: domain.CatalogProduct{ID: uuid.New(), Name: "eur", Price: eur("1")},
			listener: func(_ context.Context, event any) error {
				event.(cart.PricingEvent).Context.Currency = currency.GBP
				return nil
			},
			wantError: pricing.ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := cart.NewDispatcher()
			if tt.listener != nil {
				d.Subscribe(cart.EventInitPricingContext, tt.listener)
			}
			m := cart.NewManager(pricing.NewListPriceProvider(currency.EUR), cart.WithNotifier(d))

			c, err := m.CreateCart(t.Context(), "")
			require.NoError(t, err)
			_, err = m.AddProductToCart(c, tt.product, nil, 0)
			require.NoError(t, err)

			err = m.DeterminePrices(t.Context(), c, true)
			require.ErrorIs(t, err, tt.wantError)
		})
	}
}

func TestDetermineCartPrices_EmptyCart(t *testing.T) {
	m := cart.NewManager(pricing.NewListPriceProvider(currency.EUR))

	c, err := m.CreateCart(t.Context(), "")
	require.NoError(t, err)

	require.NoError(t, m.DeterminePrices(t.Context(), c, true))
	assertFigure(t, c.PricingSet(), pricing.Total, "0")
}

func assertFigure(t *testing.T, ps *domain.PricingSet, name, want string) {
	t.Helper()

	got, ok := ps.Get(name)
	require.True(t, ok, "figure %s is missing", name)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString(want)), "figure %s: got %s, want %s", name, got.Amount, want)
}

func TestDetermineCartPrices_MismatchKeepsCurrencies(t *testing.T) {
	d := cart.NewDispatcher()
	m := cart.NewManager(pricing.NewListPriceProvider(currency.EUR), cart.WithNotifier(d))
	book := domain.CatalogProduct{ID: uuid.New(), Name: "book", Price: eur("7")}

	c, err := m.CreateCart(t.Context(), "")
	require.NoError(t, err)
	_, err = m.AddProductToCart(c, book, nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.DeterminePrices(t.Context(), c, true))

	// item totals stay in EUR when only the cart figures are recomputed
	d.Subscribe(cart.EventInitPricingContext, func(_ context.Context, event any) error {
		event.(cart.PricingEvent).Context.Currency = currency.GBP
		return nil
	})

	err = m.DeterminePrices(t.Context(), c, false)
	require.ErrorIs(t, err, pricing.ErrCurrencyMismatch)
	assert.Contains(t, err.Error(), "GBP != EUR")
}

func TestDetermineCartPrices_FailureWritesNothing(t *testing.T) {
	m := cart.NewManager(pricing.NewListPriceProvider(currency.EUR))
	book := domain.CatalogProduct{ID: uuid.New(), Name: "book", Price: eur("10")}

	c, err := m.CreateCart(t.Context(), "")
	require.NoError(t, err)
	_, err = m.AddProductToCart(c, book, nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.DeterminePrices(t.Context(), c, true))

	require.NoError(t, m.SetProductQuantity(c, book, 2))
	_, err = m.AddProductToCart(c, unpricedProduct{id: uuid.New()}, nil, 0)
	require.NoError(t, err)

	err = m.DeterminePrices(t.Context(), c, true)
	require.ErrorIs(t, err, pricing.ErrUnpricedProduct)

	// figures from the last successful run are untouched
	bookItem := m.FindProductInCart(c, book)
	require.NotNil(t, bookItem)
	assertFigure(t, bookItem.PricingSet(), pricing.Total, "10")
	assertFigure(t, c.PricingSet(), pricing.Total, "10")
}
