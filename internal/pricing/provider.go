package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/cartmanager/internal/cart"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"golang.org/x/text/currency"
)

// Figure names written into pricing sets.
const (
	Unit      = "unit"
	Total     = "total"
	Subtotal  = "subtotal"
	Recurring = "recurring"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnpricedProduct  = errors.New("product has no list price")
)

// ListPriceProvider prices items at the list price of their product.
type ListPriceProvider struct {
	currency currency.Unit
}

var _ cart.PricingProvider = (*ListPriceProvider)(nil)

func NewListPriceProvider(defaultCurrency currency.Unit) *ListPriceProvider {
	return &ListPriceProvider{currency: defaultCurrency}
}

func (p *ListPriceProvider) CreatePricingContext() *domain.PricingContext {
	return domain.NewPricingContext(p.currency)
}

func (p *ListPriceProvider) CreatePricingSet() *domain.PricingSet {
	return domain.NewPricingSet()
}

// DetermineCartPrices writes subtotal, recurring and total figures into the
// cart pricing set. Without includeItems the item totals already present are reused.
// Nothing is written unless every item and the cart can be priced.
func (p *ListPriceProvider) DetermineCartPrices(ctx context.Context, c *cart.Cart, pctx *domain.PricingContext, includeItems bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cps := c.PricingSet()
	if cps == nil {
		return fmt.Errorf("cart[%s] has no pricing set", c.ID())
	}

	cur := pctx.Currency
	subtotal := domain.ZeroMoney(cur)
	recurring := domain.ZeroMoney(cur)

	items := c.Items()
	figures := make([]itemFigures, 0, len(items))

	for _, item := range items {
		ps := item.PricingSet()
		if ps == nil {
			return fmt.Errorf("item[%s] has no pricing set", item.Product().ProductID())
		}

		var f itemFigures
		if includeItems {
			var err error
			if f, err = p.determineItemPrices(item, cur); err != nil {
				return fmt.Errorf("determineItemPrices: %w", err)
			}
			figures = append(figures, f)
		} else {
			total, ok := ps.Get(Total)
			if !ok {
				total = domain.ZeroMoney(cur)
			}
			f.total = total
		}

		var err error
		if item.IsRecurring() {
			recurring, err = recurring.Add(f.total)
		} else {
			subtotal, err = subtotal.Add(f.total)
		}
		if err != nil {
			return fmt.Errorf("item[%s]: %w: %w", item.Product().ProductID(), ErrCurrencyMismatch, err)
		}
	}

	grand, err := subtotal.Add(recurring)
	if err != nil {
		return fmt.Errorf("subtotal.Add: %w", err)
	}

	for i, f := range figures {
		ps := items[i].PricingSet()
		ps.Set(Unit, f.unit)
		ps.Set(Total, f.total)
	}

	cps.Set(Subtotal, subtotal)
	cps.Set(Recurring, recurring)
	cps.Set(Total, grand)

	return nil
}

type itemFigures struct {
	unit  domain.Money
	total domain.Money
}

func (p *ListPriceProvider) determineItemPrices(item *cart.Item, cur currency.Unit) (itemFigures, error) {
	priced, ok := item.Product().(domain.Priced)
	if !ok {
		return itemFigures{}, fmt.Errorf("product[%s]: %w", item.Product().ProductID(), ErrUnpricedProduct)
	}

	unit := priced.ListPrice()
	if unit.Currency != cur {
		return itemFigures{}, fmt.Errorf("product[%s] priced in %s, cart in %s: %w",
			item.Product().ProductID(), unit.Currency, cur, ErrCurrencyMismatch)
	}

	return itemFigures{unit: unit, total: unit.Mul(item.Quantity())}, nil
}
