package domain

import "github.com/google/uuid"

// Product is anything that can be put into a cart.
// Two products are the same when their IDs are equal.
type Product interface {
	ProductID() uuid.UUID
	ProductName() string
}

// RecurringProduct is a product billed on a recurring basis.
type RecurringProduct interface {
	Product
	BillingInterval() string
}

// Priced is implemented by products that carry a list price.
type Priced interface {
	ListPrice() Money
}

func SameProduct(a, b Product) bool {
	if a == nil || b == nil {
		return false
	}

	return a.ProductID() == b.ProductID()
}

func IsRecurring(p Product) bool {
	_, ok := p.(RecurringProduct)
	return ok
}

type CatalogProduct struct {
	ID    uuid.UUID
	Name  string
	Price Money
}

func (p CatalogProduct) ProductID() uuid.UUID { return p.ID }
func (p CatalogProduct) ProductName() string  { return p.Name }
func (p CatalogProduct) ListPrice() Money     { return p.Price }

type SubscriptionProduct struct {
	ID       uuid.UUID
	Name     string
	Price    Money
	Interval string
}

func (p SubscriptionProduct) ProductID() uuid.UUID    { return p.ID }
func (p SubscriptionProduct) ProductName() string     { return p.Name }
func (p SubscriptionProduct) ListPrice() Money        { return p.Price }
func (p SubscriptionProduct) BillingInterval() string { return p.Interval }
