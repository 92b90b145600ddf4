package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmanager/internal/domain"
)

type PricingProvider interface {
	CreatePricingContext() *domain.PricingContext
	CreatePricingSet() *domain.PricingSet
	DetermineCartPrices(ctx context.Context, c *Cart, pctx *domain.PricingContext, includeItems bool) error
}

type Repository interface {
	FindBy(ctx context.Context, criteria Criteria, orderBy []OrderBy, limit, offset int) ([]*Cart, error)
	FindCartByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	Persist(ctx context.Context, c *Cart) error
}

// Criteria filters carts. Zero fields match anything.
type Criteria struct {
	Type  string
	State State
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

type OrderBy struct {
	Field SortField
	Desc  bool
}
