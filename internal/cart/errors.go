package cart

import "errors"

var (
	// ErrNotFound is returned when an operation requires an item or cart that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported is returned by lookups when no repository is configured.
	ErrUnsupported = errors.New("unsupported without a backing repository")
	// ErrInvalidQuantity is returned for quantities that would break the item quantity invariant.
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidProduct  = errors.New("invalid product")
)
