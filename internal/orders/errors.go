package orders

import "errors"

// Business-rule failures raised by the lifecycle engine. The HTTP layer maps
// them to response statuses; they are never retried.
var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller may not act on this order")
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidState    = errors.New("order state does not allow this operation")
)
