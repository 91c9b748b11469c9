package orders

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ReleaseError reports a failed compensating release. The named lines
// may hold stock that was never returned to the ledger, which is an
// inventory-consistency incident, not an ordinary request failure.
type ReleaseError struct {
	Leaked []LineRequest
	Err    error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("stock release failed for %d line(s), inventory may have leaked: %v", len(e.Leaked), e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }
