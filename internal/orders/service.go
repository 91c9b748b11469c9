package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kickslab/shoestore/internal/auth"
	"github.com/kickslab/shoestore/internal/catalog"
	"github.com/kickslab/shoestore/internal/inventory"
)

// Catalog is the slice of the catalog the service reads for line-item
// snapshots.
type Catalog interface {
	Shoe(ctx context.Context, id string) (catalog.Shoe, error)
}

// Store persists the order ledger.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// UpdateStatus applies the transition only while the order is
	// still in from (compare-and-set). It returns ErrInvalidTransition
	// when another writer moved the order first.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}

type Service struct {
	Store   Store
	Catalog Catalog
	Ledger  inventory.Ledger

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// PlaceOrder validates the requested lines, reserves stock for each in
// request order, then snapshots prices and persists a pending order.
// The attempt is all-or-nothing: any failure releases every granted
// reservation in reverse order and nothing is persisted.
func (s *Service) PlaceOrder(ctx context.Context, who auth.Identity, lines []LineRequest, shippingAddress string) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return Order{}, fmt.Errorf("%w: shoe %s", ErrInvalidQuantity, l.ShoeID)
		}
	}

	var reserved []LineRequest
	for _, l := range lines {
		if err := s.Ledger.Reserve(ctx, l.ShoeID, l.Quantity); err != nil {
			if rerr := s.releaseAll(ctx, reserved); rerr != nil {
				return Order{}, rerr
			}
			return Order{}, err
		}
		reserved = append(reserved, l)
	}

	items := make([]LineItem, 0, len(lines))
	total := 0
	for _, l := range lines {
		shoe, err := s.Catalog.Shoe(ctx, l.ShoeID)
		if err != nil {
			if rerr := s.releaseAll(ctx, reserved); rerr != nil {
				return Order{}, rerr
			}
			return Order{}, err
		}
		items = append(items, LineItem{
			ShoeID:     shoe.ID,
			ShoeName:   shoe.Name,
			PriceCents: shoe.PriceCents,
			Quantity:   l.Quantity,
			Size:       shoe.Size,
			Color:      shoe.Color,
		})
		total += shoe.PriceCents * l.Quantity
	}

	if shippingAddress == "" {
		shippingAddress = DefaultShippingAddress
	}
	now := s.now()
	o := Order{
		ID:              uuid.NewString(),
		CustomerID:      who.CustomerID,
		Items:           items,
		TotalCents:      total,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.Insert(ctx, &o); err != nil {
		if rerr := s.releaseAll(ctx, reserved); rerr != nil {
			return Order{}, rerr
		}
		return Order{}, fmt.Errorf("persist order: %w", err)
	}
	return o, nil
}

// releaseAll undoes reservations in reverse order. A release that fails
// is a stock leak and is reported as *ReleaseError rather than folded
// into the originating failure.
func (s *Service) releaseAll(ctx context.Context, reserved []LineRequest) error {
	var leaked []LineRequest
	var first error
	for i := len(reserved) - 1; i >= 0; i-- {
		l := reserved[i]
		if err := s.Ledger.Release(ctx, l.ShoeID, l.Quantity); err != nil {
			leaked = append(leaked, l)
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return &ReleaseError{Leaked: leaked, Err: first}
	}
	return nil
}

// Get returns the order when the caller owns it or is an admin.
func (s *Service) Get(ctx context.Context, who auth.Identity, id string) (Order, error) {
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.CustomerID != who.CustomerID && !who.IsAdmin() {
		return Order{}, ErrAccessDenied
	}
	return o, nil
}

// ListOwn returns the caller's orders, newest first.
func (s *Service) ListOwn(ctx context.Context, who auth.Identity) ([]Order, error) {
	return s.Store.ListByCustomer(ctx, who.CustomerID)
}

// ListAll returns every order, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, who auth.Identity) ([]Order, error) {
	if !who.IsAdmin() {
		return nil, ErrAccessDenied
	}
	return s.Store.ListAll(ctx)
}

// UpdateStatus applies one workflow transition and returns the updated
// order together with the status it moved from. Cancelling from
// pending or confirmed returns the reserved stock. The persisted
// transition is a compare-and-set on the previous status, so of two
// racing cancels only the one whose write lands releases stock; the
// loser gets ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, who auth.Identity, id string, to Status) (Order, Status, error) {
	if !who.IsAdmin() {
		return Order{}, "", ErrAccessDenied
	}
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, "", err
	}
	from := o.Status
	if !CanTransition(from, to) {
		return Order{}, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := s.now()
	if err := s.Store.UpdateStatus(ctx, id, from, to, now); err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrOrderNotFound) {
			return Order{}, "", err
		}
		return Order{}, "", fmt.Errorf("update status: %w", err)
	}
	o.Status = to
	o.UpdatedAt = now

	if to == StatusCancelled && releasesOnCancel(from) {
		var leaked []LineRequest
		var first error
		for _, it := range o.Items {
			if err := s.Ledger.Release(ctx, it.ShoeID, it.Quantity); err != nil {
				leaked = append(leaked, LineRequest{ShoeID: it.ShoeID, Quantity: it.Quantity})
				if first == nil {
					first = err
				}
			}
		}
		if first != nil {
			// the cancel is already persisted; hand back the updated
			// order so the transition still reaches consumers
			return o, from, &ReleaseError{Leaked: leaked, Err: first}
		}
	}

	return o, from, nil
}
