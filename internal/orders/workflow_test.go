package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kickslab/shoestore/internal/inventory"
)

func placeOne(t *testing.T, svc *Service, qty int) Order {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), alice,
		[]LineRequest{{ShoeID: "shoe-a", Quantity: qty}}, "")
	require.NoError(t, err)
	return o
}

func TestCancelPendingReleasesStockOnce(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, _ := newTestService(testShoes(), led)
	o := placeOne(t, svc, 2)

	n, _ := led.Stock("shoe-a")
	require.Equal(t, 3, n)

	got, from, err := svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, from)
	assert.Equal(t, StatusCancelled, got.Status)
	n, _ = led.Stock("shoe-a")
	assert.Equal(t, 5, n)

	// cancelling again is rejected and must not release twice
	_, _, err = svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	n, _ = led.Stock("shoe-a")
	assert.Equal(t, 5, n)
}

// barrierStore holds every Get until all expected readers arrive, so
// two transitions are guaranteed to observe the same starting status
// before either writes.
type barrierStore struct {
	Store
	ready *sync.WaitGroup
}

func (b *barrierStore) Get(ctx context.Context, id string) (Order, error) {
	b.ready.Done()
	b.ready.Wait()
	return b.Store.Get(ctx, id)
}

func TestConcurrentCancelReleasesOnce(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, st := newTestService(testShoes(), led)
	o := placeOne(t, svc, 2)

	ready := &sync.WaitGroup{}
	ready.Add(2)
	svc.Store = &barrierStore{Store: st, ready: ready}

	errs := make([]error, 2)
	var g errgroup.Group
	for i := range errs {
		i := i
		g.Go(func() error {
			_, _, errs[i] = svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// exactly one cancel lands; the other loses the write and must
	// not release a second time
	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidTransition):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	n, _ := led.Stock("shoe-a")
	assert.Equal(t, 5, n)
}

func TestCancelReleaseFailureStillReturnsTransition(t *testing.T) {
	led := brokenRelease{inventory.NewMemory(map[string]int{"shoe-a": 5})}
	svc, st := newTestService(testShoes(), led)
	o := placeOne(t, svc, 2)

	got, from, err := svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)

	var rel *ReleaseError
	require.ErrorAs(t, err, &rel)
	require.Len(t, rel.Leaked, 1)

	// the persisted cancel comes back with the error so callers can
	// still announce it
	assert.Equal(t, StatusPending, from)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, StatusCancelled, got.Status)

	stored, err := st.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestCancelConfirmedReleasesStock(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, _ := newTestService(testShoes(), led)
	o := placeOne(t, svc, 2)

	_, _, err := svc.UpdateStatus(context.Background(), admin, o.ID, StatusConfirmed)
	require.NoError(t, err)
	_, _, err = svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)
	require.NoError(t, err)

	n, _ := led.Stock("shoe-a")
	assert.Equal(t, 5, n)
}

func TestCancelShippedKeepsStock(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, _ := newTestService(testShoes(), led)
	o := placeOne(t, svc, 2)

	for _, to := range []Status{StatusConfirmed, StatusShipped} {
		_, _, err := svc.UpdateStatus(context.Background(), admin, o.ID, to)
		require.NoError(t, err)
	}
	got, from, err := svc.UpdateStatus(context.Background(), admin, o.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, from)
	assert.Equal(t, StatusCancelled, got.Status)

	// goods left custody; nothing flows back
	n, _ := led.Stock("shoe-a")
	assert.Equal(t, 3, n)
}

func TestDeliveredIsTerminal(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, _ := newTestService(testShoes(), led)
	o := placeOne(t, svc, 1)

	for _, to := range []Status{StatusConfirmed, StatusShipped, StatusDelivered} {
		_, _, err := svc.UpdateStatus(context.Background(), admin, o.ID, to)
		require.NoError(t, err)
	}
	_, _, err := svc.UpdateStatus(context.Background(), admin, o.ID, StatusConfirmed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.Get(context.Background(), admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status, "illegal transition must leave the order unchanged")
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 5})
	svc, _ := newTestService(testShoes(), led)
	o := placeOne(t, svc, 1)

	_, _, err := svc.UpdateStatus(context.Background(), alice, o.ID, StatusConfirmed)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _ := newTestService(testShoes(), inventory.NewMemory(nil))
	_, _, err := svc.UpdateStatus(context.Background(), admin, "missing", StatusConfirmed)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusConfirmed, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
