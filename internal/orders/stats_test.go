package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickslab/shoestore/internal/inventory"
)

func TestComputeSalesStats(t *testing.T) {
	all := []Order{
		{Status: StatusPending, TotalCents: 1000},
		{Status: StatusConfirmed, TotalCents: 2000},
		{Status: StatusShipped, TotalCents: 3000},
		{Status: StatusCancelled, TotalCents: 4000},
	}
	got := computeSalesStats(all)

	require.Len(t, got.ByStatus, 2)
	assert.Equal(t, StatusRevenue{Status: StatusConfirmed, Count: 1, TotalCents: 2000}, got.ByStatus[0])
	assert.Equal(t, StatusRevenue{Status: StatusShipped, Count: 1, TotalCents: 3000}, got.ByStatus[1])
	assert.Equal(t, GrandTotal{Count: 4, TotalCents: 10000}, got.Totals)
}

func TestComputeSalesStatsEmpty(t *testing.T) {
	got := computeSalesStats(nil)
	assert.Empty(t, got.ByStatus)
	assert.Equal(t, GrandTotal{}, got.Totals)
}

func TestComputeTopShoesTiesKeepFirstSeenOrder(t *testing.T) {
	all := []Order{
		{Items: []LineItem{
			{ShoeName: "Runner A", Quantity: 5, PriceCents: 1000},
			{ShoeName: "Walker B", Quantity: 5, PriceCents: 550},
		}},
		{Items: []LineItem{
			{ShoeName: "Trail C", Quantity: 3, PriceCents: 2000},
		}},
	}
	got := computeTopShoes(all)

	require.Len(t, got, 3)
	assert.Equal(t, "Runner A", got[0].ShoeName)
	assert.Equal(t, "Walker B", got[1].ShoeName)
	assert.Equal(t, "Trail C", got[2].ShoeName)
	assert.Equal(t, 5000, got[0].RevenueCents)
}

func TestComputeTopShoesCountsCancelledOrders(t *testing.T) {
	all := []Order{
		{Status: StatusCancelled, Items: []LineItem{{ShoeName: "Runner A", Quantity: 4, PriceCents: 1000}}},
		{Status: StatusDelivered, Items: []LineItem{{ShoeName: "Runner A", Quantity: 1, PriceCents: 1000}}},
	}
	got := computeTopShoes(all)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].QuantitySold)
}

func TestComputeTopShoesTruncatesToTen(t *testing.T) {
	var all []Order
	for i := 0; i < 12; i++ {
		all = append(all, Order{Items: []LineItem{
			{ShoeName: fmt.Sprintf("Model %02d", i), Quantity: 100 - i, PriceCents: 100},
		}})
	}
	got := computeTopShoes(all)
	require.Len(t, got, 10)
	assert.Equal(t, "Model 00", got[0].ShoeName)
	assert.Equal(t, "Model 09", got[9].ShoeName)
}

func TestStatsRequireAdmin(t *testing.T) {
	svc, _ := newTestService(testShoes(), inventory.NewMemory(nil))

	_, err := svc.SalesStats(context.Background(), alice)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.TopShoes(context.Background(), alice)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSalesStatsOverLedger(t *testing.T) {
	led := inventory.NewMemory(map[string]int{"shoe-a": 100, "shoe-b": 100})
	svc, _ := newTestService(testShoes(), led)

	placeOne(t, svc, 2) // 2000 cents, stays pending
	o2, err := svc.PlaceOrder(context.Background(), bob,
		[]LineRequest{{ShoeID: "shoe-b", Quantity: 4}}, "") // 2200 cents
	require.NoError(t, err)
	_, _, err = svc.UpdateStatus(context.Background(), admin, o2.ID, StatusConfirmed)
	require.NoError(t, err)

	stats, err := svc.SalesStats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, GrandTotal{Count: 2, TotalCents: 4200}, stats.Totals)
	require.Len(t, stats.ByStatus, 1)
	assert.Equal(t, StatusRevenue{Status: StatusConfirmed, Count: 1, TotalCents: 2200}, stats.ByStatus[0])
}
