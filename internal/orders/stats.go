package orders

import (
	"context"
	"sort"

	"github.com/kickslab/shoestore/internal/auth"
)

// revenueStatuses are the order states that count as realized revenue.
var revenueStatuses = map[Status]bool{
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
}

const topShoesLimit = 10

type StatusRevenue struct {
	Status     Status `json:"status"`
	Count      int    `json:"count"`
	TotalCents int    `json:"total_cents"`
}

type GrandTotal struct {
	Count      int `json:"count"`
	TotalCents int `json:"total_cents"`
}

type SalesStats struct {
	ByStatus []StatusRevenue `json:"orders_by_status"`
	Totals   GrandTotal      `json:"total_stats"`
}

type TopShoe struct {
	ShoeName     string `json:"shoe_name"`
	QuantitySold int    `json:"quantity_sold"`
	RevenueCents int    `json:"revenue_cents"`
}

// SalesStats scans the full order ledger and derives revenue grouped by
// status (confirmed/shipped/delivered, ascending) plus a grand total
// over every order regardless of status. Admin only.
func (s *Service) SalesStats(ctx context.Context, who auth.Identity) (SalesStats, error) {
	if !who.IsAdmin() {
		return SalesStats{}, ErrAccessDenied
	}
	all, err := s.Store.ListAll(ctx)
	if err != nil {
		return SalesStats{}, err
	}
	return computeSalesStats(all), nil
}

func computeSalesStats(all []Order) SalesStats {
	byStatus := map[Status]*StatusRevenue{}
	var out SalesStats
	for _, o := range all {
		out.Totals.Count++
		out.Totals.TotalCents += o.TotalCents
		if !revenueStatuses[o.Status] {
			continue
		}
		r, ok := byStatus[o.Status]
		if !ok {
			r = &StatusRevenue{Status: o.Status}
			byStatus[o.Status] = r
		}
		r.Count++
		r.TotalCents += o.TotalCents
	}
	for _, r := range byStatus {
		out.ByStatus = append(out.ByStatus, *r)
	}
	sort.Slice(out.ByStatus, func(i, j int) bool {
		return out.ByStatus[i].Status < out.ByStatus[j].Status
	})
	return out
}

// TopShoes flattens every line item across the ledger, groups by shoe
// name and returns the ten best sellers by summed quantity. Line items
// of cancelled orders count too; that mirrors the historical reporting
// behavior even though it likely overstates sales. Ties keep their
// first-observed order. Admin only.
func (s *Service) TopShoes(ctx context.Context, who auth.Identity) ([]TopShoe, error) {
	if !who.IsAdmin() {
		return nil, ErrAccessDenied
	}
	all, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeTopShoes(all), nil
}

func computeTopShoes(all []Order) []TopShoe {
	idx := map[string]int{}
	var top []TopShoe
	for _, o := range all {
		for _, it := range o.Items {
			i, ok := idx[it.ShoeName]
			if !ok {
				i = len(top)
				idx[it.ShoeName] = i
				top = append(top, TopShoe{ShoeName: it.ShoeName})
			}
			top[i].QuantitySold += it.Quantity
			top[i].RevenueCents += it.PriceCents * it.Quantity
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].QuantitySold > top[j].QuantitySold
	})
	if len(top) > topShoesLimit {
		top = top[:topShoesLimit]
	}
	return top
}
