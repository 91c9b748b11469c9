package redisx

import "time"

const (
	// Sales views are full ledger scans; cache them short.
	KeySalesStats = "stats:sales"
	KeyTopShoes   = "stats:top_shoes"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatsCache = time.Minute
	TTLDedup      = 48 * time.Hour
)
