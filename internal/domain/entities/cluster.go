package entities

import "time"

// PriceBucket is one discretized price level with the volume traded at it.
// Buckets are recomputed from stored trades on every query and never persisted.
type PriceBucket struct {
	Price         float64
	Volume        float64
	LastTradeTime time.Time
}
