package services

import (
	"context"
	"time"

	"clusterflow/internal/domain/entities"
)

// TradeSource is one exchange connector. Implementations normalize their
// exchange's payloads into entities.Trade and report failures without
// retrying; retry policy belongs to the backfill orchestration.
//
// Every source implements exactly one of the two capability interfaces below.
type TradeSource interface {
	Exchange() entities.Exchange
}

// RangeTradeSource covers exchanges whose API accepts an explicit time range.
// FetchRange returns up to limit trades executed within [start, end); paging
// across wider ranges is the caller's job.
type RangeTradeSource interface {
	TradeSource
	FetchRange(ctx context.Context, symbol string, start, end time.Time, limit int) ([]*entities.Trade, error)
}

// RecentTradeSource covers exchanges whose public API only exposes the most
// recent trades. Any historical window beyond the returned batch is not
// retrievable, so coverage is best-effort by construction.
type RecentTradeSource interface {
	TradeSource
	FetchRecent(ctx context.Context, symbol string, limit int) ([]*entities.Trade, error)
}
