package repositories

import (
	"context"
	"time"

	"clusterflow/internal/domain/entities"
)

// TradeRepository persists trades keyed by their derived ID. Save and
// SaveBatch are idempotent: a trade whose ID already exists is silently
// ignored, never an error. That contract is what makes overlapping and
// repeated backfills safe to re-run.
type TradeRepository interface {
	Save(ctx context.Context, trade *entities.Trade) error
	SaveBatch(ctx context.Context, trades []*entities.Trade) error
	GetByID(ctx context.Context, id string) (*entities.Trade, error)
	GetSince(ctx context.Context, symbol string, exchange entities.Exchange, since time.Time) ([]*entities.Trade, error)
	CountBySymbol(ctx context.Context, symbol string, exchange entities.Exchange) (int64, error)
}
