package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"clusterflow/internal/domain/entities"
	"clusterflow/internal/domain/repositories"
)

const (
	defaultClusterPeriod = 24 * time.Hour
	defaultBucketSize    = 1.0
	defaultClusterLimit  = 100
)

type ClustersQuery struct {
	Symbol   string
	Exchange string
	// Non-positive values fall back to the defaults: 24h period, bucket
	// size 1.0, limit 100.
	Period     time.Duration
	BucketSize float64
	Limit      int
}

// TopClustersUseCase groups recent trades into price buckets and ranks them
// by traded volume. Every call re-reads and re-buckets the windowed trade set
// from scratch; nothing is cached between calls. Fine at the volumes a single
// symbol/window carries today, worth revisiting if that grows.
type TopClustersUseCase struct {
	tradeRepository repositories.TradeRepository
	logger          *slog.Logger
	now             func() time.Time
}

func NewTopClustersUseCase(
	tradeRepository repositories.TradeRepository,
	logger *slog.Logger,
) *TopClustersUseCase {
	return &TopClustersUseCase{
		tradeRepository: tradeRepository,
		logger:          logger,
		now:             time.Now,
	}
}

func (uc *TopClustersUseCase) Execute(ctx context.Context, query ClustersQuery) ([]entities.PriceBucket, error) {
	if query.Symbol == "" {
		return nil, entities.ErrInvalidSymbol
	}

	exchange, err := entities.ParseExchange(query.Exchange)
	if err != nil {
		return nil, err
	}

	period := query.Period
	if period <= 0 {
		period = defaultClusterPeriod
	}
	bucketSize := query.BucketSize
	if bucketSize <= 0 {
		bucketSize = defaultBucketSize
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultClusterLimit
	}

	since := uc.now().Add(-period)
	trades, err := uc.tradeRepository.GetSince(ctx, query.Symbol, exchange, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}

	// Keyed by the bucket price rendered at fixed precision; float keys
	// would split one bucket across near-identical values.
	buckets := make(map[string]*entities.PriceBucket)
	for _, trade := range trades {
		bucketPrice := math.Round(trade.Price/bucketSize) * bucketSize
		key := decimal.NewFromFloat(bucketPrice).StringFixed(8)

		bucket, ok := buckets[key]
		if !ok {
			bucket = &entities.PriceBucket{Price: bucketPrice}
			buckets[key] = bucket
		}
		bucket.Volume += trade.Quantity
		if trade.Time.After(bucket.LastTradeTime) {
			bucket.LastTradeTime = trade.Time
		}
	}

	clusters := make([]entities.PriceBucket, 0, len(buckets))
	for _, bucket := range buckets {
		clusters = append(clusters, *bucket)
	}

	// Highest volume first; equal volumes order by ascending price so the
	// result is stable across calls.
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Volume != clusters[j].Volume {
			return clusters[i].Volume > clusters[j].Volume
		}
		return clusters[i].Price < clusters[j].Price
	})

	if len(clusters) > limit {
		clusters = clusters[:limit]
	}

	uc.logger.Debug("Computed volume clusters",
		"symbol", query.Symbol,
		"exchange", exchange.String(),
		"trades", len(trades),
		"clusters", len(clusters))

	return clusters, nil
}
