package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"clusterflow/internal/domain/entities"
	"clusterflow/internal/domain/repositories"
	"clusterflow/internal/domain/services"
)

// SourceRegistry resolves an exchange identifier to its connector.
type SourceRegistry interface {
	Lookup(exchange entities.Exchange) (services.TradeSource, error)
}

type BackfillRequest struct {
	Symbol   string
	Exchange string
	// Zero Start/End default to the last 24 hours ending now.
	Start time.Time
	End   time.Time
}

// WindowFailure records one window whose fetch retries were exhausted. The
// backfill keeps going past it, so the caller can tell a partial run from a
// complete one.
type WindowFailure struct {
	Start time.Time
	End   time.Time
	Err   string
}

type BackfillReport struct {
	Symbol   string
	Exchange entities.Exchange
	// Written counts rows handed to the store; duplicates among them are
	// silently ignored there, so this is an upper bound.
	Written int
	Failed  []WindowFailure
}

type BackfillUseCase struct {
	tradeRepository repositories.TradeRepository
	sources         SourceRegistry
	logger          *slog.Logger
	windowSize      time.Duration
	windowLimit     int
	recentLimit     int
	rangeAttempts   int
	recentAttempts  int
	retryBaseDelay  time.Duration
	politenessDelay time.Duration
}

func NewBackfillUseCase(
	tradeRepository repositories.TradeRepository,
	sources SourceRegistry,
	logger *slog.Logger,
) *BackfillUseCase {
	return &BackfillUseCase{
		tradeRepository: tradeRepository,
		sources:         sources,
		logger:          logger,
		windowSize:      time.Hour,
		windowLimit:     1000,
		recentLimit:     1000,
		rangeAttempts:   3,
		recentAttempts:  2,
		retryBaseDelay:  500 * time.Millisecond,
		politenessDelay: 300 * time.Millisecond,
	}
}

func (uc *BackfillUseCase) Execute(ctx context.Context, req BackfillRequest) (*BackfillReport, error) {
	if req.Symbol == "" {
		return nil, entities.ErrInvalidSymbol
	}

	exchange, err := entities.ParseExchange(req.Exchange)
	if err != nil {
		return nil, err
	}

	source, err := uc.sources.Lookup(exchange)
	if err != nil {
		return nil, err
	}

	end := req.End
	if end.IsZero() {
		end = time.Now()
	}
	start := req.Start
	if start.IsZero() {
		start = end.Add(-24 * time.Hour)
	}

	uc.logger.Info("Starting backfill",
		"symbol", req.Symbol,
		"exchange", exchange.String(),
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339))

	switch src := source.(type) {
	case services.RangeTradeSource:
		return uc.backfillRange(ctx, src, req.Symbol, exchange, start, end)
	case services.RecentTradeSource:
		return uc.backfillRecent(ctx, src, req.Symbol, exchange)
	default:
		return nil, entities.ErrUnknownExchange
	}
}

// backfillRange walks [start, end) in fixed windows, strictly one request in
// flight, pausing between windows to stay under the source's rate limits.
// A window whose retries are exhausted is recorded and skipped; the rest of
// the range still gets ingested.
func (uc *BackfillUseCase) backfillRange(
	ctx context.Context,
	source services.RangeTradeSource,
	symbol string,
	exchange entities.Exchange,
	start, end time.Time,
) (*BackfillReport, error) {
	report := &BackfillReport{Symbol: symbol, Exchange: exchange}

	for windowStart := start; windowStart.Before(end); windowStart = windowStart.Add(uc.windowSize) {
		windowEnd := windowStart.Add(uc.windowSize)
		if windowEnd.After(end) {
			windowEnd = end
		}

		trades, err := uc.fetchWindow(ctx, source, symbol, windowStart, windowEnd)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			uc.logger.Warn("Window fetch failed after retries",
				"symbol", symbol,
				"exchange", exchange.String(),
				"window_start", windowStart.Format(time.RFC3339),
				"window_end", windowEnd.Format(time.RFC3339),
				"error", err)
			report.Failed = append(report.Failed, WindowFailure{
				Start: windowStart,
				End:   windowEnd,
				Err:   err.Error(),
			})
		} else {
			if err := uc.tradeRepository.SaveBatch(ctx, trades); err != nil {
				return report, fmt.Errorf("failed to save trades batch: %w", err)
			}
			report.Written += len(trades)
			uc.logger.Debug("Backfilled window",
				"symbol", symbol,
				"window_start", windowStart.Format(time.RFC3339),
				"trades", len(trades),
				"total_written", report.Written)
		}

		if windowEnd.Before(end) {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(uc.politenessDelay):
			}
		}
	}

	uc.logger.Info("Backfill completed",
		"symbol", symbol,
		"exchange", exchange.String(),
		"written", report.Written,
		"failed_windows", len(report.Failed))

	return report, nil
}

// backfillRecent serves exchanges that only expose their latest trades; the
// requested range is advisory and coverage is whatever the batch contains.
func (uc *BackfillUseCase) backfillRecent(
	ctx context.Context,
	source services.RecentTradeSource,
	symbol string,
	exchange entities.Exchange,
) (*BackfillReport, error) {
	var trades []*entities.Trade
	backoff := retry.WithMaxRetries(uint64(uc.recentAttempts-1), retry.NewExponential(uc.retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, err := source.FetchRecent(ctx, symbol, uc.recentLimit)
		if err != nil {
			return retry.RetryableError(err)
		}
		trades = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent trades: %w", err)
	}

	if err := uc.tradeRepository.SaveBatch(ctx, trades); err != nil {
		return nil, fmt.Errorf("failed to save trades batch: %w", err)
	}

	uc.logger.Info("Backfill completed from recent trades",
		"symbol", symbol,
		"exchange", exchange.String(),
		"written", len(trades))

	return &BackfillReport{Symbol: symbol, Exchange: exchange, Written: len(trades)}, nil
}

func (uc *BackfillUseCase) fetchWindow(
	ctx context.Context,
	source services.RangeTradeSource,
	symbol string,
	start, end time.Time,
) ([]*entities.Trade, error) {
	var trades []*entities.Trade
	backoff := retry.WithMaxRetries(uint64(uc.rangeAttempts-1), retry.NewExponential(uc.retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, err := source.FetchRange(ctx, symbol, start, end, uc.windowLimit)
		if err != nil {
			return retry.RetryableError(err)
		}
		trades = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}
