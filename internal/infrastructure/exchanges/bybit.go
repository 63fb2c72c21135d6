package exchanges

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clusterflow/internal/domain/entities"
)

const bybitBaseURL = "https://api.bybit.com"

type bybitTradesResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string       `json:"category"`
		List     []bybitTrade `json:"list"`
	} `json:"result"`
}

type bybitTrade struct {
	ExecID string `json:"execId"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Size   string `json:"size"`
	Side   string `json:"side"`
	Time   string `json:"time"`
}

// BybitSource covers the recent-only capability: the public spot endpoint
// exposes at most the latest batch of trades, so historical windows beyond it
// cannot be recovered and backfills through it are best-effort.
type BybitSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewBybitSource(logger *slog.Logger) *BybitSource {
	return &BybitSource{
		baseURL: bybitBaseURL,
		client:  newHTTPClient(),
		logger:  logger,
	}
}

// NewBybitSourceWithBaseURL points the source at an alternate endpoint, used
// by tests to target an httptest server.
func NewBybitSourceWithBaseURL(baseURL string, logger *slog.Logger) *BybitSource {
	s := NewBybitSource(logger)
	s.baseURL = baseURL
	return s
}

func (s *BybitSource) Exchange() entities.Exchange {
	return entities.ExchangeBybit
}

func (s *BybitSource) FetchRecent(ctx context.Context, symbol string, limit int) ([]*entities.Trade, error) {
	query := url.Values{}
	query.Set("category", "spot")
	query.Set("symbol", symbol)
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/v5/market/recent-trade?%s", s.baseURL, query.Encode())

	var resp bybitTradesResponse
	if err := getJSON(ctx, s.client, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("%w: bybit code %d: %s", ErrFetchFailed, resp.RetCode, resp.RetMsg)
	}

	trades := make([]*entities.Trade, 0, len(resp.Result.List))
	for _, raw := range resp.Result.List {
		trade, err := s.normalize(symbol, raw)
		if err != nil {
			s.logger.Warn("Skipping malformed bybit trade", "exec_id", raw.ExecID, "error", err)
			continue
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func (s *BybitSource) normalize(symbol string, raw bybitTrade) (*entities.Trade, error) {
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", raw.Price, err)
	}

	quantity, err := strconv.ParseFloat(raw.Size, 64)
	if err != nil {
		return nil, fmt.Errorf("parse size %q: %w", raw.Size, err)
	}

	ts, err := strconv.ParseInt(raw.Time, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", raw.Time, err)
	}
	tradeTime := time.UnixMilli(ts)

	side := entities.SideBuy
	if raw.Side == "Sell" {
		side = entities.SideSell
	}

	id := entities.TradeID(entities.ExchangeBybit, symbol, raw.ExecID)
	if raw.ExecID == "" {
		id = entities.ContentTradeID(entities.ExchangeBybit, symbol, price, quantity, tradeTime)
	}

	return entities.NewTrade(id, entities.ExchangeBybit, symbol, price, quantity, side, tradeTime), nil
}
