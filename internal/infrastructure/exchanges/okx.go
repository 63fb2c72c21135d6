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

const okxBaseURL = "https://www.okx.com"

// okxTradesResponse is the OKX v5 market data envelope.
type okxTradesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data []okxTrade `json:"data"`
}

type okxTrade struct {
	InstID  string `json:"instId"`
	TradeID string `json:"tradeId"`
	Price   string `json:"px"`
	Size    string `json:"sz"`
	Side    string `json:"side"`
	Ts      string `json:"ts"`
}

// OKXSource fetches historical trades through the OKX v5 REST API. The
// history-trades endpoint pages by timestamp, newest first; trades outside
// the requested window are filtered out after decoding.
type OKXSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewOKXSource(logger *slog.Logger) *OKXSource {
	return &OKXSource{
		baseURL: okxBaseURL,
		client:  newHTTPClient(),
		logger:  logger,
	}
}

// NewOKXSourceWithBaseURL points the source at an alternate endpoint, used by
// tests to target an httptest server.
func NewOKXSourceWithBaseURL(baseURL string, logger *slog.Logger) *OKXSource {
	s := NewOKXSource(logger)
	s.baseURL = baseURL
	return s
}

func (s *OKXSource) Exchange() entities.Exchange {
	return entities.ExchangeOKX
}

func (s *OKXSource) FetchRange(ctx context.Context, symbol string, start, end time.Time, limit int) ([]*entities.Trade, error) {
	query := url.Values{}
	query.Set("instId", symbol)
	// type=2 pages by timestamp; "after" returns records older than it.
	query.Set("type", "2")
	query.Set("after", strconv.FormatInt(end.UnixMilli(), 10))
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/api/v5/market/history-trades?%s", s.baseURL, query.Encode())

	var resp okxTradesResponse
	if err := getJSON(ctx, s.client, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "0" {
		return nil, fmt.Errorf("%w: okx code %s: %s", ErrFetchFailed, resp.Code, resp.Msg)
	}

	trades := make([]*entities.Trade, 0, len(resp.Data))
	for _, raw := range resp.Data {
		trade, err := s.normalize(symbol, raw)
		if err != nil {
			s.logger.Warn("Skipping malformed okx trade", "trade_id", raw.TradeID, "error", err)
			continue
		}
		if trade.Time.Before(start) || !trade.Time.Before(end) {
			continue
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func (s *OKXSource) normalize(symbol string, raw okxTrade) (*entities.Trade, error) {
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", raw.Price, err)
	}

	quantity, err := strconv.ParseFloat(raw.Size, 64)
	if err != nil {
		return nil, fmt.Errorf("parse size %q: %w", raw.Size, err)
	}

	ts, err := strconv.ParseInt(raw.Ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", raw.Ts, err)
	}
	tradeTime := time.UnixMilli(ts)

	side := entities.SideBuy
	if raw.Side == "sell" {
		side = entities.SideSell
	}

	id := entities.TradeID(entities.ExchangeOKX, symbol, raw.TradeID)
	if raw.TradeID == "" {
		id = entities.ContentTradeID(entities.ExchangeOKX, symbol, price, quantity, tradeTime)
	}

	return entities.NewTrade(id, entities.ExchangeOKX, symbol, price, quantity, side, tradeTime), nil
}
