package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clusterflow/internal/application/usecases"
	"clusterflow/internal/domain/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockBackfillExecutor is a mock implementation of BackfillExecutor
type MockBackfillExecutor struct {
	mock.Mock
}

func (m *MockBackfillExecutor) Execute(ctx context.Context, req usecases.BackfillRequest) (*usecases.BackfillReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.BackfillReport), args.Error(1)
}

// MockClustersExecutor is a mock implementation of ClustersExecutor
type MockClustersExecutor struct {
	mock.Mock
}

func (m *MockClustersExecutor) Execute(ctx context.Context, query usecases.ClustersQuery) ([]entities.PriceBucket, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PriceBucket), args.Error(1)
}

func newTestRouter(backfill *MockBackfillExecutor, clusters *MockClustersExecutor) *gin.Engine {
	handler := NewHandler(backfill, clusters, slog.Default())
	return NewRouter(handler, slog.Default())
}

func doRequest(router *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Backfill(t *testing.T) {
	t.Run("success with failed windows reported", func(t *testing.T) {
		backfill := new(MockBackfillExecutor)
		clusters := new(MockClustersExecutor)
		router := newTestRouter(backfill, clusters)

		windowStart := time.UnixMilli(1700000000000)
		backfill.On("Execute", mock.Anything, mock.MatchedBy(func(req usecases.BackfillRequest) bool {
			return req.Symbol == "BTCUSDT" && req.Exchange == "binance" &&
				req.Start.UnixMilli() == 1700000000000 && req.End.UnixMilli() == 1700003600000
		})).Return(&usecases.BackfillReport{
			Symbol:   "BTCUSDT",
			Exchange: entities.ExchangeBinance,
			Written:  120,
			Failed: []usecases.WindowFailure{
				{Start: windowStart, End: windowStart.Add(time.Hour), Err: "fetch failed"},
			},
		}, nil)

		body := []byte(`{"symbol":"BTCUSDT","exchange":"binance","startTs":1700000000000,"endTs":1700003600000}`)
		rec := doRequest(router, http.MethodPost, "/api/v1/backfill", body)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["ok"])
		assert.Contains(t, resp["message"], "BTCUSDT")
		assert.Equal(t, float64(120), resp["written"])

		failed, ok := resp["failedWindows"].([]any)
		require.True(t, ok)
		require.Len(t, failed, 1)
		backfill.AssertExpectations(t)
	})

	t.Run("missing symbol", func(t *testing.T) {
		backfill := new(MockBackfillExecutor)
		router := newTestRouter(backfill, new(MockClustersExecutor))

		rec := doRequest(router, http.MethodPost, "/api/v1/backfill", []byte(`{"exchange":"binance"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "required")
		backfill.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("missing exchange", func(t *testing.T) {
		backfill := new(MockBackfillExecutor)
		router := newTestRouter(backfill, new(MockClustersExecutor))

		rec := doRequest(router, http.MethodPost, "/api/v1/backfill", []byte(`{"symbol":"BTCUSDT"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		backfill.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("invalid body", func(t *testing.T) {
		router := newTestRouter(new(MockBackfillExecutor), new(MockClustersExecutor))

		rec := doRequest(router, http.MethodPost, "/api/v1/backfill", []byte(`{"symbol":`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown exchange maps to client error", func(t *testing.T) {
		backfill := new(MockBackfillExecutor)
		router := newTestRouter(backfill, new(MockClustersExecutor))

		backfill.On("Execute", mock.Anything, mock.Anything).
			Return(nil, entities.ErrUnknownExchange)

		rec := doRequest(router, http.MethodPost, "/api/v1/backfill",
			[]byte(`{"symbol":"BTCUSDT","exchange":"kraken"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown exchange")
	})

	t.Run("store failure maps to server error", func(t *testing.T) {
		backfill := new(MockBackfillExecutor)
		router := newTestRouter(backfill, new(MockClustersExecutor))

		backfill.On("Execute", mock.Anything, mock.Anything).
			Return(nil, errors.New("failed to save trades batch: disk full"))

		rec := doRequest(router, http.MethodPost, "/api/v1/backfill",
			[]byte(`{"symbol":"BTCUSDT","exchange":"binance"}`))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_TopClusters(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		clusters := new(MockClustersExecutor)
		router := newTestRouter(new(MockBackfillExecutor), clusters)

		clusters.On("Execute", mock.Anything, usecases.ClustersQuery{
			Symbol:     "BTCUSDT",
			Exchange:   "binance",
			Period:     24 * time.Hour,
			BucketSize: 1.0,
			Limit:      50,
		}).Return([]entities.PriceBucket{}, nil)

		rec := doRequest(router, http.MethodGet, "/api/v1/clusters", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		clusters.AssertExpectations(t)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "BTCUSDT", resp["symbol"])
		assert.Equal(t, "binance", resp["exchange"])

		// Empty result is an empty array, not null.
		list, ok := resp["clusters"].([]any)
		require.True(t, ok)
		assert.Empty(t, list)
	})

	t.Run("explicit parameters", func(t *testing.T) {
		clusters := new(MockClustersExecutor)
		router := newTestRouter(new(MockBackfillExecutor), clusters)

		lastTrade := time.UnixMilli(1700000300000)
		clusters.On("Execute", mock.Anything, usecases.ClustersQuery{
			Symbol:     "ETHUSDT",
			Exchange:   "okx",
			Period:     time.Hour,
			BucketSize: 0.5,
			Limit:      10,
		}).Return([]entities.PriceBucket{
			{Price: 3000.0, Volume: 12.5, LastTradeTime: lastTrade},
			{Price: 3000.5, Volume: 3.2, LastTradeTime: lastTrade},
		}, nil)

		rec := doRequest(router, http.MethodGet,
			"/api/v1/clusters?symbol=ETHUSDT&exchange=okx&periodMs=3600000&bucket=0.5&limit=10", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp clustersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Clusters, 2)
		assert.Equal(t, 3000.0, resp.Clusters[0].Price)
		assert.Equal(t, 12.5, resp.Clusters[0].Volume)
		assert.Equal(t, int64(1700000300000), resp.Clusters[0].LastTs)
	})

	t.Run("malformed numeric parameters", func(t *testing.T) {
		clusters := new(MockClustersExecutor)
		router := newTestRouter(new(MockBackfillExecutor), clusters)

		for _, target := range []string{
			"/api/v1/clusters?limit=abc",
			"/api/v1/clusters?periodMs=abc",
			"/api/v1/clusters?bucket=abc",
		} {
			rec := doRequest(router, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
		clusters.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("unknown exchange maps to client error", func(t *testing.T) {
		clusters := new(MockClustersExecutor)
		router := newTestRouter(new(MockBackfillExecutor), clusters)

		clusters.On("Execute", mock.Anything, mock.Anything).
			Return(nil, entities.ErrUnknownExchange)

		rec := doRequest(router, http.MethodGet, "/api/v1/clusters?exchange=kraken", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Health(t *testing.T) {
	router := newTestRouter(new(MockBackfillExecutor), new(MockClustersExecutor))

	before := time.Now().UnixMilli()
	rec := doRequest(router, http.MethodGet, "/health", nil)
	after := time.Now().UnixMilli()

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])

	now := int64(resp["now"].(float64))
	assert.GreaterOrEqual(t, now, before)
	assert.LessOrEqual(t, now, after)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(new(MockBackfillExecutor), new(MockClustersExecutor))

	t.Run("generated when absent", func(t *testing.T) {
		rec := doRequest(router, http.MethodGet, "/health", nil)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("propagated when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})
}
