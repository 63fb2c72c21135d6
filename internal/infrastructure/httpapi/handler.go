package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clusterflow/internal/application/usecases"
	"clusterflow/internal/domain/entities"
)

// BackfillExecutor and ClustersExecutor are the two use cases this boundary
// exposes; narrowed to interfaces so handler tests can mock them.
type BackfillExecutor interface {
	Execute(ctx context.Context, req usecases.BackfillRequest) (*usecases.BackfillReport, error)
}

type ClustersExecutor interface {
	Execute(ctx context.Context, query usecases.ClustersQuery) ([]entities.PriceBucket, error)
}

const (
	defaultQuerySymbol   = "BTCUSDT"
	defaultQueryExchange = "binance"
	defaultQueryLimit    = 50
	defaultQueryPeriodMs = 86_400_000
	defaultQueryBucket   = 1.0
)

type Handler struct {
	backfill BackfillExecutor
	clusters ClustersExecutor
	logger   *slog.Logger
}

func NewHandler(backfill BackfillExecutor, clusters ClustersExecutor, logger *slog.Logger) *Handler {
	return &Handler{
		backfill: backfill,
		clusters: clusters,
		logger:   logger,
	}
}

type backfillBody struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	StartTs  int64  `json:"startTs"`
	EndTs    int64  `json:"endTs"`
}

type failedWindowJSON struct {
	StartTs int64  `json:"startTs"`
	EndTs   int64  `json:"endTs"`
	Error   string `json:"error"`
}

type backfillResponse struct {
	OK            bool               `json:"ok"`
	Message       string             `json:"message"`
	Written       int                `json:"written"`
	FailedWindows []failedWindowJSON `json:"failedWindows"`
}

// Backfill handles POST /api/v1/backfill.
func (h *Handler) Backfill(c *gin.Context) {
	var body backfillBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Symbol == "" || body.Exchange == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and exchange are required"})
		return
	}

	req := usecases.BackfillRequest{
		Symbol:   body.Symbol,
		Exchange: body.Exchange,
	}
	if body.StartTs > 0 {
		req.Start = time.UnixMilli(body.StartTs)
	}
	if body.EndTs > 0 {
		req.End = time.UnixMilli(body.EndTs)
	}

	report, err := h.backfill.Execute(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	failed := make([]failedWindowJSON, 0, len(report.Failed))
	for _, w := range report.Failed {
		failed = append(failed, failedWindowJSON{
			StartTs: w.Start.UnixMilli(),
			EndTs:   w.End.UnixMilli(),
			Error:   w.Err,
		})
	}

	c.JSON(http.StatusOK, backfillResponse{
		OK:            true,
		Message:       fmt.Sprintf("backfill completed for %s on %s", report.Symbol, report.Exchange),
		Written:       report.Written,
		FailedWindows: failed,
	})
}

type clusterJSON struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	LastTs int64   `json:"lastTs"`
}

type clustersResponse struct {
	Symbol   string        `json:"symbol"`
	Exchange string        `json:"exchange"`
	Clusters []clusterJSON `json:"clusters"`
}

// TopClusters handles GET /api/v1/clusters.
func (h *Handler) TopClusters(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", defaultQuerySymbol)
	exchange := c.DefaultQuery("exchange", defaultQueryExchange)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultQueryLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	periodMs, err := strconv.ParseInt(c.DefaultQuery("periodMs", strconv.Itoa(defaultQueryPeriodMs)), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid periodMs"})
		return
	}
	bucket, err := strconv.ParseFloat(c.DefaultQuery("bucket", strconv.FormatFloat(defaultQueryBucket, 'f', -1, 64)), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket"})
		return
	}

	buckets, err := h.clusters.Execute(c.Request.Context(), usecases.ClustersQuery{
		Symbol:     symbol,
		Exchange:   exchange,
		Period:     time.Duration(periodMs) * time.Millisecond,
		BucketSize: bucket,
		Limit:      limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	clusters := make([]clusterJSON, 0, len(buckets))
	for _, b := range buckets {
		clusters = append(clusters, clusterJSON{
			Price:  b.Price,
			Volume: b.Volume,
			LastTs: b.LastTradeTime.UnixMilli(),
		})
	}

	c.JSON(http.StatusOK, clustersResponse{
		Symbol:   symbol,
		Exchange: exchange,
		Clusters: clusters,
	})
}

// Health handles GET /health, liveness only.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":  true,
		"now": time.Now().UnixMilli(),
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if errors.Is(err, entities.ErrInvalidSymbol) || errors.Is(err, entities.ErrUnknownExchange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
