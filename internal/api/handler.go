package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/metrics"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/screening"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxBatch caps the records accepted by one batch request.
const MaxBatch = 1000

// Error codes carried in the response envelope.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidRecord  = "INVALID_RECORD"
	CodeCanceled       = "CANCELED"
	CodeScreenFailed   = "SCREEN_FAILED"
)

// #region requests
// ScreenRequest is the body of POST /v1/screen.
type ScreenRequest struct {
	Record crecord.Record `json:"record"`
	AsOf   crecord.Date   `json:"as_of"` // optional
}

// BatchRequest is the body of POST /v1/screen/batch.
type BatchRequest struct {
	Records []crecord.Record `json:"records" binding:"required,min=1,max=1000"`
	AsOf    crecord.Date     `json:"as_of"`
}

// #endregion requests

// #region handler
// Handler serves screenings over HTTP.
type Handler struct {
	svc     *screening.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHandler wraps svc. m may be nil, in which case /metrics is not served.
func NewHandler(svc *screening.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, metrics: m, logger: logger.Named("api")}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.logRequests)

	r.GET("/healthz", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/screen", h.Screen)
		v1.POST("/screen/batch", h.ScreenBatch)
	}
	return r
}

// Health handles GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Screen handles POST /v1/screen
func (h *Handler) Screen(c *gin.Context) {
	var req ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}

	report, err := h.svc.ScreenAt(c.Request.Context(), req.Record, req.AsOf)
	if err != nil {
		h.screenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// ScreenBatch handles POST /v1/screen/batch. Records that fail validation
// are reported per item; the request itself still succeeds.
func (h *Handler) ScreenBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}

	items, err := h.svc.ScreenBatchAt(c.Request.Context(), req.Records, req.AsOf)
	if err != nil {
		h.screenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"items": items},
	})
}

// #endregion handler

// #region helpers
func (h *Handler) screenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, crecord.ErrInvalidRecord):
		fail(c, http.StatusBadRequest, CodeInvalidRecord, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusServiceUnavailable, CodeCanceled, err)
	default:
		h.logger.Error("screen failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, CodeScreenFailed, err)
	}
}

func fail(c *gin.Context, status int, code string, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func (h *Handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// #endregion helpers
