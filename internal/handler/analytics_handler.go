package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/edupulse-api/internal/dto"
	"github.com/edupulse/edupulse-api/internal/middleware"
	"github.com/edupulse/edupulse-api/internal/service"
	appErrors "github.com/edupulse/edupulse-api/pkg/errors"
	"github.com/edupulse/edupulse-api/pkg/response"
)

type predictionRunner interface {
	Predict(ctx context.Context, req service.PredictionRequest) (*dto.PredictionResult, bool, error)
}

type integrityRunner interface {
	Analyze(ctx context.Context, req service.IntegrityRequest) (*dto.IntegrityReport, bool, error)
}

// AnalyticsHandler exposes the prediction and integrity pipelines.
type AnalyticsHandler struct {
	predictions predictionRunner
	integrity   integrityRunner
	metrics     *service.MetricsService
	defaultDays int
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(predictions predictionRunner, integrity integrityRunner, metrics *service.MetricsService, defaultDays int) *AnalyticsHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &AnalyticsHandler{predictions: predictions, integrity: integrity, metrics: metrics, defaultDays: defaultDays}
}

// Predictions returns the per-student success predictions with cohort insights.
func (h *AnalyticsHandler) Predictions(c *gin.Context) {
	if h.predictions == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	days, quizID, err := parseWindowQuery(c, h.defaultDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	result, cacheHit, err := h.predictions.Predict(c.Request.Context(), service.PredictionRequest{Days: days, QuizID: quizID})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, result, meta)
}

// Integrity returns the severity-classified integrity report.
func (h *AnalyticsHandler) Integrity(c *gin.Context) {
	if h.integrity == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	days, quizID, err := parseWindowQuery(c, h.defaultDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	report, cacheHit, err := h.integrity.Analyze(c.Request.Context(), service.IntegrityRequest{Days: days, QuizID: quizID})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, meta)
}

// System returns instrumentation metrics snapshots.
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), middleware.ExtractMeta(c))
}

// parseWindowQuery reads days/quizId. A non-numeric days value fails fast so
// window semantics are never silently corrupted.
func parseWindowQuery(c *gin.Context, defaultDays int) (int, string, error) {
	days := defaultDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", appErrors.Clone(appErrors.ErrValidation, "invalid days parameter")
		}
		days = parsed
	}
	return days, c.Query("quizId"), nil
}
