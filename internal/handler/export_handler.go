package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/edupulse-api/internal/service"
	appErrors "github.com/edupulse/edupulse-api/pkg/errors"
	"github.com/edupulse/edupulse-api/pkg/response"
)

// ExportHandler streams rendered analytics reports as downloads.
type ExportHandler struct {
	predictions predictionRunner
	integrity   integrityRunner
	exports     *service.ExportService
	defaultDays int
}

// NewExportHandler constructs the export handler.
func NewExportHandler(predictions predictionRunner, integrity integrityRunner, exports *service.ExportService, defaultDays int) *ExportHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &ExportHandler{predictions: predictions, integrity: integrity, exports: exports, defaultDays: defaultDays}
}

// Predictions renders the current prediction run as csv or pdf.
func (h *ExportHandler) Predictions(c *gin.Context) {
	if h.predictions == nil || h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, exportReq, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, _, err := h.predictions.Predict(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.RenderPredictions(result, exportReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc)
}

// Integrity renders the current integrity report as csv or pdf.
func (h *ExportHandler) Integrity(c *gin.Context) {
	if h.integrity == nil || h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, exportReq, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, _, err := h.integrity.Analyze(c.Request.Context(), service.IntegrityRequest{Days: req.Days, QuizID: req.QuizID})
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.RenderIntegrity(report, exportReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc)
}

func (h *ExportHandler) parseQuery(c *gin.Context) (service.PredictionRequest, service.ExportRequest, error) {
	days, quizID, err := parseWindowQuery(c, h.defaultDays)
	if err != nil {
		return service.PredictionRequest{}, service.ExportRequest{}, err
	}
	format := c.DefaultQuery("format", service.FormatCSV)
	return service.PredictionRequest{Days: days, QuizID: quizID}, service.ExportRequest{Format: format}, nil
}

func serveDocument(c *gin.Context, doc *service.ExportDocument) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("X-Document-ID", doc.ID)
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}
