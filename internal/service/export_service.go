package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupulse/edupulse-api/internal/dto"
	appErrors "github.com/edupulse/edupulse-api/pkg/errors"
	"github.com/edupulse/edupulse-api/pkg/export"
)

// Export formats supported by the report endpoints.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportRequest selects an output format for a rendered report.
type ExportRequest struct {
	Format string `json:"format" validate:"required,export_format"`
}

// ExportDocument is a rendered, non-persisted report artifact.
type ExportDocument struct {
	ID          string
	Filename    string
	ContentType string
	Bytes       []byte
}

// ExportService renders analytics results into downloadable documents.
// Documents are rendered on request and never stored.
type ExportService struct {
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs the export service and registers the
// export_format validation rule.
func NewExportService(validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExportService{
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
	_ = svc.validator.RegisterValidation("export_format", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case FormatCSV, FormatPDF:
			return true
		default:
			return false
		}
	})
	return svc
}

// RenderPredictions produces a per-student risk table in the requested format.
func (s *ExportService) RenderPredictions(result *dto.PredictionResult, req ExportRequest) (*ExportDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Success Probability", "Risk Level", "Avg Score", "Engagement", "Risk Factors"},
	}
	for _, prediction := range result.Predictions {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":             prediction.StudentName,
			"Success Probability": formatScore(prediction.SuccessProbability),
			"Risk Level":          string(prediction.RiskLevel),
			"Avg Score":           formatScore(prediction.Metrics.Performance.AverageScore),
			"Engagement":          formatScore(prediction.Metrics.Chat.EngagementScore),
			"Risk Factors":        strconv.Itoa(len(prediction.RiskFactors)),
		})
	}

	return s.render(dataset, "student success predictions", "success-predictions", req.Format)
}

// RenderIntegrity produces a per-user violation table in the requested format.
func (s *ExportService) RenderIntegrity(report *dto.IntegrityReport, req ExportRequest) (*ExportDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset := export.Dataset{
		Headers: []string{"User", "High", "Medium", "Low", "Risk Score", "Risk Level"},
	}
	for _, user := range report.UserRiskAssessment {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"User":       user.UserID,
			"High":       strconv.Itoa(user.HighCount),
			"Medium":     strconv.Itoa(user.MediumCount),
			"Low":        strconv.Itoa(user.LowCount),
			"Risk Score": formatScore(user.RiskScore),
			"Risk Level": string(user.RiskLevel),
		})
	}

	return s.render(dataset, "discussion integrity report", "integrity-report", req.Format)
}

func (s *ExportService) render(dataset export.Dataset, title, stem, format string) (*ExportDocument, error) {
	doc := &ExportDocument{ID: uuid.NewString()}
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, fmt.Errorf("render pdf export: %w", err)
		}
		doc.Bytes = payload
		doc.ContentType = "application/pdf"
		doc.Filename = fmt.Sprintf("%s-%s.pdf", stem, stamp)
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render csv export: %w", err)
		}
		doc.Bytes = payload
		doc.ContentType = "text/csv"
		doc.Filename = fmt.Sprintf("%s-%s.csv", stem, stamp)
	}

	return doc, nil
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
