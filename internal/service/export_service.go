package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportRequestRepository interface {
	SearchCompletedByOwner(ctx context.Context, pinID int64, filter models.CompletedRequestFilter) ([]models.Request, error)
}

type exportShortlistRepository interface {
	SearchCompleted(ctx context.Context, companyID int64, filter models.CompletedRequestFilter) ([]models.Request, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries the rendered file and response metadata.
type ExportResult struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportService renders completed-request history as downloadable files.
type ExportService struct {
	requests   exportRequestRepository
	shortlists exportShortlistRepository
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(requests exportRequestRepository, shortlists exportShortlistRepository, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{requests: requests, shortlists: shortlists, csv: csv, pdf: pdf, logger: logger}
}

// CompletedRequests exports the PIN owner's completed requests.
func (s *ExportService) CompletedRequests(ctx context.Context, pinID int64, format ExportFormat) (*ExportResult, error) {
	requests, err := s.requests.SearchCompletedByOwner(ctx, pinID, models.CompletedRequestFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed requests")
	}
	return s.render(requestDataset(requests), "Completed Requests", "completed_requests", format)
}

// CompletedServices exports the completed requests a CSR company had
// shortlisted.
func (s *ExportService) CompletedServices(ctx context.Context, companyID int64, format ExportFormat) (*ExportResult, error) {
	requests, err := s.shortlists.SearchCompleted(ctx, companyID, models.CompletedRequestFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed services")
	}
	return s.render(requestDataset(requests), "Completed Services", "completed_services", format)
}

func (s *ExportService) render(dataset export.Dataset, title, basename string, format ExportFormat) (*ExportResult, error) {
	var payload []byte
	var err error
	var contentType, ext string

	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
		ext = "csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
		ext = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s_%s.%s", basename, time.Now().UTC().Format("20060102_150405"), ext)
	return &ExportResult{Payload: payload, Filename: filename, ContentType: contentType}, nil
}

func requestDataset(requests []models.Request) export.Dataset {
	headers := []string{"ID", "Title", "Category", "Urgency", "Status", "Location", "Created", "Completed"}
	rows := make([]map[string]string, 0, len(requests))
	for _, req := range requests {
		location := ""
		if req.Location != nil {
			location = *req.Location
		}
		rows = append(rows, map[string]string{
			"ID":        strconv.FormatInt(req.ID, 10),
			"Title":     req.Title,
			"Category":  req.Category,
			"Urgency":   string(req.Urgency),
			"Status":    string(req.Status),
			"Location":  location,
			"Created":   req.CreatedAt.UTC().Format("2006-01-02"),
			"Completed": req.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
