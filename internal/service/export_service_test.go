package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterheng/Team7/internal/models"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/export"
)

type exportRequestRepoStub struct {
	completed []models.Request
}

func (s *exportRequestRepoStub) SearchCompletedByOwner(ctx context.Context, pinID int64, filter models.CompletedRequestFilter) ([]models.Request, error) {
	return s.completed, nil
}

type exportShortlistRepoStub struct {
	completed []models.Request
}

func (s *exportShortlistRepoStub) SearchCompleted(ctx context.Context, companyID int64, filter models.CompletedRequestFilter) ([]models.Request, error) {
	return s.completed, nil
}

type pdfRendererStub struct {
	title string
}

func (s *pdfRendererStub) Render(data export.Dataset, title string) ([]byte, error) {
	s.title = title
	return []byte("%PDF-stub"), nil
}

func completedFixture() []models.Request {
	location := "Block 5"
	return []models.Request{{
		ID:        42,
		Title:     "Wheelchair ramp",
		Category:  "mobility",
		Urgency:   models.UrgencyHigh,
		Status:    models.RequestStatusCompleted,
		Location:  &location,
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}}
}

func TestExportServiceCompletedRequestsCSV(t *testing.T) {
	requests := &exportRequestRepoStub{completed: completedFixture()}
	svc := NewExportService(requests, &exportShortlistRepoStub{}, nil, nil, nil)

	result, err := svc.CompletedRequests(context.Background(), 7, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "completed_requests_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "ID,Title,Category,Urgency,Status,Location,Created,Completed")
	assert.Contains(t, body, "Wheelchair ramp")
	assert.Contains(t, body, "2026-03-14")
}

func TestExportServiceCompletedServicesPDF(t *testing.T) {
	shortlists := &exportShortlistRepoStub{completed: completedFixture()}
	pdf := &pdfRendererStub{}
	svc := NewExportService(&exportRequestRepoStub{}, shortlists, nil, nil, pdf)

	result, err := svc.CompletedServices(context.Background(), 9, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.Equal(t, "Completed Services", pdf.title)
	assert.Equal(t, []byte("%PDF-stub"), result.Payload)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&exportRequestRepoStub{}, &exportShortlistRepoStub{}, nil, nil, nil)

	_, err := svc.CompletedRequests(context.Background(), 7, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
