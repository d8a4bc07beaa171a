package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/service"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/response"
)

// ExportHandler streams rendered history exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// CompletedRequests godoc
// @Summary Export completed requests
// @Description Download the current user's completed requests as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "File format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /requests/completed/export [get]
func (h *ExportHandler) CompletedRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.CompletedRequests(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

// CompletedServices godoc
// @Summary Export completed services
// @Description Download the company's completed shortlisted requests as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "File format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /browse/history/export [get]
func (h *ExportHandler) CompletedServices(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.CompletedServices(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

func writeExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
