package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/service"
	"github.com/asterheng/Team7/pkg/response"
)

// PlatformHandler exposes platform-management operations over requests.
type PlatformHandler struct {
	service *service.RequestService
}

// NewPlatformHandler creates a new handler.
func NewPlatformHandler(svc *service.RequestService) *PlatformHandler {
	return &PlatformHandler{service: svc}
}

// Complete godoc
// @Summary Mark request completed
// @Description Close a request on behalf of platform management
// @Tags Platform
// @Produce json
// @Param id path int true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /platform/requests/{id}/complete [post]
func (h *PlatformHandler) Complete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Complete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Remove request
// @Description Delete a request together with its view and shortlist records
// @Tags Platform
// @Produce json
// @Param id path int true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /platform/requests/{id} [delete]
func (h *PlatformHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
