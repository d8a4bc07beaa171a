package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/models"
	"github.com/asterheng/Team7/internal/service"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/response"
)

// BrowseHandler exposes the CSR-side catalogue and shortlist endpoints. The
// authenticated user is the company browsing on its own behalf.
type BrowseHandler struct {
	service *service.BrowseService
}

// NewBrowseHandler creates a new handler.
func NewBrowseHandler(svc *service.BrowseService) *BrowseHandler {
	return &BrowseHandler{service: svc}
}

// Search godoc
// @Summary Browse available requests
// @Description Search pending and approved requests by term, category and urgency
// @Tags Browse
// @Produce json
// @Param q query string false "Search term"
// @Param category query string false "Exact category"
// @Param urgency query string false "Urgency" Enums(low, medium, high, urgent)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /browse/requests [get]
func (h *BrowseHandler) Search(c *gin.Context) {
	filter := models.AvailableRequestFilter{
		Term:     c.Query("q"),
		Category: c.Query("category"),
	}
	if raw := c.Query("urgency"); raw != "" {
		urgency := models.RequestUrgency(raw)
		if !urgency.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown urgency"))
			return
		}
		filter.Urgency = urgency
	}

	requests, err := h.service.SearchAvailable(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Details godoc
// @Summary View request details
// @Description Returns the request and records a view; repeat views do not bump the counter
// @Tags Browse
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /browse/requests/{id} [get]
func (h *BrowseHandler) Details(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.service.RequestDetails(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// AddToShortlist godoc
// @Summary Shortlist a request
// @Tags Browse
// @Produce json
// @Param id path int true "Request ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /browse/requests/{id}/shortlist [post]
func (h *BrowseHandler) AddToShortlist(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.AddToShortlist(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"request_id": id, "shortlisted": true})
}

// RemoveFromShortlist godoc
// @Summary Remove a request from the shortlist
// @Tags Browse
// @Produce json
// @Param id path int true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /browse/requests/{id}/shortlist [delete]
func (h *BrowseHandler) RemoveFromShortlist(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.RemoveFromShortlist(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Shortlist godoc
// @Summary List or search the shortlist
// @Tags Browse
// @Produce json
// @Param q query string false "Title or description substring"
// @Success 200 {object} response.Envelope
// @Router /browse/shortlist [get]
func (h *BrowseHandler) Shortlist(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.SearchShortlisted(c.Request.Context(), claims.UserID, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// ShortlistedDetails godoc
// @Summary View a shortlisted request
// @Description Returns a shortlisted request without recording a view
// @Tags Browse
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /browse/shortlist/{id} [get]
func (h *BrowseHandler) ShortlistedDetails(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	req, err := h.service.ShortlistedDetails(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// CompletedHistory godoc
// @Summary Completed services history
// @Description Completed requests the company had shortlisted
// @Tags Browse
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /browse/history [get]
func (h *BrowseHandler) CompletedHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.CompletedHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// SearchCompleted godoc
// @Summary Search completed services
// @Description Narrow the completed history by title and completion date
// @Tags Browse
// @Produce json
// @Param q query string false "Title substring"
// @Param date query string false "Completion date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /browse/history/search [get]
func (h *BrowseHandler) SearchCompleted(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		date = &parsed
	}

	requests, err := h.service.SearchCompletedServices(c.Request.Context(), claims.UserID, c.Query("q"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}
