package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/service"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/response"
)

// RequestHandler exposes the PIN-side request lifecycle endpoints. The
// authenticated user is always the owner; ownership is enforced by scoping
// every query to the caller's id.
type RequestHandler struct {
	service *service.RequestService
}

// NewRequestHandler creates a new handler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{service: svc}
}

// Create godoc
// @Summary Create assistance request
// @Description Open a new assistance request for the current PIN user
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	req, err := h.service.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// ListActive godoc
// @Summary List active requests
// @Description List the current user's pending, approved and in-progress requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) ListActive(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListActive(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// History godoc
// @Summary List request history
// @Description List the current user's completed and suspended requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/history [get]
func (h *RequestHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Search godoc
// @Summary Search own requests by title
// @Tags Requests
// @Produce json
// @Param q query string false "Title substring"
// @Success 200 {object} response.Envelope
// @Router /requests/search [get]
func (h *RequestHandler) Search(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.SearchByTitle(c.Request.Context(), claims.UserID, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// SearchCompleted godoc
// @Summary Search completed matches
// @Description Search the current user's completed requests by category and completion date
// @Tags Requests
// @Produce json
// @Param category query string false "Category substring"
// @Param date query string false "Completion date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/completed [get]
func (h *RequestHandler) SearchCompleted(c *gin.Context) {
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

	requests, err := h.service.SearchCompleted(c.Request.Context(), claims.UserID, c.Query("category"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// GetForEdit godoc
// @Summary Load request for editing
// @Description Returns the request when it is still active
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/edit [get]
func (h *RequestHandler) GetForEdit(c *gin.Context) {
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

	req, err := h.service.GetForEdit(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Update godoc
// @Summary Update request
// @Description Update an active request's editable fields
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body service.UpdateRequestInput true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
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

	var input service.UpdateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	req, err := h.service.Update(c.Request.Context(), id, claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Suspend godoc
// @Summary Suspend request
// @Description Withdraw the request from the catalogue
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/suspend [post]
func (h *RequestHandler) Suspend(c *gin.Context) {
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

	if err := h.service.Suspend(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ViewCount godoc
// @Summary Request view count
// @Description How many distinct companies viewed the request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/views [get]
func (h *RequestHandler) ViewCount(c *gin.Context) {
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

	count, err := h.service.ViewCount(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"request_id": id, "view_count": count}, nil)
}

// ShortlistCount godoc
// @Summary Request shortlist count
// @Description How many companies shortlisted the request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/shortlists [get]
func (h *RequestHandler) ShortlistCount(c *gin.Context) {
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

	count, err := h.service.ShortlistCount(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"request_id": id, "shortlist_count": count}, nil)
}
