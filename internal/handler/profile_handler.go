package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/service"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/response"
)

// ProfileHandler exposes admin role-profile endpoints.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// List godoc
// @Summary List role profiles
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, nil)
}

// Get godoc
// @Summary Get role profile
// @Tags Profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Search godoc
// @Summary Search role profile by name
// @Tags Profiles
// @Produce json
// @Param name query string true "Profile name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/search [get]
func (h *ProfileHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name is required"))
		return
	}
	profile, err := h.service.Search(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create godoc
// @Summary Create role profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body service.CreateProfileInput true "Profile payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profiles [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	var input service.CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Update godoc
// @Summary Update role profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path int true "Profile ID"
// @Param payload body service.UpdateProfileInput true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profiles/{id} [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Suspend godoc
// @Summary Suspend role profile
// @Description Blocks logins for every account assigned to the profile
// @Tags Profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id}/suspend [post]
func (h *ProfileHandler) Suspend(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Suspend(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reinstate godoc
// @Summary Reinstate role profile
// @Tags Profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id}/reinstate [post]
func (h *ProfileHandler) Reinstate(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reinstate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
