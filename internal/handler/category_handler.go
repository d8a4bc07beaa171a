package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/asterheng/Team7/internal/models"
	"github.com/asterheng/Team7/internal/service"
	appErrors "github.com/asterheng/Team7/pkg/errors"
	"github.com/asterheng/Team7/pkg/response"
)

// CategoryHandler exposes platform management of service categories.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler creates a new handler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List service categories
// @Tags Categories
// @Produce json
// @Param search query string false "Name or description substring"
// @Param suspended query bool false "Filter by suspension"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	filter := models.CategoryFilter{Search: c.Query("search")}
	if raw := c.Query("suspended"); raw != "" {
		suspended, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid suspended flag"))
			return
		}
		filter.Suspended = &suspended
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	categories, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, pagination)
}

// Get godoc
// @Summary Get service category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	category, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Create godoc
// @Summary Create service category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body service.CreateCategoryInput true "Category payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var input service.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}
	category, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Update service category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param payload body service.UpdateCategoryInput true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input service.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}
	category, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Suspend godoc
// @Summary Suspend service category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{id}/suspend [post]
func (h *CategoryHandler) Suspend(c *gin.Context) {
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
// @Summary Reinstate service category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{id}/reinstate [post]
func (h *CategoryHandler) Reinstate(c *gin.Context) {
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
