package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/service"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// CategoryHandler exposes category routing administration.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler constructs handler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type setMappingRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListMappings godoc
// @Summary List category to role mappings
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories/mappings [get]
func (h *CategoryHandler) ListMappings(c *gin.Context) {
	mappings, err := h.categories.ListMappings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mappings, nil)
}

// SetMapping godoc
// @Summary Assign the role responsible for a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param category path string true "Category"
// @Param payload body setMappingRequest true "Role payload"
// @Success 204
// @Router /categories/{category}/mapping [put]
func (h *CategoryHandler) SetMapping(c *gin.Context) {
	var req setMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category := models.Category(c.Param("category"))
	if err := h.categories.SetMapping(c.Request.Context(), category, models.RoleName(req.Role)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearMapping godoc
// @Summary Remove the role mapping of a category
// @Tags Categories
// @Produce json
// @Param category path string true "Category"
// @Success 204
// @Router /categories/{category}/mapping [delete]
func (h *CategoryHandler) ClearMapping(c *gin.Context) {
	category := models.Category(c.Param("category"))
	if err := h.categories.ClearMapping(c.Request.Context(), category); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
