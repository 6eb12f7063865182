package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/service"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// ReferenceHandler exposes role, department and position reference data.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// Roles godoc
// @Summary List assignable municipality roles
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/roles [get]
func (h *ReferenceHandler) Roles(c *gin.Context) {
	roles, err := h.reference.ListMunicipalityRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// Positions godoc
// @Summary List municipality staff positions
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/positions [get]
func (h *ReferenceHandler) Positions(c *gin.Context) {
	positions, err := h.reference.ListMunicipalityPositions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, positions, nil)
}

// Departments godoc
// @Summary List departments
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/departments [get]
func (h *ReferenceHandler) Departments(c *gin.Context) {
	departments, err := h.reference.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Position godoc
// @Summary Resolve a department and role pair
// @Tags Reference
// @Produce json
// @Param department query string true "Department name"
// @Param role query string true "Role name"
// @Success 200 {object} response.Envelope
// @Router /reference/position [get]
func (h *ReferenceHandler) Position(c *gin.Context) {
	position, err := h.reference.FindPosition(c.Request.Context(), c.Query("department"), models.RoleName(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}
