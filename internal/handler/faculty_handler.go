package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/service"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/response"
)

// FacultyHandler exposes the department roster.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler constructs handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// ListDepartment godoc
// @Summary List the caller's department faculty
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) ListDepartment(c *gin.Context) {
	members, err := h.service.ListDepartment(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}
