package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tech-Nerdz/college-ERP-sub003/internal/service"
	appErrors "github.com/Tech-Nerdz/college-ERP-sub003/pkg/errors"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/response"
)

// SlotAssignmentHandler manages slot assignment endpoints.
type SlotAssignmentHandler struct {
	service *service.SlotAssignmentService
}

// NewSlotAssignmentHandler constructs handler.
func NewSlotAssignmentHandler(svc *service.SlotAssignmentService) *SlotAssignmentHandler {
	return &SlotAssignmentHandler{service: svc}
}

// Propose godoc
// @Summary Propose a slot assignment
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body service.ProposeSlotRequest true "Slot proposal"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots [post]
func (h *SlotAssignmentHandler) Propose(c *gin.Context) {
	var req service.ProposeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Propose(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Remove godoc
// @Summary Remove a slot assignment
// @Tags Slots
// @Produce json
// @Param id path string true "Slot assignment ID"
// @Success 204 "No Content"
// @Router /slots/{id} [delete]
func (h *SlotAssignmentHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reassign godoc
// @Summary Reassign a slot to another faculty member
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot assignment ID"
// @Param payload body service.ReassignSlotRequest true "Reassignment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots/{id}/reassign [post]
func (h *SlotAssignmentHandler) Reassign(c *gin.Context) {
	var req service.ReassignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Reassign(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListMine godoc
// @Summary List the caller's slot assignments
// @Tags Slots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots/mine [get]
func (h *SlotAssignmentHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	facultyID := claims.FacultyID
	if facultyID == "" {
		facultyID = claims.UserID
	}
	slots, err := h.service.ListByFaculty(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
