package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/middleware"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// AssignmentHandler binds users to roles over HTTP.
type AssignmentHandler struct {
	assignments *usecase.AssignmentService
}

func NewAssignmentHandler(assignments *usecase.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func assignmentErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrInvalidID, Status: http.StatusBadRequest, Message: "invalid identifier"},
		{Err: usecase.ErrScopeIDRequired, Status: http.StatusBadRequest, Message: "scope instance id is required"},
		{Err: usecase.ErrScopeIDForbidden, Status: http.StatusBadRequest, Message: "scope instance id must be absent for global scope"},
		{Err: usecase.ErrScopeMismatch, Status: http.StatusBadRequest, Message: "scope does not match role"},
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		{Err: usecase.ErrOrganizationNotFound, Status: http.StatusNotFound, Message: "organization not found"},
		{Err: usecase.ErrEventNotFound, Status: http.StatusNotFound, Message: "event not found"},
		{Err: usecase.ErrAssignmentExists, Status: http.StatusConflict, Message: "user already has a role in this scope"},
	}
}

// AssignGlobalRole binds the path user to a global role.
func (h *AssignmentHandler) AssignGlobalRole(c *gin.Context) {
	h.assign(c, domain.ScopeGlobal, nil)
}

// AssignOrganizationRole binds the path user to a role within the path
// organization.
func (h *AssignmentHandler) AssignOrganizationRole(c *gin.Context) {
	orgID := c.Param("orgID")
	h.assign(c, domain.ScopeOrganization, &orgID)
}

// AssignEventRole binds the path user to a role within the path event.
func (h *AssignmentHandler) AssignEventRole(c *gin.Context) {
	eventID := c.Param("eventID")
	h.assign(c, domain.ScopeEvent, &eventID)
}

func (h *AssignmentHandler) assign(c *gin.Context, scope domain.Scope, scopeID *string) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.AssignRole(c.Request.Context(), actorID, usecase.AssignRoleInput{
		UserID:  c.Param("userID"),
		RoleID:  req.RoleID,
		Scope:   scope,
		ScopeID: scopeID,
	})
	if err != nil {
		RespondWithMappedError(c, err, assignmentErrorCases(), http.StatusInternalServerError, "failed to assign role")
		return
	}

	c.JSON(http.StatusCreated, AssignmentPayload{
		ID:         assignment.ID,
		UserID:     assignment.UserID,
		RoleID:     assignment.RoleID,
		Scope:      assignment.Scope,
		ScopeID:    assignment.ScopeID,
		AssignedAt: assignment.AssignedAt,
	})
}
