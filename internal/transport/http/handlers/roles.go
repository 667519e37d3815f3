package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/transport/http/middleware"
	"github.com/whiteflags26/turfmania-sub000/internal/usecase"
)

// RoleHandler manages scoped roles over HTTP.
type RoleHandler struct {
	roles *usecase.RoleService
	authz *usecase.AuthzService
}

func NewRoleHandler(roles *usecase.RoleService, authz *usecase.AuthzService) *RoleHandler {
	return &RoleHandler{roles: roles, authz: authz}
}

// roleErrorCases are shared by the role mutation endpoints.
func roleErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrInvalidID, Status: http.StatusBadRequest, Message: "invalid identifier"},
		{Err: usecase.ErrInvalidScope, Status: http.StatusBadRequest, Message: "invalid scope"},
		{Err: usecase.ErrScopeIDRequired, Status: http.StatusBadRequest, Message: "scope instance id is required"},
		{Err: usecase.ErrScopeIDForbidden, Status: http.StatusBadRequest, Message: "scope instance id must be absent for global scope"},
		{Err: usecase.ErrUnknownPermissions, Status: http.StatusBadRequest, Message: "unknown permissions for scope"},
		{Err: usecase.ErrOrganizationNotFound, Status: http.StatusNotFound, Message: "organization not found"},
		{Err: usecase.ErrEventNotFound, Status: http.StatusNotFound, Message: "event not found"},
		{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists in this scope"},
		{Err: usecase.ErrDefaultRoleProtected, Status: http.StatusForbidden, Message: "default role cannot be deleted"},
	}
}

// CreateGlobalRole creates a role in the global scope.
func (h *RoleHandler) CreateGlobalRole(c *gin.Context) {
	h.createRole(c, domain.ScopeGlobal, nil)
}

// CreateOrganizationRole creates a role bound to the organization in the path.
func (h *RoleHandler) CreateOrganizationRole(c *gin.Context) {
	orgID := c.Param("orgID")
	h.createRole(c, domain.ScopeOrganization, &orgID)
}

// CreateEventRole creates a role bound to the event in the path.
func (h *RoleHandler) CreateEventRole(c *gin.Context) {
	eventID := c.Param("eventID")
	h.createRole(c, domain.ScopeEvent, &eventID)
}

func (h *RoleHandler) createRole(c *gin.Context, scope domain.Scope, scopeID *string) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), actorID, usecase.CreateRoleInput{
		Name:            req.Name,
		Scope:           scope,
		ScopeID:         scopeID,
		PermissionNames: req.Permissions,
	})
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, NewRolePayload(*role))
}

// ListOrganizationRoles lists roles bound to the organization in the path.
func (h *RoleHandler) ListOrganizationRoles(c *gin.Context) {
	h.listRoles(c, domain.ScopeOrganization, c.Param("orgID"))
}

// ListEventRoles lists roles bound to the event in the path.
func (h *RoleHandler) ListEventRoles(c *gin.Context) {
	h.listRoles(c, domain.ScopeEvent, c.Param("eventID"))
}

func (h *RoleHandler) listRoles(c *gin.Context, scope domain.Scope, scopeID string) {
	roles, err := h.roles.RolesByScopeInstance(c.Request.Context(), scope, scopeID)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to list roles")
		return
	}

	payload := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payload = append(payload, NewRolePayload(role))
	}

	c.JSON(http.StatusOK, RoleListResponse{Roles: payload})
}

// UpdatePermissions replaces the permission set of the role in the path.
// The required gate depends on the role's own scope, so the check runs
// here after the role is resolved.
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	actorID, role, ok := h.resolveAndAuthorize(c)
	if !ok {
		return
	}

	var req RolePermissionsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permissions payload"))
		return
	}

	updated, err := h.roles.UpdateRolePermissions(c.Request.Context(), actorID, role.ID, req.Permissions)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to update role permissions")
		return
	}

	c.JSON(http.StatusOK, NewRolePayload(*updated))
}

// Delete removes the role in the path together with its assignments.
func (h *RoleHandler) Delete(c *gin.Context) {
	actorID, role, ok := h.resolveAndAuthorize(c)
	if !ok {
		return
	}

	if err := h.roles.DeleteRole(c.Request.Context(), actorID, role.ID); err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to delete role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role deleted"})
}

// resolveAndAuthorize loads the path role and checks the scope-appropriate
// management permission for the caller.
func (h *RoleHandler) resolveAndAuthorize(c *gin.Context) (string, *domain.Role, bool) {
	actorID, okAuth := middleware.GetAuthenticatedUserID(c)
	if !okAuth || actorID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return "", nil, false
	}

	role, err := h.roles.GetRole(c.Request.Context(), c.Param("roleID"))
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to load role")
		return "", nil, false
	}

	permission := usecase.PermissionManageUserGlobalRoles
	switch role.Scope {
	case domain.ScopeOrganization:
		permission = usecase.PermissionManageOrganizationRoles
	case domain.ScopeEvent:
		permission = usecase.PermissionManageEventRoles
	}

	allowed, err := h.authz.HasPermission(c.Request.Context(), actorID, permission, role.Scope, role.ScopeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "authorization check failed"))
		return "", nil, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "insufficient permissions"))
		return "", nil, false
	}

	return actorID, role, true
}
