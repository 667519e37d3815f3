package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// PermissionPayload describes a catalog permission returned by the API.
type PermissionPayload struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Scope       domain.Scope `json:"scope"`
}

// RolePayload describes a role returned by the API.
type RolePayload struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Scope     domain.Scope `json:"scope"`
	ScopeID   *string      `json:"scope_id,omitempty"`
	IsDefault bool         `json:"is_default"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewRolePayload maps a domain role onto its API shape.
func NewRolePayload(role domain.Role) RolePayload {
	return RolePayload{
		ID:        role.ID,
		Name:      role.Name,
		Scope:     role.Scope,
		ScopeID:   role.ScopeID,
		IsDefault: role.IsDefault,
		CreatedAt: role.CreatedAt,
	}
}

// RoleCreateRequest defines the payload for creating a role.
type RoleCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// RolePermissionsUpdateRequest defines the payload for replacing a role's
// permission set.
type RolePermissionsUpdateRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// RoleListResponse wraps a list of roles.
type RoleListResponse struct {
	Roles []RolePayload `json:"roles"`
}

// PermissionListResponse wraps the permission catalog.
type PermissionListResponse struct {
	Permissions []PermissionPayload `json:"permissions"`
}

// AssignmentPayload describes a user-role binding returned by the API.
type AssignmentPayload struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	RoleID     string       `json:"role_id"`
	Scope      domain.Scope `json:"scope"`
	ScopeID    *string      `json:"scope_id,omitempty"`
	AssignedAt time.Time    `json:"assigned_at"`
}

// AssignRoleRequest defines the payload for assigning a role to a user.
type AssignRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

// OrganizationPayload describes an organization returned by the API.
type OrganizationPayload struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Status    domain.OrganizationStatus `json:"status"`
	OwnerID   *string                   `json:"owner_id,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

// NewOrganizationPayload maps a domain organization onto its API shape.
func NewOrganizationPayload(org domain.Organization) OrganizationPayload {
	return OrganizationPayload{
		ID:        org.ID,
		Name:      org.Name,
		Status:    org.Status,
		OwnerID:   org.OwnerID,
		CreatedAt: org.CreatedAt,
	}
}

// OrganizationCreateRequest defines the payload for registering an organization.
type OrganizationCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// OrganizationApproveRequest nominates the owner during approval.
type OrganizationApproveRequest struct {
	OwnerUserID string `json:"owner_user_id" binding:"required"`
}

// OwnerAssignRequest defines the payload for the owner bootstrap endpoint.
type OwnerAssignRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
