package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
)

// Permission names the HTTP layer gates its own management endpoints with.
const (
	PermissionAccessAdminDashboard       = "access_admin_dashboard"
	PermissionManageOrganizationRequests = "manage_organization_requests"
	PermissionManageUserGlobalRoles      = "manage_user_global_roles"
	PermissionAssignOrganizationOwner    = "assign_organization_owner"
	PermissionManageOrganizationRoles    = "manage_organization_roles"
	PermissionManageEventRoles           = "manage_event_roles"
)

// ErrInvalidScope indicates an unknown scope value was supplied.
var ErrInvalidScope = errors.New("invalid scope")

// PermissionService exposes the read-only permission catalog.
type PermissionService struct {
	permissions port.PermissionRepository
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(permissions port.PermissionRepository) *PermissionService {
	return &PermissionService{permissions: permissions}
}

// ListPermissions returns the full catalog.
func (s *PermissionService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	permissions, err := s.permissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return permissions, nil
}

// ListPermissionsByScope returns catalog entries for one scope.
func (s *PermissionService) ListPermissionsByScope(ctx context.Context, scope domain.Scope) ([]domain.Permission, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	permissions, err := s.permissions.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list permissions by scope: %w", err)
	}
	return permissions, nil
}
