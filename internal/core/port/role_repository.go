package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// RoleRepository handles role persistence.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByNameInScope(ctx context.Context, name string, scope domain.Scope, scopeID *string) (*domain.Role, error)
	ListByScopeInstance(ctx context.Context, scope domain.Scope, scopeID string) ([]domain.Role, error)
	ReplacePermissions(ctx context.Context, roleID string, permissionIDs []string) error
	Delete(ctx context.Context, id string) error
}
