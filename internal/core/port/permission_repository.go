package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// PermissionRepository reads the seeded permission catalog.
type PermissionRepository interface {
	List(ctx context.Context) ([]domain.Permission, error)
	ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Permission, error)
	GetByNames(ctx context.Context, scope domain.Scope, names []string) ([]domain.Permission, error)
	ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error)
}
