package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// AssignmentRepository persists user-role assignments. Create relies on a
// storage-level unique constraint over (user_id, scope_id) so that two
// concurrent attempts for the same key cannot both succeed; the loser
// receives repository.ErrDuplicate.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment domain.RoleAssignment) error
	GetByUserAndScope(ctx context.Context, userID string, scopeID *string) (*domain.RoleAssignment, error)
	DeleteByUserAndScope(ctx context.Context, userID string, scopeID *string) (int, error)
	DeleteByRole(ctx context.Context, roleID string) (int, error)
	ListByRole(ctx context.Context, roleID string) ([]domain.RoleAssignment, error)
}
