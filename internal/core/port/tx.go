package port

import "context"

// RepositorySet groups the repositories participating in a transaction.
type RepositorySet struct {
	Roles         RoleRepository
	Permissions   PermissionRepository
	Assignments   AssignmentRepository
	Organizations OrganizationRepository
}

// TxManager runs fn inside a single storage transaction. The fn receives
// repository instances bound to that transaction; any error rolls the
// whole unit back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos RepositorySet) error) error
}
