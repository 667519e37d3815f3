package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Organizations *OrganizationRepository
	Events        *EventRepository
	Permissions   *PermissionRepository
	Roles         *RoleRepository
	Assignments   *AssignmentRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Organizations: NewOrganizationRepository(pool),
		Events:        NewEventRepository(pool),
		Permissions:   NewPermissionRepository(pool),
		Roles:         NewRoleRepository(pool),
		Assignments:   NewAssignmentRepository(pool),
	}
}

// TxManager implements port.TxManager on a pgx pool.
type TxManager struct {
	pool  *pgxpool.Pool
	repos *Repositories
}

// NewTxManager constructs a transaction manager for the pool-backed repositories.
func NewTxManager(pool *pgxpool.Pool, repos *Repositories) *TxManager {
	return &TxManager{pool: pool, repos: repos}
}

// WithinTx begins a transaction, hands tx-bound repositories to fn, and
// commits on success or rolls back on error.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repos port.RepositorySet) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	set := port.RepositorySet{
		Roles:         m.repos.Roles.WithTx(tx),
		Permissions:   m.repos.Permissions.WithTx(tx),
		Assignments:   m.repos.Assignments.WithTx(tx),
		Organizations: m.repos.Organizations.WithTx(tx),
	}

	if err := fn(set); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

var _ port.TxManager = (*TxManager)(nil)
