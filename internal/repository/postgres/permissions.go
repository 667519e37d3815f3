package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
)

// PermissionRepository reads the permission catalog from PostgreSQL.
type PermissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a repository backed by any executor
// that satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	repo := &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance bound to the supplied transaction.
func (r *PermissionRepository) WithTx(tx pgx.Tx) *PermissionRepository {
	if tx == nil {
		return r
	}
	return &PermissionRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

func (r *PermissionRepository) selectColumns() squirrel.SelectBuilder {
	return r.builder.Select("id", "name", "description", "scope").
		From("access.permissions")
}

// List retrieves the full catalog ordered by scope then name.
func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	stmt, args, err := r.selectColumns().
		OrderBy("scope ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// ListByScope retrieves catalog entries for a single scope.
func (r *PermissionRepository) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Permission, error) {
	stmt, args, err := r.selectColumns().
		Where(squirrel.Eq{"scope": string(scope)}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions by scope sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// GetByNames resolves catalog entries matching both the names and the scope.
// Names absent from the result were either unknown or scoped differently.
func (r *PermissionRepository) GetByNames(ctx context.Context, scope domain.Scope, names []string) ([]domain.Permission, error) {
	if len(names) == 0 {
		return []domain.Permission{}, nil
	}

	stmt, args, err := r.selectColumns().
		Where(squirrel.Eq{"scope": string(scope)}).
		Where(squirrel.Eq{"name": names}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by names sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// ListByRole returns the permissions attached to the role.
func (r *PermissionRepository) ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("p.id", "p.name", "p.description", "p.scope").
		From("access.permissions p").
		Join("access.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by role sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

func (r *PermissionRepository) queryPermissions(ctx context.Context, stmt string, args []any) ([]domain.Permission, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		var (
			permission  domain.Permission
			description sql.NullString
			scope       string
		)
		if err := rows.Scan(&permission.ID, &permission.Name, &description, &scope); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		if description.Valid {
			desc := description.String
			permission.Description = &desc
		}
		permission.Scope = domain.Scope(scope)
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
