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
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

// RoleRepository implements role persistence operations.
type RoleRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	repo := &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance bound to the supplied transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new role. A duplicate (name, scope, scope_id) tuple
// surfaces as repository.ErrDuplicate via the unique index.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Insert("access.roles").
		Columns("id", "name", "scope", "scope_id", "is_default", "created_at").
		Values(role.ID, role.Name, string(role.Scope), role.ScopeID, role.IsDefault, role.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if translated := translateError(err); translated == repository.ErrDuplicate {
			return translated
		}
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by its ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	stmt, args, err := r.selectColumns().
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by id sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByNameInScope retrieves a role by name within a scope context.
// A nil scopeID matches the global context.
func (r *RoleRepository) GetByNameInScope(ctx context.Context, name string, scope domain.Scope, scopeID *string) (*domain.Role, error) {
	query := r.selectColumns().
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"scope": string(scope)})

	if scopeID == nil {
		query = query.Where("scope_id IS NULL")
	} else {
		query = query.Where(squirrel.Eq{"scope_id": *scopeID})
	}

	stmt, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by name sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByScopeInstance returns the roles bound to one scope instance.
func (r *RoleRepository) ListByScopeInstance(ctx context.Context, scope domain.Scope, scopeID string) ([]domain.Role, error) {
	stmt, args, err := r.selectColumns().
		Where(squirrel.Eq{"scope": string(scope)}).
		Where(squirrel.Eq{"scope_id": scopeID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var (
			role    domain.Role
			scopeV  string
			scopeID sql.NullString
		)
		if err := rows.Scan(&role.ID, &role.Name, &scopeV, &scopeID, &role.IsDefault, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.Scope = domain.Scope(scopeV)
		role.ScopeID = nullStringPtr(scopeID)
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

// ReplacePermissions swaps the role's permission set in one transaction
// unit with the caller's executor (pass a tx-bound repository for
// atomicity with other writes).
func (r *RoleRepository) ReplacePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	delStmt, delArgs, err := r.builder.Delete("access.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear role permissions sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, delStmt, delArgs...); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	query := r.builder.Insert("access.role_permissions").
		Columns("role_id", "permission_id")
	for _, permissionID := range permissionIDs {
		query = query.Values(roleID, permissionID)
	}

	insStmt, insArgs, err := query.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert role permissions sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, insStmt, insArgs...); err != nil {
		return fmt.Errorf("insert role permissions: %w", err)
	}

	return nil
}

// Delete removes a role by ID. role_permissions rows cascade via FK;
// assignments are removed explicitly by the caller inside the same tx.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("access.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *RoleRepository) selectColumns() squirrel.SelectBuilder {
	return r.builder.Select("id", "name", "scope", "scope_id", "is_default", "created_at").
		From("access.roles")
}

func (r *RoleRepository) scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		role    domain.Role
		scope   string
		scopeID sql.NullString
	)

	if err := row.Scan(&role.ID, &role.Name, &scope, &scopeID, &role.IsDefault, &role.CreatedAt); err != nil {
		if translated := translateError(err); translated == repository.ErrNotFound {
			return nil, translated
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	role.Scope = domain.Scope(scope)
	role.ScopeID = nullStringPtr(scopeID)

	return &role, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
