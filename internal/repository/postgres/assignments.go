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

// AssignmentRepository implements user-role assignment persistence.
type AssignmentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAssignmentRepository constructs a PostgreSQL-backed assignment repository.
func NewAssignmentRepository(exec pgExecutor) *AssignmentRepository {
	repo := &AssignmentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance bound to the supplied transaction.
func (r *AssignmentRepository) WithTx(tx pgx.Tx) *AssignmentRepository {
	if tx == nil {
		return r
	}
	return &AssignmentRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts an assignment. The unique index over (user_id, scope_id)
// resolves concurrent inserts for the same key: exactly one wins, the
// rest see repository.ErrDuplicate.
func (r *AssignmentRepository) Create(ctx context.Context, assignment domain.RoleAssignment) error {
	stmt, args, err := r.builder.Insert("access.role_assignments").
		Columns("id", "user_id", "role_id", "scope", "scope_id", "assigned_at").
		Values(
			assignment.ID,
			assignment.UserID,
			assignment.RoleID,
			string(assignment.Scope),
			assignment.ScopeID,
			assignment.AssignedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert assignment sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if translated := translateError(err); translated == repository.ErrDuplicate {
			return translated
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	return nil
}

// GetByUserAndScope finds the single assignment a user holds in the
// scope context keyed by scopeID (nil for global).
func (r *AssignmentRepository) GetByUserAndScope(ctx context.Context, userID string, scopeID *string) (*domain.RoleAssignment, error) {
	query := r.builder.Select("id", "user_id", "role_id", "scope", "scope_id", "assigned_at").
		From("access.role_assignments").
		Where(squirrel.Eq{"user_id": userID})

	if scopeID == nil {
		query = query.Where("scope_id IS NULL")
	} else {
		query = query.Where(squirrel.Eq{"scope_id": *scopeID})
	}

	stmt, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select assignment sql: %w", err)
	}

	var (
		assignment domain.RoleAssignment
		scope      string
		scopeIDV   sql.NullString
	)

	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(
		&assignment.ID,
		&assignment.UserID,
		&assignment.RoleID,
		&scope,
		&scopeIDV,
		&assignment.AssignedAt,
	); err != nil {
		if translated := translateError(err); translated == repository.ErrNotFound {
			return nil, translated
		}
		return nil, fmt.Errorf("scan assignment: %w", err)
	}

	assignment.Scope = domain.Scope(scope)
	assignment.ScopeID = nullStringPtr(scopeIDV)

	return &assignment, nil
}

// DeleteByUserAndScope removes the user's assignment in one scope context
// and reports how many rows were removed (0 or 1).
func (r *AssignmentRepository) DeleteByUserAndScope(ctx context.Context, userID string, scopeID *string) (int, error) {
	query := r.builder.Delete("access.role_assignments").
		Where(squirrel.Eq{"user_id": userID})

	if scopeID == nil {
		query = query.Where("scope_id IS NULL")
	} else {
		query = query.Where(squirrel.Eq{"scope_id": *scopeID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete assignment sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete assignment: %w", err)
	}

	return int(res.RowsAffected()), nil
}

// DeleteByRole removes every assignment referencing the role and reports
// the number of rows removed. Used by the cascading role delete.
func (r *AssignmentRepository) DeleteByRole(ctx context.Context, roleID string) (int, error) {
	stmt, args, err := r.builder.Delete("access.role_assignments").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete assignments by role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete assignments by role: %w", err)
	}

	return int(res.RowsAffected()), nil
}

// ListByRole returns the assignments referencing the role.
func (r *AssignmentRepository) ListByRole(ctx context.Context, roleID string) ([]domain.RoleAssignment, error) {
	stmt, args, err := r.builder.Select("id", "user_id", "role_id", "scope", "scope_id", "assigned_at").
		From("access.role_assignments").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("assigned_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list assignments by role sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments by role: %w", err)
	}
	defer rows.Close()

	assignments := make([]domain.RoleAssignment, 0)
	for rows.Next() {
		var (
			assignment domain.RoleAssignment
			scope      string
			scopeID    sql.NullString
		)
		if err := rows.Scan(
			&assignment.ID,
			&assignment.UserID,
			&assignment.RoleID,
			&scope,
			&scopeID,
			&assignment.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignment.Scope = domain.Scope(scope)
		assignment.ScopeID = nullStringPtr(scopeID)
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

var _ port.AssignmentRepository = (*AssignmentRepository)(nil)
