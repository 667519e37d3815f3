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

// OrganizationRepository implements organization persistence.
type OrganizationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOrganizationRepository constructs a PostgreSQL-backed organization repository.
func NewOrganizationRepository(exec pgExecutor) *OrganizationRepository {
	repo := &OrganizationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance bound to the supplied transaction.
func (r *OrganizationRepository) WithTx(tx pgx.Tx) *OrganizationRepository {
	if tx == nil {
		return r
	}
	return &OrganizationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new organization request.
func (r *OrganizationRepository) Create(ctx context.Context, org domain.Organization) error {
	stmt, args, err := r.builder.Insert("access.organizations").
		Columns("id", "name", "status", "owner_id", "created_at").
		Values(org.ID, org.Name, string(org.Status), org.OwnerID, org.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert organization sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if translated := translateError(err); translated == repository.ErrDuplicate {
			return translated
		}
		return fmt.Errorf("insert organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	stmt, args, err := r.builder.Select("id", "name", "status", "owner_id", "created_at").
		From("access.organizations").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select organization sql: %w", err)
	}

	var (
		org     domain.Organization
		status  string
		ownerID sql.NullString
	)

	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&org.ID, &org.Name, &status, &ownerID, &org.CreatedAt); err != nil {
		if translated := translateError(err); translated == repository.ErrNotFound {
			return nil, translated
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}

	org.Status = domain.OrganizationStatus(status)
	org.OwnerID = nullStringPtr(ownerID)

	return &org, nil
}

// UpdateStatus moves the organization through the request workflow.
func (r *OrganizationRepository) UpdateStatus(ctx context.Context, id string, status domain.OrganizationStatus) error {
	stmt, args, err := r.builder.Update("access.organizations").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update organization status sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update organization status: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetOwner stamps the organization's owner reference. Only an unowned
// organization is updated, so a racing second call affects zero rows.
func (r *OrganizationRepository) SetOwner(ctx context.Context, id, ownerID string) error {
	stmt, args, err := r.builder.Update("access.organizations").
		Set("owner_id", ownerID).
		Where(squirrel.Eq{"id": id}).
		Where("owner_id IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set organization owner sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set organization owner: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrDuplicate
	}

	return nil
}

var _ port.OrganizationRepository = (*OrganizationRepository)(nil)
