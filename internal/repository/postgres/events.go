package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

// EventRepository reads events as scope instances for EVENT-scoped roles.
type EventRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEventRepository constructs a PostgreSQL-backed event repository.
func NewEventRepository(exec pgExecutor) *EventRepository {
	repo := &EventRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// GetByID retrieves an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	stmt, args, err := r.builder.Select("id", "organization_id", "name", "starts_at", "created_at").
		From("access.events").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select event sql: %w", err)
	}

	var event domain.Event

	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&event.ID, &event.OrganizationID, &event.Name, &event.StartsAt, &event.CreatedAt); err != nil {
		if translated := translateError(err); translated == repository.ErrNotFound {
			return nil, translated
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	return &event, nil
}

var _ port.EventRepository = (*EventRepository)(nil)
