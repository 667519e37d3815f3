package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// OrganizationRepository persists organizations and their request workflow.
type OrganizationRepository interface {
	Create(ctx context.Context, org domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrganizationStatus) error
	SetOwner(ctx context.Context, id, ownerID string) error
}

// EventRepository exposes events as scope instances.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}
