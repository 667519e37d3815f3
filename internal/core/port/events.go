package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// EventPublisher publishes access-control domain events to the message bus.
type EventPublisher interface {
	PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error
	PublishRolePermissionsUpdated(ctx context.Context, event domain.RolePermissionsUpdatedEvent) error
	PublishRoleDeleted(ctx context.Context, event domain.RoleDeletedEvent) error
	PublishRoleAssigned(ctx context.Context, event domain.RoleAssignedEvent) error
	PublishOwnerAssigned(ctx context.Context, event domain.OwnerAssignedEvent) error
}
