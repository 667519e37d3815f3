package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when the
// broker is disabled in local and test environments.
type StubPublisher struct {
	logger *zap.Logger
}

func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishRoleCreated(_ context.Context, event domain.RoleCreatedEvent) error {
	s.logger.Info("stub publisher: role created",
		zap.String("role_id", event.RoleID),
		zap.String("role_name", event.RoleName),
		zap.String("scope", string(event.Scope)))
	return nil
}

func (s *StubPublisher) PublishRolePermissionsUpdated(_ context.Context, event domain.RolePermissionsUpdatedEvent) error {
	s.logger.Info("stub publisher: role permissions updated",
		zap.String("role_id", event.RoleID),
		zap.Int("permission_count", len(event.Permissions)))
	return nil
}

func (s *StubPublisher) PublishRoleDeleted(_ context.Context, event domain.RoleDeletedEvent) error {
	s.logger.Info("stub publisher: role deleted",
		zap.String("role_id", event.RoleID),
		zap.Int("assignments_removed", event.AssignmentsRemoved))
	return nil
}

func (s *StubPublisher) PublishRoleAssigned(_ context.Context, event domain.RoleAssignedEvent) error {
	s.logger.Info("stub publisher: role assigned",
		zap.String("user_id", event.UserID),
		zap.String("role_id", event.RoleID),
		zap.String("scope", string(event.Scope)))
	return nil
}

func (s *StubPublisher) PublishOwnerAssigned(_ context.Context, event domain.OwnerAssignedEvent) error {
	s.logger.Info("stub publisher: organization owner assigned",
		zap.String("organization_id", event.OrganizationID),
		zap.String("owner_id", event.OwnerID))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
