package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishRoleCreated publishes access.role.created events.
func (p *EventPublisher) PublishRoleCreated(ctx context.Context, event domain.RoleCreatedEvent) error {
	payload := struct {
		RoleID      string       `json:"role_id"`
		RoleName    string       `json:"role_name"`
		Scope       domain.Scope `json:"scope"`
		ScopeID     *string      `json:"scope_id,omitempty"`
		Permissions []string     `json:"permissions"`
		CreatedBy   string       `json:"created_by"`
		CreatedAt   time.Time    `json:"created_at"`
	}{
		RoleID:      event.RoleID,
		RoleName:    event.RoleName,
		Scope:       event.Scope,
		ScopeID:     event.ScopeID,
		Permissions: event.Permissions,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "access.role.created", event.CreatedBy, event.CreatedAt, payload)
}

// PublishRolePermissionsUpdated publishes access.role.permissions.updated events.
func (p *EventPublisher) PublishRolePermissionsUpdated(ctx context.Context, event domain.RolePermissionsUpdatedEvent) error {
	payload := struct {
		RoleID      string    `json:"role_id"`
		RoleName    string    `json:"role_name"`
		Permissions []string  `json:"permissions"`
		UpdatedBy   string    `json:"updated_by"`
		UpdatedAt   time.Time `json:"updated_at"`
	}{
		RoleID:      event.RoleID,
		RoleName:    event.RoleName,
		Permissions: event.Permissions,
		UpdatedBy:   event.UpdatedBy,
		UpdatedAt:   event.UpdatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "access.role.permissions.updated", event.UpdatedBy, event.UpdatedAt, payload)
}

// PublishRoleDeleted publishes access.role.deleted events.
func (p *EventPublisher) PublishRoleDeleted(ctx context.Context, event domain.RoleDeletedEvent) error {
	payload := struct {
		RoleID             string       `json:"role_id"`
		RoleName           string       `json:"role_name"`
		Scope              domain.Scope `json:"scope"`
		ScopeID            *string      `json:"scope_id,omitempty"`
		AssignmentsRemoved int          `json:"assignments_removed"`
		DeletedBy          string       `json:"deleted_by"`
		DeletedAt          time.Time    `json:"deleted_at"`
	}{
		RoleID:             event.RoleID,
		RoleName:           event.RoleName,
		Scope:              event.Scope,
		ScopeID:            event.ScopeID,
		AssignmentsRemoved: event.AssignmentsRemoved,
		DeletedBy:          event.DeletedBy,
		DeletedAt:          event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "access.role.deleted", event.DeletedBy, event.DeletedAt, payload)
}

// PublishRoleAssigned publishes access.role.assigned events.
func (p *EventPublisher) PublishRoleAssigned(ctx context.Context, event domain.RoleAssignedEvent) error {
	payload := struct {
		UserID     string       `json:"user_id"`
		RoleID     string       `json:"role_id"`
		RoleName   string       `json:"role_name"`
		Scope      domain.Scope `json:"scope"`
		ScopeID    *string      `json:"scope_id,omitempty"`
		AssignedBy string       `json:"assigned_by"`
		AssignedAt time.Time    `json:"assigned_at"`
	}{
		UserID:     event.UserID,
		RoleID:     event.RoleID,
		RoleName:   event.RoleName,
		Scope:      event.Scope,
		ScopeID:    event.ScopeID,
		AssignedBy: event.AssignedBy,
		AssignedAt: event.AssignedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "access.role.assigned", event.UserID, event.AssignedAt, payload)
}

// PublishOwnerAssigned publishes access.organization.owner.assigned events.
func (p *EventPublisher) PublishOwnerAssigned(ctx context.Context, event domain.OwnerAssignedEvent) error {
	payload := struct {
		OrganizationID string    `json:"organization_id"`
		OwnerID        string    `json:"owner_id"`
		RoleID         string    `json:"role_id"`
		AssignedBy     string    `json:"assigned_by"`
		AssignedAt     time.Time `json:"assigned_at"`
	}{
		OrganizationID: event.OrganizationID,
		OwnerID:        event.OwnerID,
		RoleID:         event.RoleID,
		AssignedBy:     event.AssignedBy,
		AssignedAt:     event.AssignedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "access.organization.owner.assigned", event.OwnerID, event.AssignedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
