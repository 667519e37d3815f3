package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrScopeMismatch indicates the caller-supplied scope context does not
	// match the role being assigned.
	ErrScopeMismatch = errors.New("scope does not match role")
	// ErrAssignmentExists indicates the user already holds a role in the
	// requested scope context.
	ErrAssignmentExists = errors.New("user already has a role in this scope")
)

// AssignRoleInput captures the payload for assigning a role to a user.
type AssignRoleInput struct {
	UserID  string
	RoleID  string
	Scope   domain.Scope
	ScopeID *string
}

// AssignmentService binds users to roles within scope contexts.
type AssignmentService struct {
	users         port.UserRepository
	roles         port.RoleRepository
	organizations port.OrganizationRepository
	eventsRepo    port.EventRepository
	assignments   port.AssignmentRepository
	publisher     port.EventPublisher
	cache         port.DecisionCache
	logger        *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(
	users port.UserRepository,
	roles port.RoleRepository,
	organizations port.OrganizationRepository,
	eventsRepo port.EventRepository,
	assignments port.AssignmentRepository,
	publisher port.EventPublisher,
	cache port.DecisionCache,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		users:         users,
		roles:         roles,
		organizations: organizations,
		eventsRepo:    eventsRepo,
		assignments:   assignments,
		publisher:     publisher,
		cache:         cache,
		logger:        logger,
	}
}

// AssignRole binds the user to the role in the given scope context. The
// insert is keyed by (userID, scopeID) at the storage layer, so two
// concurrent requests for the same key cannot both succeed: the loser
// receives ErrAssignmentExists deterministically.
func (s *AssignmentService) AssignRole(ctx context.Context, actorID string, input AssignRoleInput) (*domain.RoleAssignment, error) {
	userID := strings.TrimSpace(input.UserID)
	roleID := strings.TrimSpace(input.RoleID)
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%w: user id", ErrInvalidID)
	}
	if _, err := uuid.Parse(roleID); err != nil {
		return nil, fmt.Errorf("%w: role id", ErrInvalidID)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	// The scope argument is a defense-in-depth check against mis-wired
	// callers: it must agree with the role being assigned.
	if role.Scope != input.Scope {
		return nil, ErrScopeMismatch
	}

	if err := s.checkScopeInstance(ctx, role, input.ScopeID); err != nil {
		return nil, err
	}

	assignment := domain.RoleAssignment{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoleID:     role.ID,
		Scope:      role.Scope,
		ScopeID:    role.ScopeID,
		AssignedAt: time.Now().UTC(),
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID, ScopeKey(assignment.ScopeID)); err != nil {
			s.logger.Warn("invalidate decision cache", zap.Error(err), zap.String("user_id", userID))
		}
	}

	if s.publisher != nil {
		event := domain.RoleAssignedEvent{
			UserID:     userID,
			RoleID:     role.ID,
			RoleName:   role.Name,
			Scope:      role.Scope,
			ScopeID:    role.ScopeID,
			AssignedBy: actorID,
			AssignedAt: assignment.AssignedAt,
		}
		if err := s.publisher.PublishRoleAssigned(ctx, event); err != nil {
			s.logger.Warn("publish role assigned", zap.Error(err), zap.String("user_id", userID))
		}
	}

	return &assignment, nil
}

// checkScopeInstance validates the supplied scope instance against the
// role's binding and verifies the instance still exists.
func (s *AssignmentService) checkScopeInstance(ctx context.Context, role *domain.Role, scopeID *string) error {
	if !role.Scope.RequiresInstance() {
		if scopeID != nil {
			return ErrScopeIDForbidden
		}
		return nil
	}

	if scopeID == nil || strings.TrimSpace(*scopeID) == "" {
		return ErrScopeIDRequired
	}
	if _, err := uuid.Parse(*scopeID); err != nil {
		return fmt.Errorf("%w: scope id", ErrInvalidID)
	}
	if role.ScopeID == nil || *role.ScopeID != *scopeID {
		return ErrScopeMismatch
	}

	switch role.Scope {
	case domain.ScopeOrganization:
		if _, err := s.organizations.GetByID(ctx, *scopeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrganizationNotFound
			}
			return fmt.Errorf("get organization: %w", err)
		}
	case domain.ScopeEvent:
		if _, err := s.eventsRepo.GetByID(ctx, *scopeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
	}

	return nil
}
