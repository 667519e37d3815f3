package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

var (
	// ErrInvalidID indicates a malformed entity identifier.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrRoleExists indicates a role with the same name already exists in
	// the scope context.
	ErrRoleExists = errors.New("role already exists in this scope")
	// ErrRoleNotFound is returned when the referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrScopeIDRequired indicates a non-global role was given no scope instance.
	ErrScopeIDRequired = errors.New("scope instance id is required for this scope")
	// ErrScopeIDForbidden indicates a global role was given a scope instance.
	ErrScopeIDForbidden = errors.New("scope instance id must be absent for global scope")
	// ErrUnknownPermissions indicates requested permission names are not in
	// the catalog for the role's scope. The wrapped message names them.
	ErrUnknownPermissions = errors.New("unknown permissions for scope")
	// ErrDefaultRoleProtected indicates an attempt to delete a system-managed role.
	ErrDefaultRoleProtected = errors.New("default role cannot be deleted")
	// ErrOrganizationNotFound is returned when the referenced organization does not exist.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
)

// CreateRoleInput captures the payload for creating a role.
type CreateRoleInput struct {
	Name            string
	Scope           domain.Scope
	ScopeID         *string
	PermissionNames []string
}

// RoleService manages scoped roles and their permission sets.
type RoleService struct {
	roles         port.RoleRepository
	permissions   port.PermissionRepository
	organizations port.OrganizationRepository
	eventsRepo    port.EventRepository
	assignments   port.AssignmentRepository
	tx            port.TxManager
	publisher     port.EventPublisher
	cache         port.DecisionCache
	logger        *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(
	roles port.RoleRepository,
	permissions port.PermissionRepository,
	organizations port.OrganizationRepository,
	eventsRepo port.EventRepository,
	assignments port.AssignmentRepository,
	tx port.TxManager,
	publisher port.EventPublisher,
	cache port.DecisionCache,
	logger *zap.Logger,
) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{
		roles:         roles,
		permissions:   permissions,
		organizations: organizations,
		eventsRepo:    eventsRepo,
		assignments:   assignments,
		tx:            tx,
		publisher:     publisher,
		cache:         cache,
		logger:        logger,
	}
}

// CreateRole provisions a new role with a scope-matched permission set.
// The role row and its permission links are written in one transaction so
// a validation or write failure never leaves a partially persisted role.
func (s *RoleService) CreateRole(ctx context.Context, actorID string, input CreateRoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidID)
	}
	if !input.Scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, input.Scope)
	}

	if err := s.checkScopeInstance(ctx, input.Scope, input.ScopeID); err != nil {
		return nil, err
	}

	resolved, err := s.resolvePermissions(ctx, input.Scope, input.PermissionNames)
	if err != nil {
		return nil, err
	}

	if existing, err := s.roles.GetByNameInScope(ctx, name, input.Scope, input.ScopeID); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	role := domain.Role{
		ID:        uuid.NewString(),
		Name:      name,
		Scope:     input.Scope,
		ScopeID:   input.ScopeID,
		CreatedAt: time.Now().UTC(),
	}

	permissionIDs := make([]string, 0, len(resolved))
	permissionNames := make([]string, 0, len(resolved))
	for _, permission := range resolved {
		permissionIDs = append(permissionIDs, permission.ID)
		permissionNames = append(permissionNames, permission.Name)
	}

	err = s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Roles.Create(ctx, role); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrRoleExists
			}
			return fmt.Errorf("create role: %w", err)
		}
		if err := repos.Roles.ReplacePermissions(ctx, role.ID, permissionIDs); err != nil {
			return fmt.Errorf("attach role permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRoleCreated(ctx, role, permissionNames, actorID)

	return &role, nil
}

// UpdateRolePermissions replaces the role's permission set after the same
// scope-matched validation as creation.
func (s *RoleService) UpdateRolePermissions(ctx context.Context, actorID, roleID string, permissionNames []string) (*domain.Role, error) {
	if _, err := uuid.Parse(strings.TrimSpace(roleID)); err != nil {
		return nil, fmt.Errorf("%w: role id", ErrInvalidID)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	resolved, err := s.resolvePermissions(ctx, role.Scope, permissionNames)
	if err != nil {
		return nil, err
	}

	permissionIDs := make([]string, 0, len(resolved))
	names := make([]string, 0, len(resolved))
	for _, permission := range resolved {
		permissionIDs = append(permissionIDs, permission.ID)
		names = append(names, permission.Name)
	}

	err = s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Roles.ReplacePermissions(ctx, role.ID, permissionIDs); err != nil {
			return fmt.Errorf("replace role permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRoleDecisions(ctx, role.ID)

	if s.publisher != nil {
		event := domain.RolePermissionsUpdatedEvent{
			RoleID:      role.ID,
			RoleName:    role.Name,
			Permissions: names,
			UpdatedBy:   actorID,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := s.publisher.PublishRolePermissionsUpdated(ctx, event); err != nil {
			s.logger.Warn("publish role permissions updated", zap.Error(err), zap.String("role_id", role.ID))
		}
	}

	return role, nil
}

// GetRole retrieves a role by ID.
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	if _, err := uuid.Parse(strings.TrimSpace(roleID)); err != nil {
		return nil, fmt.Errorf("%w: role id", ErrInvalidID)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	return role, nil
}

// RolesByScopeInstance lists roles bound to one scope instance. The
// instance's existence is checked explicitly because role storage keeps
// no referential integrity to the instance tables.
func (s *RoleService) RolesByScopeInstance(ctx context.Context, scope domain.Scope, scopeID string) ([]domain.Role, error) {
	if !scope.RequiresInstance() {
		return nil, fmt.Errorf("%w: %q has no scope instances", ErrInvalidScope, scope)
	}
	if err := s.checkScopeInstance(ctx, scope, &scopeID); err != nil {
		return nil, err
	}

	roles, err := s.roles.ListByScopeInstance(ctx, scope, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list roles by scope instance: %w", err)
	}

	return roles, nil
}

// DeleteRole removes a non-default role together with every assignment
// referencing it, as one atomic unit.
func (s *RoleService) DeleteRole(ctx context.Context, actorID, roleID string) error {
	if _, err := uuid.Parse(strings.TrimSpace(roleID)); err != nil {
		return fmt.Errorf("%w: role id", ErrInvalidID)
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("get role: %w", err)
	}

	if role.IsDefault {
		return ErrDefaultRoleProtected
	}

	var (
		removed     int
		invalidated []domain.RoleAssignment
	)

	err = s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		assignments, err := repos.Assignments.ListByRole(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("list assignments by role: %w", err)
		}
		invalidated = assignments

		removed, err = repos.Assignments.DeleteByRole(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("delete assignments by role: %w", err)
		}

		if err := repos.Roles.Delete(ctx, role.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("delete role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, assignment := range invalidated {
		s.invalidateDecision(ctx, assignment.UserID, assignment.ScopeID)
	}

	if s.publisher != nil {
		event := domain.RoleDeletedEvent{
			RoleID:             role.ID,
			RoleName:           role.Name,
			Scope:              role.Scope,
			ScopeID:            role.ScopeID,
			AssignmentsRemoved: removed,
			DeletedBy:          actorID,
			DeletedAt:          time.Now().UTC(),
		}
		if err := s.publisher.PublishRoleDeleted(ctx, event); err != nil {
			s.logger.Warn("publish role deleted", zap.Error(err), zap.String("role_id", role.ID))
		}
	}

	return nil
}

// checkScopeInstance enforces the scope/scope-id invariant and verifies
// the referenced instance exists.
func (s *RoleService) checkScopeInstance(ctx context.Context, scope domain.Scope, scopeID *string) error {
	if !scope.RequiresInstance() {
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

	switch scope {
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

// resolvePermissions maps requested names onto catalog entries whose scope
// matches the role's scope, failing with the offending names otherwise.
func (s *RoleService) resolvePermissions(ctx context.Context, scope domain.Scope, names []string) ([]domain.Permission, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		unique = append(unique, trimmed)
	}

	if len(unique) == 0 {
		return []domain.Permission{}, nil
	}

	resolved, err := s.permissions.GetByNames(ctx, scope, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	if len(resolved) != len(unique) {
		found := make(map[string]struct{}, len(resolved))
		for _, permission := range resolved {
			found[permission.Name] = struct{}{}
		}
		missing := make([]string, 0)
		for _, name := range unique {
			if _, ok := found[name]; !ok {
				missing = append(missing, name)
			}
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w %s: %s", ErrUnknownPermissions, scope, strings.Join(missing, ", "))
	}

	return resolved, nil
}

func (s *RoleService) publishRoleCreated(ctx context.Context, role domain.Role, permissionNames []string, actorID string) {
	if s.publisher == nil {
		return
	}
	event := domain.RoleCreatedEvent{
		RoleID:      role.ID,
		RoleName:    role.Name,
		Scope:       role.Scope,
		ScopeID:     role.ScopeID,
		Permissions: permissionNames,
		CreatedBy:   actorID,
		CreatedAt:   role.CreatedAt,
	}
	if err := s.publisher.PublishRoleCreated(ctx, event); err != nil {
		s.logger.Warn("publish role created", zap.Error(err), zap.String("role_id", role.ID))
	}
}

func (s *RoleService) invalidateDecision(ctx context.Context, userID string, scopeID *string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, ScopeKey(scopeID)); err != nil {
		s.logger.Warn("invalidate decision cache", zap.Error(err), zap.String("user_id", userID))
	}
}

func (s *RoleService) invalidateRoleDecisions(ctx context.Context, roleID string) {
	if s.cache == nil {
		return
	}
	assignments, err := s.assignments.ListByRole(ctx, roleID)
	if err != nil {
		s.logger.Warn("list assignments for cache invalidation", zap.Error(err), zap.String("role_id", roleID))
		return
	}
	for _, assignment := range assignments {
		s.invalidateDecision(ctx, assignment.UserID, assignment.ScopeID)
	}
}
