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

// ErrOwnerAlreadyAssigned indicates the organization already has an owner.
var ErrOwnerAlreadyAssigned = errors.New("organization already has an owner")

// OwnerService runs the organization owner bootstrap workflow.
type OwnerService struct {
	users     port.UserRepository
	tx        port.TxManager
	publisher port.EventPublisher
	cache     port.DecisionCache
	logger    *zap.Logger
}

// NewOwnerService constructs an OwnerService.
func NewOwnerService(
	users port.UserRepository,
	tx port.TxManager,
	publisher port.EventPublisher,
	cache port.DecisionCache,
	logger *zap.Logger,
) *OwnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnerService{
		users:     users,
		tx:        tx,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// BootstrapResult carries the entities touched by an owner bootstrap.
type BootstrapResult struct {
	Organization domain.Organization
	Role         domain.Role
	Assignment   domain.RoleAssignment
}

// AssignOwner materializes (or reuses) the organization's default owner
// role, assigns it to the user — replacing any prior role the user held
// in that organization — and stamps the owner reference, all inside one
// transaction so no partial state can survive a mid-sequence failure.
func (s *OwnerService) AssignOwner(ctx context.Context, actorID, orgID, userID string) (*domain.Organization, error) {
	orgID = strings.TrimSpace(orgID)
	userID = strings.TrimSpace(userID)
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("%w: organization id", ErrInvalidID)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("%w: user id", ErrInvalidID)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var result BootstrapResult
	err := s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		r, err := s.Bootstrap(ctx, repos, orgID, userID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterBootstrap(ctx, actorID, result)

	return &result.Organization, nil
}

// Bootstrap performs the owner workflow against transaction-bound
// repositories. It is exported so the organization approval flow can run
// it inside its own transaction.
func (s *OwnerService) Bootstrap(ctx context.Context, repos port.RepositorySet, orgID, userID string) (BootstrapResult, error) {
	var result BootstrapResult

	org, err := repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, ErrOrganizationNotFound
		}
		return result, fmt.Errorf("get organization: %w", err)
	}
	if org.OwnerID != nil {
		return result, ErrOwnerAlreadyAssigned
	}

	role, err := s.findOrCreateOwnerRole(ctx, repos, orgID)
	if err != nil {
		return result, err
	}

	// Ownership takes precedence over any role the user already holds in
	// this organization; the prior assignment is replaced, not an error.
	if _, err := repos.Assignments.DeleteByUserAndScope(ctx, userID, &orgID); err != nil {
		return result, fmt.Errorf("clear prior assignment: %w", err)
	}

	assignment := domain.RoleAssignment{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoleID:     role.ID,
		Scope:      domain.ScopeOrganization,
		ScopeID:    &orgID,
		AssignedAt: time.Now().UTC(),
	}
	if err := repos.Assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return result, ErrAssignmentExists
		}
		return result, fmt.Errorf("create owner assignment: %w", err)
	}

	// SetOwner only touches an unowned row; a racing bootstrap that
	// committed first leaves zero rows affected here.
	if err := repos.Organizations.SetOwner(ctx, orgID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return result, ErrOwnerAlreadyAssigned
		}
		return result, fmt.Errorf("set organization owner: %w", err)
	}

	org.OwnerID = &userID
	result.Organization = *org
	result.Role = role
	result.Assignment = assignment

	return result, nil
}

// findOrCreateOwnerRole reuses the organization's default owner role or
// creates it pre-loaded with the full set of organization-scoped
// permissions from the catalog.
func (s *OwnerService) findOrCreateOwnerRole(ctx context.Context, repos port.RepositorySet, orgID string) (domain.Role, error) {
	existing, err := repos.Roles.GetByNameInScope(ctx, domain.OwnerRoleName, domain.ScopeOrganization, &orgID)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Role{}, fmt.Errorf("lookup owner role: %w", err)
	}

	permissions, err := repos.Permissions.ListByScope(ctx, domain.ScopeOrganization)
	if err != nil {
		return domain.Role{}, fmt.Errorf("list organization permissions: %w", err)
	}

	role := domain.Role{
		ID:        uuid.NewString(),
		Name:      domain.OwnerRoleName,
		Scope:     domain.ScopeOrganization,
		ScopeID:   &orgID,
		IsDefault: true,
		CreatedAt: time.Now().UTC(),
	}
	if err := repos.Roles.Create(ctx, role); err != nil {
		return domain.Role{}, fmt.Errorf("create owner role: %w", err)
	}

	permissionIDs := make([]string, 0, len(permissions))
	for _, permission := range permissions {
		permissionIDs = append(permissionIDs, permission.ID)
	}
	if err := repos.Roles.ReplacePermissions(ctx, role.ID, permissionIDs); err != nil {
		return domain.Role{}, fmt.Errorf("attach owner role permissions: %w", err)
	}

	return role, nil
}

// afterBootstrap handles post-commit cache invalidation and event
// publication for a completed bootstrap.
func (s *OwnerService) afterBootstrap(ctx context.Context, actorID string, result BootstrapResult) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, result.Assignment.UserID, ScopeKey(result.Assignment.ScopeID)); err != nil {
			s.logger.Warn("invalidate decision cache", zap.Error(err), zap.String("user_id", result.Assignment.UserID))
		}
	}

	if s.publisher != nil {
		event := domain.OwnerAssignedEvent{
			OrganizationID: result.Organization.ID,
			OwnerID:        result.Assignment.UserID,
			RoleID:         result.Role.ID,
			AssignedBy:     actorID,
			AssignedAt:     result.Assignment.AssignedAt,
		}
		if err := s.publisher.PublishOwnerAssigned(ctx, event); err != nil {
			s.logger.Warn("publish owner assigned", zap.Error(err), zap.String("organization_id", result.Organization.ID))
		}
	}
}
