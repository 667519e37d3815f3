package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

// GlobalScopeKey is the sentinel scope key for assignments with no scope
// instance.
const GlobalScopeKey = "global"

// ScopeKey derives the cache/uniqueness key for a scope instance id.
func ScopeKey(scopeID *string) string {
	if scopeID == nil {
		return GlobalScopeKey
	}
	return *scopeID
}

// AuthzService answers permission checks for guarded operations.
type AuthzService struct {
	assignments port.AssignmentRepository
	permissions port.PermissionRepository
	cache       port.DecisionCache
	logger      *zap.Logger
}

// NewAuthzService constructs an AuthzService. The cache is optional.
func NewAuthzService(
	assignments port.AssignmentRepository,
	permissions port.PermissionRepository,
	cache port.DecisionCache,
	logger *zap.Logger,
) *AuthzService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthzService{
		assignments: assignments,
		permissions: permissions,
		cache:       cache,
		logger:      logger,
	}
}

// HasPermission reports whether the user's role assignment in the scope
// context grants the named permission. A missing assignment or an empty
// permission set is false, never an error; only infrastructure failures
// surface as errors. The scope kind must agree with the presence of the
// scope instance id and with the stored assignment.
func (s *AuthzService) HasPermission(ctx context.Context, userID, permissionName string, scope domain.Scope, scopeID *string) (bool, error) {
	if !scope.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if scope.RequiresInstance() && scopeID == nil {
		return false, ErrScopeIDRequired
	}
	if !scope.RequiresInstance() && scopeID != nil {
		return false, ErrScopeIDForbidden
	}

	names, err := s.permissionNames(ctx, userID, scope, scopeID)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if name == permissionName {
			return true, nil
		}
	}

	return false, nil
}

// HasGlobalPermission is the dashboard-gate variant of HasPermission,
// keyed on the global sentinel scope.
func (s *AuthzService) HasGlobalPermission(ctx context.Context, userID, permissionName string) (bool, error) {
	return s.HasPermission(ctx, userID, permissionName, domain.ScopeGlobal, nil)
}

func (s *AuthzService) permissionNames(ctx context.Context, userID string, scope domain.Scope, scopeID *string) ([]string, error) {
	scopeKey := ScopeKey(scopeID)

	if s.cache != nil {
		names, ok, err := s.cache.Get(ctx, userID, scopeKey)
		if err != nil {
			s.logger.Warn("decision cache read", zap.Error(err), zap.String("user_id", userID))
		} else if ok {
			return names, nil
		}
	}

	assignment, err := s.assignments.GetByUserAndScope(ctx, userID, scopeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			names := []string{}
			s.cachePut(ctx, userID, scopeKey, names)
			return names, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	// An assignment whose scope kind disagrees with the request grants
	// nothing. The deny is not cached: the instance key belongs to the
	// stored assignment's own kind.
	if assignment.Scope != scope {
		return []string{}, nil
	}

	permissions, err := s.permissions.ListByRole(ctx, assignment.RoleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}

	names := make([]string, 0, len(permissions))
	for _, permission := range permissions {
		names = append(names, permission.Name)
	}

	s.cachePut(ctx, userID, scopeKey, names)
	return names, nil
}

func (s *AuthzService) cachePut(ctx context.Context, userID, scopeKey string, names []string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, userID, scopeKey, names); err != nil {
		s.logger.Warn("decision cache write", zap.Error(err), zap.String("user_id", userID))
	}
}
