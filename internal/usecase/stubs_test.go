package usecase

import (
	"context"
	"errors"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/core/port"
	"github.com/whiteflags26/turfmania-sub000/internal/repository"
)

// Shared stub repositories for service tests.

type permissionRepoStub struct {
	catalog []domain.Permission
	byRole  map[string][]domain.Permission
	listErr error
}

func (m *permissionRepoStub) List(_ context.Context) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.catalog, nil
}

func (m *permissionRepoStub) ListByScope(_ context.Context, scope domain.Scope) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]domain.Permission, 0)
	for _, permission := range m.catalog {
		if permission.Scope == scope {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (m *permissionRepoStub) GetByNames(_ context.Context, scope domain.Scope, names []string) ([]domain.Permission, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	result := make([]domain.Permission, 0, len(names))
	for _, permission := range m.catalog {
		if permission.Scope != scope {
			continue
		}
		if _, ok := wanted[permission.Name]; ok {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (m *permissionRepoStub) ListByRole(_ context.Context, roleID string) ([]domain.Permission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if permissions, ok := m.byRole[roleID]; ok {
		return permissions, nil
	}
	return []domain.Permission{}, nil
}

type roleRepoStub struct {
	roles           map[string]domain.Role
	rolePermissions map[string][]string
	createErr       error
}

func (m *roleRepoStub) Create(_ context.Context, role domain.Role) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.roles == nil {
		m.roles = make(map[string]domain.Role)
	}
	for _, existing := range m.roles {
		if existing.Name == role.Name && existing.Scope == role.Scope && ScopeKey(existing.ScopeID) == ScopeKey(role.ScopeID) {
			return repository.ErrDuplicate
		}
	}
	m.roles[role.ID] = role
	return nil
}

func (m *roleRepoStub) GetByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := m.roles[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoStub) GetByNameInScope(_ context.Context, name string, scope domain.Scope, scopeID *string) (*domain.Role, error) {
	for _, role := range m.roles {
		if role.Name == name && role.Scope == scope && ScopeKey(role.ScopeID) == ScopeKey(scopeID) {
			copied := role
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoStub) ListByScopeInstance(_ context.Context, scope domain.Scope, scopeID string) ([]domain.Role, error) {
	result := make([]domain.Role, 0)
	for _, role := range m.roles {
		if role.Scope == scope && role.ScopeID != nil && *role.ScopeID == scopeID {
			result = append(result, role)
		}
	}
	return result, nil
}

func (m *roleRepoStub) ReplacePermissions(_ context.Context, roleID string, permissionIDs []string) error {
	if m.rolePermissions == nil {
		m.rolePermissions = make(map[string][]string)
	}
	m.rolePermissions[roleID] = append([]string(nil), permissionIDs...)
	return nil
}

func (m *roleRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := m.roles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.rolePermissions, id)
	return nil
}

type assignmentRepoStub struct {
	assignments map[string]domain.RoleAssignment
	createErr   error
}

func assignmentKey(userID string, scopeID *string) string {
	return userID + "|" + ScopeKey(scopeID)
}

func (m *assignmentRepoStub) Create(_ context.Context, assignment domain.RoleAssignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.assignments == nil {
		m.assignments = make(map[string]domain.RoleAssignment)
	}
	key := assignmentKey(assignment.UserID, assignment.ScopeID)
	if _, exists := m.assignments[key]; exists {
		return repository.ErrDuplicate
	}
	m.assignments[key] = assignment
	return nil
}

func (m *assignmentRepoStub) GetByUserAndScope(_ context.Context, userID string, scopeID *string) (*domain.RoleAssignment, error) {
	if assignment, ok := m.assignments[assignmentKey(userID, scopeID)]; ok {
		return &assignment, nil
	}
	return nil, repository.ErrNotFound
}

func (m *assignmentRepoStub) DeleteByUserAndScope(_ context.Context, userID string, scopeID *string) (int, error) {
	key := assignmentKey(userID, scopeID)
	if _, ok := m.assignments[key]; !ok {
		return 0, nil
	}
	delete(m.assignments, key)
	return 1, nil
}

func (m *assignmentRepoStub) DeleteByRole(_ context.Context, roleID string) (int, error) {
	removed := 0
	for key, assignment := range m.assignments {
		if assignment.RoleID == roleID {
			delete(m.assignments, key)
			removed++
		}
	}
	return removed, nil
}

func (m *assignmentRepoStub) ListByRole(_ context.Context, roleID string) ([]domain.RoleAssignment, error) {
	result := make([]domain.RoleAssignment, 0)
	for _, assignment := range m.assignments {
		if assignment.RoleID == roleID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

type userRepoStub struct {
	users map[string]domain.User
}

func (m *userRepoStub) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

type organizationRepoStub struct {
	organizations map[string]domain.Organization
}

func (m *organizationRepoStub) Create(_ context.Context, org domain.Organization) error {
	if m.organizations == nil {
		m.organizations = make(map[string]domain.Organization)
	}
	m.organizations[org.ID] = org
	return nil
}

func (m *organizationRepoStub) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	if org, ok := m.organizations[id]; ok {
		copied := org
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *organizationRepoStub) UpdateStatus(_ context.Context, id string, status domain.OrganizationStatus) error {
	org, ok := m.organizations[id]
	if !ok {
		return repository.ErrNotFound
	}
	org.Status = status
	m.organizations[id] = org
	return nil
}

func (m *organizationRepoStub) SetOwner(_ context.Context, id, ownerID string) error {
	org, ok := m.organizations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if org.OwnerID != nil {
		return repository.ErrDuplicate
	}
	org.OwnerID = &ownerID
	m.organizations[id] = org
	return nil
}

type eventRepoStub struct {
	events map[string]domain.Event
}

func (m *eventRepoStub) GetByID(_ context.Context, id string) (*domain.Event, error) {
	if event, ok := m.events[id]; ok {
		return &event, nil
	}
	return nil, repository.ErrNotFound
}

// txManagerStub hands the same stub repositories to fn; an error from fn
// surfaces unchanged, mirroring a rollback.
type txManagerStub struct {
	roles         *roleRepoStub
	permissions   *permissionRepoStub
	assignments   *assignmentRepoStub
	organizations *organizationRepoStub
	beginErr      error
}

func (m *txManagerStub) WithinTx(_ context.Context, fn func(repos port.RepositorySet) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(port.RepositorySet{
		Roles:         m.roles,
		Permissions:   m.permissions,
		Assignments:   m.assignments,
		Organizations: m.organizations,
	})
}

type publisherStub struct {
	roleCreated        int
	permissionsUpdated int
	roleDeleted        int
	roleAssigned       int
	ownerAssigned      int
	lastRoleDeleted    domain.RoleDeletedEvent
	lastOwnerAssigned  domain.OwnerAssignedEvent
	err                error
}

func (m *publisherStub) PublishRoleCreated(_ context.Context, _ domain.RoleCreatedEvent) error {
	m.roleCreated++
	return m.err
}

func (m *publisherStub) PublishRolePermissionsUpdated(_ context.Context, _ domain.RolePermissionsUpdatedEvent) error {
	m.permissionsUpdated++
	return m.err
}

func (m *publisherStub) PublishRoleDeleted(_ context.Context, event domain.RoleDeletedEvent) error {
	m.roleDeleted++
	m.lastRoleDeleted = event
	return m.err
}

func (m *publisherStub) PublishRoleAssigned(_ context.Context, _ domain.RoleAssignedEvent) error {
	m.roleAssigned++
	return m.err
}

func (m *publisherStub) PublishOwnerAssigned(_ context.Context, event domain.OwnerAssignedEvent) error {
	m.ownerAssigned++
	m.lastOwnerAssigned = event
	return m.err
}

type decisionCacheStub struct {
	entries     map[string][]string
	invalidated []string
	getErr      error
}

func cacheKey(userID, scopeKey string) string {
	return userID + "|" + scopeKey
}

func (m *decisionCacheStub) Get(_ context.Context, userID, scopeKey string) ([]string, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if names, ok := m.entries[cacheKey(userID, scopeKey)]; ok {
		return names, true, nil
	}
	return nil, false, nil
}

func (m *decisionCacheStub) Set(_ context.Context, userID, scopeKey string, permissions []string) error {
	if m.entries == nil {
		m.entries = make(map[string][]string)
	}
	m.entries[cacheKey(userID, scopeKey)] = permissions
	return nil
}

func (m *decisionCacheStub) Invalidate(_ context.Context, userID, scopeKey string) error {
	key := cacheKey(userID, scopeKey)
	delete(m.entries, key)
	m.invalidated = append(m.invalidated, key)
	return nil
}

var errStorage = errors.New("storage failure")
