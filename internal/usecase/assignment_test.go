package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	uuid "github.com/google/uuid"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

func newAssignmentServiceForTest(
	users *userRepoStub,
	roles *roleRepoStub,
	organizations *organizationRepoStub,
	events *eventRepoStub,
	assignments *assignmentRepoStub,
	publisher *publisherStub,
	cache *decisionCacheStub,
) *AssignmentService {
	return NewAssignmentService(users, roles, organizations, events, assignments, publisher, cache, nil)
}

func TestAssignmentService_AssignRole_GlobalSuccess(t *testing.T) {
	userID := uuid.NewString()
	roleID := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID, Username: "platform-admin"}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleID: {ID: roleID, Name: "Platform Admin", Scope: domain.ScopeGlobal},
	}}
	assignments := &assignmentRepoStub{}
	publisher := &publisherStub{}
	cache := &decisionCacheStub{}

	service := newAssignmentServiceForTest(users, roles, &organizationRepoStub{}, &eventRepoStub{}, assignments, publisher, cache)

	assignment, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: userID,
		RoleID: roleID,
		Scope:  domain.ScopeGlobal,
	})
	if err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}

	if assignment.ScopeID != nil {
		t.Errorf("expected nil scope id for global assignment, got %v", *assignment.ScopeID)
	}
	if _, ok := assignments.assignments[assignmentKey(userID, nil)]; !ok {
		t.Errorf("expected assignment stored under global key")
	}
	if publisher.roleAssigned != 1 {
		t.Errorf("expected 1 role assigned event, got %d", publisher.roleAssigned)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != cacheKey(userID, GlobalScopeKey) {
		t.Errorf("expected decision cache invalidated for the global key, got %v", cache.invalidated)
	}
}

func TestAssignmentService_AssignRole_OrganizationSuccess(t *testing.T) {
	userID := uuid.NewString()
	roleID := uuid.NewString()
	orgID := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleID: {ID: roleID, Name: "Turf Manager", Scope: domain.ScopeOrganization, ScopeID: &orgID},
	}}
	organizations := &organizationRepoStub{organizations: map[string]domain.Organization{
		orgID: {ID: orgID, Name: "City Turf"},
	}}
	assignments := &assignmentRepoStub{}

	service := newAssignmentServiceForTest(users, roles, organizations, &eventRepoStub{}, assignments, &publisherStub{}, &decisionCacheStub{})

	assignment, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID:  userID,
		RoleID:  roleID,
		Scope:   domain.ScopeOrganization,
		ScopeID: &orgID,
	})
	if err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	if assignment.ScopeID == nil || *assignment.ScopeID != orgID {
		t.Errorf("expected scope id %s, got %v", orgID, assignment.ScopeID)
	}
}

func TestAssignmentService_AssignRole_SecondRoleInScopeRejected(t *testing.T) {
	userID := uuid.NewString()
	firstRole := uuid.NewString()
	secondRole := uuid.NewString()
	orgID := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		secondRole: {ID: secondRole, Name: "Booking Clerk", Scope: domain.ScopeOrganization, ScopeID: &orgID},
	}}
	organizations := &organizationRepoStub{organizations: map[string]domain.Organization{
		orgID: {ID: orgID, Name: "City Turf"},
	}}
	assignments := &assignmentRepoStub{assignments: map[string]domain.RoleAssignment{
		assignmentKey(userID, &orgID): {
			ID: uuid.NewString(), UserID: userID, RoleID: firstRole,
			Scope: domain.ScopeOrganization, ScopeID: &orgID, AssignedAt: time.Now(),
		},
	}}

	service := newAssignmentServiceForTest(users, roles, organizations, &eventRepoStub{}, assignments, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID:  userID,
		RoleID:  secondRole,
		Scope:   domain.ScopeOrganization,
		ScopeID: &orgID,
	})
	if !errors.Is(err, ErrAssignmentExists) {
		t.Fatalf("expected ErrAssignmentExists, got %v", err)
	}

	// The original assignment must be untouched.
	if got := assignments.assignments[assignmentKey(userID, &orgID)]; got.RoleID != firstRole {
		t.Errorf("expected original role %s kept, got %s", firstRole, got.RoleID)
	}
}

func TestAssignmentService_AssignRole_SameRoleDifferentOrganizations(t *testing.T) {
	userID := uuid.NewString()
	orgA := uuid.NewString()
	orgB := uuid.NewString()
	roleA := uuid.NewString()
	roleB := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleA: {ID: roleA, Name: "Turf Manager", Scope: domain.ScopeOrganization, ScopeID: &orgA},
		roleB: {ID: roleB, Name: "Turf Manager", Scope: domain.ScopeOrganization, ScopeID: &orgB},
	}}
	organizations := &organizationRepoStub{organizations: map[string]domain.Organization{
		orgA: {ID: orgA}, orgB: {ID: orgB},
	}}
	assignments := &assignmentRepoStub{}

	service := newAssignmentServiceForTest(users, roles, organizations, &eventRepoStub{}, assignments, &publisherStub{}, &decisionCacheStub{})

	if _, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: userID, RoleID: roleA, Scope: domain.ScopeOrganization, ScopeID: &orgA,
	}); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}
	if _, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: userID, RoleID: roleB, Scope: domain.ScopeOrganization, ScopeID: &orgB,
	}); err != nil {
		t.Fatalf("assignment in a second organization failed: %v", err)
	}

	if len(assignments.assignments) != 2 {
		t.Errorf("expected 2 assignments across organizations, got %d", len(assignments.assignments))
	}
}

func TestAssignmentService_AssignRole_ScopeMismatch(t *testing.T) {
	userID := uuid.NewString()
	roleID := uuid.NewString()
	orgID := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleID: {ID: roleID, Name: "Turf Manager", Scope: domain.ScopeOrganization, ScopeID: &orgID},
	}}

	service := newAssignmentServiceForTest(users, roles, &organizationRepoStub{}, &eventRepoStub{}, &assignmentRepoStub{}, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: userID,
		RoleID: roleID,
		Scope:  domain.ScopeGlobal,
	})
	if !errors.Is(err, ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch for scope kind, got %v", err)
	}
}

func TestAssignmentService_AssignRole_ScopeInstanceMismatch(t *testing.T) {
	userID := uuid.NewString()
	roleID := uuid.NewString()
	orgID := uuid.NewString()
	otherOrg := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleID: {ID: roleID, Name: "Turf Manager", Scope: domain.ScopeOrganization, ScopeID: &orgID},
	}}

	service := newAssignmentServiceForTest(users, roles, &organizationRepoStub{}, &eventRepoStub{}, &assignmentRepoStub{}, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID:  userID,
		RoleID:  roleID,
		Scope:   domain.ScopeOrganization,
		ScopeID: &otherOrg,
	})
	if !errors.Is(err, ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch for scope instance, got %v", err)
	}
}

func TestAssignmentService_AssignRole_UserNotFound(t *testing.T) {
	roleID := uuid.NewString()
	roles := &roleRepoStub{roles: map[string]domain.Role{
		roleID: {ID: roleID, Name: "Platform Admin", Scope: domain.ScopeGlobal},
	}}

	service := newAssignmentServiceForTest(&userRepoStub{}, roles, &organizationRepoStub{}, &eventRepoStub{}, &assignmentRepoStub{}, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: uuid.NewString(),
		RoleID: roleID,
		Scope:  domain.ScopeGlobal,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAssignmentService_AssignRole_RoleNotFound(t *testing.T) {
	userID := uuid.NewString()
	users := &userRepoStub{users: map[string]domain.User{userID: {ID: userID}}}

	service := newAssignmentServiceForTest(users, &roleRepoStub{}, &organizationRepoStub{}, &eventRepoStub{}, &assignmentRepoStub{}, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: userID,
		RoleID: uuid.NewString(),
		Scope:  domain.ScopeGlobal,
	})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestAssignmentService_AssignRole_InvalidUserID(t *testing.T) {
	service := newAssignmentServiceForTest(&userRepoStub{}, &roleRepoStub{}, &organizationRepoStub{}, &eventRepoStub{}, &assignmentRepoStub{}, &publisherStub{}, &decisionCacheStub{})

	_, err := service.AssignRole(context.Background(), uuid.NewString(), AssignRoleInput{
		UserID: "not-a-uuid",
		RoleID: uuid.NewString(),
		Scope:  domain.ScopeGlobal,
	})
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
