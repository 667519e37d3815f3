package domain

import "time"

// Scope is the breadth at which a permission or role applies.
type Scope string

const (
	// ScopeGlobal applies platform-wide.
	ScopeGlobal Scope = "GLOBAL"
	// ScopeOrganization applies to a single organization.
	ScopeOrganization Scope = "ORGANIZATION"
	// ScopeEvent applies to a single event.
	ScopeEvent Scope = "EVENT"
)

// Valid reports whether the scope is one of the known values.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeOrganization, ScopeEvent:
		return true
	}
	return false
}

// RequiresInstance reports whether the scope must be bound to a concrete
// scope-instance entity (an organization or an event).
func (s Scope) RequiresInstance() bool {
	return s == ScopeOrganization || s == ScopeEvent
}

// Permission defines a named capability tagged with the scope it applies at.
type Permission struct {
	ID          string
	Name        string
	Description *string
	Scope       Scope
}

// Role bundles permissions at a scope. Non-global roles are bound to the
// scope instance identified by ScopeID; global roles carry a nil ScopeID.
type Role struct {
	ID        string
	Name      string
	Scope     Scope
	ScopeID   *string
	IsDefault bool
	CreatedAt time.Time
}

// RoleAssignment binds one user to one role within one scope context.
// Scope and ScopeID are denormalized copies of the role's values so the
// storage layer can enforce the one-role-per-scope-context rule with a
// single unique index on (user_id, scope_id).
type RoleAssignment struct {
	ID         string
	UserID     string
	RoleID     string
	Scope      Scope
	ScopeID    *string
	AssignedAt time.Time
}

// OwnerRoleName is the default role materialized for an organization's
// owner by the owner bootstrap workflow.
const OwnerRoleName = "Organization Owner"
