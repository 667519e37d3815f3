package domain

import "time"

// RoleCreatedEvent represents the payload for access.role.created messages.
type RoleCreatedEvent struct {
	EventID     string
	RoleID      string
	RoleName    string
	Scope       Scope
	ScopeID     *string
	Permissions []string
	CreatedBy   string
	CreatedAt   time.Time
}

// RolePermissionsUpdatedEvent represents the payload for
// access.role.permissions.updated messages.
type RolePermissionsUpdatedEvent struct {
	EventID     string
	RoleID      string
	RoleName    string
	Permissions []string
	UpdatedBy   string
	UpdatedAt   time.Time
}

// RoleDeletedEvent represents the payload for access.role.deleted messages.
type RoleDeletedEvent struct {
	EventID            string
	RoleID             string
	RoleName           string
	Scope              Scope
	ScopeID            *string
	AssignmentsRemoved int
	DeletedBy          string
	DeletedAt          time.Time
}

// RoleAssignedEvent represents the payload for access.role.assigned messages.
type RoleAssignedEvent struct {
	EventID    string
	UserID     string
	RoleID     string
	RoleName   string
	Scope      Scope
	ScopeID    *string
	AssignedBy string
	AssignedAt time.Time
}

// OwnerAssignedEvent represents the payload for
// access.organization.owner.assigned messages.
type OwnerAssignedEvent struct {
	EventID        string
	OrganizationID string
	OwnerID        string
	RoleID         string
	AssignedBy     string
	AssignedAt     time.Time
}
