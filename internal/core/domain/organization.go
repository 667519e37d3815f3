package domain

import "time"

// OrganizationStatus tracks the registration request workflow.
type OrganizationStatus string

const (
	OrganizationStatusPending  OrganizationStatus = "pending"
	OrganizationStatusApproved OrganizationStatus = "approved"
	OrganizationStatusRejected OrganizationStatus = "rejected"
)

// Organization is a turf-listing business on the platform. OwnerID is
// stamped exactly once by the owner bootstrap workflow.
type Organization struct {
	ID        string
	Name      string
	Status    OrganizationStatus
	OwnerID   *string
	CreatedAt time.Time
}

// Event is a tournament or league run by an organization. It acts as the
// scope instance for EVENT-scoped roles.
type Event struct {
	ID             string
	OrganizationID string
	Name           string
	StartsAt       time.Time
	CreatedAt      time.Time
}
