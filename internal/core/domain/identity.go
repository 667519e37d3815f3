package domain

import "time"

// UserStatus describes account standing as mirrored from the identity service.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is the read model this service keeps for existence checks and
// display purposes. Account lifecycle is owned by the identity service.
type User struct {
	ID        string
	Username  string
	Email     *string
	Status    UserStatus
	CreatedAt time.Time
}
