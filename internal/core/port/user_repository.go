package port

import (
	"context"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
)

// UserRepository exposes the user read model.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
