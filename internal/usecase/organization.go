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

// ErrOrganizationNotPending indicates the request workflow transition is
// not applicable to the organization's current status.
var ErrOrganizationNotPending = errors.New("organization request is not pending")

// CreateOrganizationInput captures the payload for registering an organization.
type CreateOrganizationInput struct {
	Name string
}

// OrganizationService runs the organization registration request workflow.
type OrganizationService struct {
	organizations port.OrganizationRepository
	users         port.UserRepository
	tx            port.TxManager
	owner         *OwnerService
	logger        *zap.Logger
}

// NewOrganizationService constructs an OrganizationService.
func NewOrganizationService(
	organizations port.OrganizationRepository,
	users port.UserRepository,
	tx port.TxManager,
	owner *OwnerService,
	logger *zap.Logger,
) *OrganizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{
		organizations: organizations,
		users:         users,
		tx:            tx,
		owner:         owner,
		logger:        logger,
	}
}

// CreateOrganization registers a pending organization request.
func (s *OrganizationService) CreateOrganization(ctx context.Context, actorID string, input CreateOrganizationInput) (*domain.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalidID)
	}

	org := domain.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    domain.OrganizationStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.organizations.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	return &org, nil
}

// ApproveOrganization approves a pending request and bootstraps the
// nominated owner in the same transaction, so an approved organization
// can never exist without its owner role assignment.
func (s *OrganizationService) ApproveOrganization(ctx context.Context, actorID, orgID, ownerUserID string) (*domain.Organization, error) {
	orgID = strings.TrimSpace(orgID)
	ownerUserID = strings.TrimSpace(ownerUserID)
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("%w: organization id", ErrInvalidID)
	}
	if _, err := uuid.Parse(ownerUserID); err != nil {
		return nil, fmt.Errorf("%w: user id", ErrInvalidID)
	}

	if _, err := s.users.GetByID(ctx, ownerUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var result BootstrapResult
	err := s.tx.WithinTx(ctx, func(repos port.RepositorySet) error {
		org, err := repos.Organizations.GetByID(ctx, orgID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrganizationNotFound
			}
			return fmt.Errorf("get organization: %w", err)
		}
		if org.Status != domain.OrganizationStatusPending {
			return ErrOrganizationNotPending
		}

		if err := repos.Organizations.UpdateStatus(ctx, orgID, domain.OrganizationStatusApproved); err != nil {
			return fmt.Errorf("approve organization: %w", err)
		}

		r, err := s.owner.Bootstrap(ctx, repos, orgID, ownerUserID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Organization.Status = domain.OrganizationStatusApproved
	s.owner.afterBootstrap(ctx, actorID, result)

	return &result.Organization, nil
}

// RejectOrganization rejects a pending request.
func (s *OrganizationService) RejectOrganization(ctx context.Context, actorID, orgID string) (*domain.Organization, error) {
	orgID = strings.TrimSpace(orgID)
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("%w: organization id", ErrInvalidID)
	}

	org, err := s.organizations.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	if org.Status != domain.OrganizationStatusPending {
		return nil, ErrOrganizationNotPending
	}

	if err := s.organizations.UpdateStatus(ctx, orgID, domain.OrganizationStatusRejected); err != nil {
		return nil, fmt.Errorf("reject organization: %w", err)
	}

	org.Status = domain.OrganizationStatusRejected
	return org, nil
}

// GetOrganization retrieves an organization by ID.
func (s *OrganizationService) GetOrganization(ctx context.Context, orgID string) (*domain.Organization, error) {
	orgID = strings.TrimSpace(orgID)
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, fmt.Errorf("%w: organization id", ErrInvalidID)
	}

	org, err := s.organizations.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	return org, nil
}
