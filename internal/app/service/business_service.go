package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/pkg/logger"
	"github.com/antirek/bank/pkg/util"
)

// CreateBusinessInput carries the caller-supplied fields of a new business.
type CreateBusinessInput struct {
	Name        string
	Description string
	Logo        string
	Slug        string
	IsPublic    *bool
}

// UpdateBusinessInput carries partial updates; nil fields stay unchanged.
type UpdateBusinessInput struct {
	Name        *string
	Description *string
	Logo        *string
	Slug        *string
	IsPublic    *bool
}

// BusinessService manages directory entries. Creating a business also
// provisions its bot and broadcast channel on the message service,
// best-effort; the entry exists either way and the sweep finishes the job
// later.
type BusinessService interface {
	Create(ctx context.Context, ownerID string, input CreateBusinessInput) (*model.Business, error)
	Update(businessID, callerID string, input UpdateBusinessInput) (*model.Business, error)
	GetByID(businessID string) (*model.Business, error)
	GetBySlug(slug string) (*model.Business, error)
	List(ownerID string) ([]model.Business, error)
	Deactivate(businessID, callerID string) error
}

type businessService struct {
	businesses  repository.BusinessRepository
	users       repository.UserRepository
	provisioner ProvisionService
}

func NewBusinessService(
	businesses repository.BusinessRepository,
	users repository.UserRepository,
	provisioner ProvisionService,
) BusinessService {
	return &businessService{
		businesses:  businesses,
		users:       users,
		provisioner: provisioner,
	}
}

func (s *businessService) Create(ctx context.Context, ownerID string, input CreateBusinessInput) (*model.Business, error) {
	if !util.IsValidSlug(input.Slug) {
		return nil, ErrInvalidSlug
	}
	if _, err := s.users.GetByUserID(ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	taken, err := s.businesses.SlugExists(input.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	business := &model.Business{
		BusinessID:  util.NewBusinessID(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Logo:        input.Logo,
		Slug:        input.Slug,
		IsPublic:    true,
		IsActive:    true,
	}
	if input.IsPublic != nil {
		business.IsPublic = *input.IsPublic
	}
	if err := s.businesses.Create(business); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	// The entry is usable without messaging identities; retried by the sweep.
	if err := s.provisioner.EnsureBusiness(ctx, business); err != nil {
		logger.Warn("business provisioning deferred", map[string]interface{}{
			"business_id": business.BusinessID,
			"error":       err.Error(),
		})
	}
	return business, nil
}

func (s *businessService) Update(businessID, callerID string, input UpdateBusinessInput) (*model.Business, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.OwnerID != callerID {
		return nil, ErrAccessDenied
	}

	if input.Slug != nil && *input.Slug != business.Slug {
		if !util.IsValidSlug(*input.Slug) {
			return nil, ErrInvalidSlug
		}
		taken, err := s.businesses.SlugExists(*input.Slug, businessID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		business.Slug = *input.Slug
	}
	if input.Name != nil {
		business.Name = *input.Name
	}
	if input.Description != nil {
		business.Description = *input.Description
	}
	if input.Logo != nil {
		business.Logo = *input.Logo
	}
	if input.IsPublic != nil {
		business.IsPublic = *input.IsPublic
	}

	if err := s.businesses.Update(business); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) GetByID(businessID string) (*model.Business, error) {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) GetBySlug(slug string) (*model.Business, error) {
	business, err := s.businesses.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if !business.IsActive {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}

// List returns active businesses, optionally only those of one owner.
func (s *businessService) List(ownerID string) ([]model.Business, error) {
	return s.businesses.ListActive(ownerID)
}

// Deactivate soft-deletes the business. Existing dialogs and subscriptions
// stay in place; list endpoints stop showing the entry.
func (s *businessService) Deactivate(businessID, callerID string) error {
	business, err := s.businesses.GetActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		return err
	}
	if business.OwnerID != callerID {
		return ErrAccessDenied
	}
	business.IsActive = false
	return s.businesses.Update(business)
}
