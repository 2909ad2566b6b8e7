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

// CreateUserInput carries the fields of an administratively created user.
type CreateUserInput struct {
	Phone  string
	Name   string
	Avatar string
}

// UpdateProfileInput carries partial profile updates; nil fields stay
// unchanged.
type UpdateProfileInput struct {
	Name   *string
	Avatar *string
}

type UserService interface {
	List(search string) ([]model.User, error)
	GetByID(userID string) (*model.User, error)
	Create(ctx context.Context, input CreateUserInput) (*model.User, error)
	UpdateProfile(userID, callerID string, input UpdateProfileInput) (*model.User, error)
}

type userService struct {
	users       repository.UserRepository
	provisioner ProvisionService
}

func NewUserService(users repository.UserRepository, provisioner ProvisionService) UserService {
	return &userService{users: users, provisioner: provisioner}
}

func (s *userService) List(search string) ([]model.User, error) {
	if search != "" {
		return s.users.SearchActive(search)
	}
	return s.users.ListActive()
}

func (s *userService) GetByID(userID string) (*model.User, error) {
	user, err := s.users.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create registers a user directly, without the code flow. Used by seeding
// and administrative tooling.
func (s *userService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if !phonePattern.MatchString(input.Phone) {
		return nil, ErrInvalidPhone
	}

	user := &model.User{
		UserID:   util.NewUserID(),
		Phone:    input.Phone,
		Name:     input.Name,
		Avatar:   input.Avatar,
		IsActive: true,
	}
	if err := s.users.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrPhoneExists
		}
		return nil, err
	}

	if _, err := s.provisioner.EnsureUser(ctx, user); err != nil {
		logger.Warn("user provisioning deferred", map[string]interface{}{
			"user_id": user.UserID,
			"error":   err.Error(),
		})
	}
	return user, nil
}

// UpdateProfile lets a user change their own name and avatar.
func (s *userService) UpdateProfile(userID, callerID string, input UpdateProfileInput) (*model.User, error) {
	if userID != callerID {
		return nil, ErrAccessDenied
	}
	user, err := s.users.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
