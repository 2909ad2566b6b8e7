package repository

import (
	"strings"
	"time"

	"github.com/antirek/bank/internal/app/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	GetByUserID(userID string) (*model.User, error)
	GetByPhone(phone string) (*model.User, error)
	ListActive() ([]model.User, error)
	ListByUserIDs(userIDs []string) ([]model.User, error)
	ListByMessagingIDs(messagingIDs []string) ([]model.User, error)
	SearchActive(term string) ([]model.User, error)
	ListUnprovisioned(limit int) ([]model.User, error)
	Update(user *model.User) error
	SetMessagingUserID(userID, messagingUserID string) error
	TouchLastLogin(userID string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByUserID(userID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListActive() ([]model.User, error) {
	var users []model.User
	if err := r.db.Where("is_active = ?", true).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListByUserIDs(userIDs []string) ([]model.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListByMessagingIDs(messagingIDs []string) ([]model.User, error) {
	if len(messagingIDs) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.Where("messaging_user_id IN ?", messagingIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SearchActive matches active users by display name or phone, case-insensitive
// substring
func (r *userRepository) SearchActive(term string) ([]model.User, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var users []model.User
	if err := r.db.
		Where("is_active = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListUnprovisioned returns active users without a messaging identity, oldest
// first, for the provisioning sweep
func (r *userRepository) ListUnprovisioned(limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.
		Where("is_active = ? AND (messaging_user_id = '' OR messaging_user_id IS NULL)", true).
		Order("created_at ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) SetMessagingUserID(userID, messagingUserID string) error {
	return r.db.Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("messaging_user_id", messagingUserID).Error
}

func (r *userRepository) TouchLastLogin(userID string, at time.Time) error {
	return r.db.Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("last_login_at", at).Error
}
