package repository

import (
	"errors"

	"github.com/antirek/bank/internal/app/model"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(subscription *model.Subscription) error
	FindActive(businessID, userID string) (*model.Subscription, error)
	DeactivateActive(businessID, userID string) (bool, error)
	ListActiveByUser(userID string) ([]model.Subscription, error)
	ListActiveByBusiness(businessID string) ([]model.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(subscription *model.Subscription) error {
	return r.db.Create(subscription).Error
}

// FindActive returns the active subscription for the pair, or nil when none
// exists
func (r *subscriptionRepository) FindActive(businessID, userID string) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.
		Where("business_id = ? AND user_id = ? AND is_active = ?", businessID, userID, true).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// DeactivateActive soft-deactivates the active subscription for the pair and
// reports whether one existed. History rows stay untouched.
func (r *subscriptionRepository) DeactivateActive(businessID, userID string) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("business_id = ? AND user_id = ? AND is_active = ?", businessID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) ListActiveByUser(userID string) ([]model.Subscription, error) {
	var subscriptions []model.Subscription
	if err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("subscribed_at DESC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *subscriptionRepository) ListActiveByBusiness(businessID string) ([]model.Subscription, error) {
	var subscriptions []model.Subscription
	if err := r.db.
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("subscribed_at DESC").
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}
