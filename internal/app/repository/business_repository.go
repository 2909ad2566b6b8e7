package repository

import (
	"github.com/antirek/bank/internal/app/model"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	Create(business *model.Business) error
	GetByBusinessID(businessID string) (*model.Business, error)
	GetActiveByBusinessID(businessID string) (*model.Business, error)
	GetPublicBySlug(slug string) (*model.Business, error)
	SlugExists(slug, excludeBusinessID string) (bool, error)
	ListActive(ownerID string) ([]model.Business, error)
	ListByBusinessIDs(businessIDs []string) ([]model.Business, error)
	ListMissingMessaging(limit int) ([]model.Business, error)
	Update(business *model.Business) error
	SetMessagingIDs(businessID, botID, channelID string) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.Business) error {
	return r.db.Create(business).Error
}

func (r *businessRepository) GetByBusinessID(businessID string) (*model.Business, error) {
	var business model.Business
	if err := r.db.Where("business_id = ?", businessID).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) GetActiveByBusinessID(businessID string) (*model.Business, error) {
	var business model.Business
	if err := r.db.Where("business_id = ? AND is_active = ?", businessID, true).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) GetPublicBySlug(slug string) (*model.Business, error) {
	var business model.Business
	if err := r.db.Where("slug = ? AND is_public = ?", slug, true).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) SlugExists(slug, excludeBusinessID string) (bool, error) {
	query := r.db.Model(&model.Business{}).Where("slug = ?", slug)
	if excludeBusinessID != "" {
		query = query.Where("business_id != ?", excludeBusinessID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActive returns active businesses, optionally narrowed to one owner
func (r *businessRepository) ListActive(ownerID string) ([]model.Business, error) {
	query := r.db.Where("is_active = ?", true)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	var businesses []model.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) ListByBusinessIDs(businessIDs []string) ([]model.Business, error) {
	if len(businessIDs) == 0 {
		return nil, nil
	}
	var businesses []model.Business
	if err := r.db.Where("business_id IN ?", businessIDs).Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

// ListMissingMessaging returns active businesses whose bot or channel was
// never created, for the provisioning sweep
func (r *businessRepository) ListMissingMessaging(limit int) ([]model.Business, error) {
	var businesses []model.Business
	if err := r.db.
		Where("is_active = ?", true).
		Where("messaging_bot_id = '' OR messaging_bot_id IS NULL OR messaging_channel_id = '' OR messaging_channel_id IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) Update(business *model.Business) error {
	return r.db.Save(business).Error
}

func (r *businessRepository) SetMessagingIDs(businessID, botID, channelID string) error {
	updates := map[string]interface{}{}
	if botID != "" {
		updates["messaging_bot_id"] = botID
	}
	if channelID != "" {
		updates["messaging_channel_id"] = channelID
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&model.Business{}).
		Where("business_id = ?", businessID).
		Updates(updates).Error
}
