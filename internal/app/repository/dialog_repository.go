package repository

import (
	"errors"
	"time"

	"github.com/antirek/bank/internal/app/model"
	"gorm.io/gorm"
)

type DialogRepository interface {
	Create(dialog *model.Dialog) error
	FindActivePair(businessID, userID string) (*model.Dialog, error)
	GetActiveByDialogID(dialogID string) (*model.Dialog, error)
	ListActiveByUser(userID string, limit, offset int) ([]model.Dialog, error)
	ListActiveByBusiness(businessID string, userIDs []string, limit, offset int) ([]model.Dialog, error)
	UpdateLastMessageAt(dialogID string, at time.Time) error
	IncrementUnread(dialogID string, ownerSide bool) error
	ResetUnread(dialogID string, ownerSide bool) error
}

type dialogRepository struct {
	db *gorm.DB
}

func NewDialogRepository(db *gorm.DB) DialogRepository {
	return &dialogRepository{db: db}
}

func (r *dialogRepository) Create(dialog *model.Dialog) error {
	return r.db.Create(dialog).Error
}

// FindActivePair returns the active dialog for a (business, user) pair, or
// nil when none exists. The partial unique index guarantees at most one.
func (r *dialogRepository) FindActivePair(businessID, userID string) (*model.Dialog, error) {
	var dialog model.Dialog
	err := r.db.
		Where("business_id = ? AND user_id = ? AND is_active = ?", businessID, userID, true).
		First(&dialog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dialog, nil
}

func (r *dialogRepository) GetActiveByDialogID(dialogID string) (*model.Dialog, error) {
	var dialog model.Dialog
	if err := r.db.
		Where("dialog_id = ? AND is_active = ?", dialogID, true).
		First(&dialog).Error; err != nil {
		return nil, err
	}
	return &dialog, nil
}

// ListActiveByUser returns the customer-side dialog list, most recently
// active first
func (r *dialogRepository) ListActiveByUser(userID string, limit, offset int) ([]model.Dialog, error) {
	var dialogs []model.Dialog
	if err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_message_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dialogs).Error; err != nil {
		return nil, err
	}
	return dialogs, nil
}

// ListActiveByBusiness returns a business's dialogs, most recently active
// first; userIDs, when non-nil, narrows to those customers (search results)
func (r *dialogRepository) ListActiveByBusiness(businessID string, userIDs []string, limit, offset int) ([]model.Dialog, error) {
	query := r.db.Where("business_id = ? AND is_active = ?", businessID, true)
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}

	var dialogs []model.Dialog
	if err := query.
		Order("last_message_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dialogs).Error; err != nil {
		return nil, err
	}
	return dialogs, nil
}

func (r *dialogRepository) UpdateLastMessageAt(dialogID string, at time.Time) error {
	return r.db.Model(&model.Dialog{}).
		Where("dialog_id = ?", dialogID).
		Update("last_message_at", at).Error
}

// IncrementUnread bumps the recipient-side counter by one
func (r *dialogRepository) IncrementUnread(dialogID string, ownerSide bool) error {
	column := unreadColumn(ownerSide)
	return r.db.Model(&model.Dialog{}).
		Where("dialog_id = ?", dialogID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

// ResetUnread zeroes one side's counter, leaving the other side untouched
func (r *dialogRepository) ResetUnread(dialogID string, ownerSide bool) error {
	return r.db.Model(&model.Dialog{}).
		Where("dialog_id = ?", dialogID).
		UpdateColumn(unreadColumn(ownerSide), 0).Error
}

func unreadColumn(ownerSide bool) string {
	if ownerSide {
		return "unread_count_owner"
	}
	return "unread_count_user"
}
