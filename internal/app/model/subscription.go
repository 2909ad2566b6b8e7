package model

import "time"

// Subscription maps a user to a business channel. At most one active
// subscription exists per (business, user) pair, enforced by a partial
// unique index scoped to active rows. Unsubscribing deactivates the row;
// re-subscribing creates a fresh one, so history is preserved.
type Subscription struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	BusinessID   string    `gorm:"not null;index;uniqueIndex:uq_subscriptions_active_pair,where:is_active" json:"business_id"`
	UserID       string    `gorm:"not null;index;uniqueIndex:uq_subscriptions_active_pair" json:"user_id"`
	SubscribedAt time.Time `gorm:"not null" json:"subscribed_at"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
