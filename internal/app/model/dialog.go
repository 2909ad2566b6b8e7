package model

import "time"

// Dialog maps a 1:1 conversation between a customer and a business owner to
// exactly one dialog resource on the message service. At most one active
// dialog exists per (business, user) pair, enforced by a partial unique
// index so that two concurrent starts cannot both persist; the loser of that
// race re-fetches the winner. Unread counters are local per-side counters,
// independent from the per-member unread state the message service keeps.
type Dialog struct {
	ID                uint      `gorm:"primarykey" json:"-"`
	DialogID          string    `gorm:"uniqueIndex;not null" json:"dialog_id"` // public identifier (dlg_...)
	BusinessID        string    `gorm:"not null;index;uniqueIndex:uq_dialogs_active_pair,where:is_active" json:"business_id"`
	UserID            string    `gorm:"not null;index;uniqueIndex:uq_dialogs_active_pair" json:"user_id"` // the customer
	OwnerID           string    `gorm:"not null;index" json:"owner_id"`                                   // business owner at creation time
	MessagingDialogID string    `gorm:"uniqueIndex;not null" json:"messaging_dialog_id"`                  // one external resource per dialog
	LastMessageAt     time.Time `gorm:"index" json:"last_message_at"`
	UnreadCountUser   int       `gorm:"default:0" json:"unread_count_user"`
	UnreadCountOwner  int       `gorm:"default:0" json:"unread_count_owner"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Dialog) TableName() string {
	return "dialogs"
}

// UnreadFor returns the counter belonging to the given participant
func (d *Dialog) UnreadFor(userID string) int {
	if d.UserID == userID {
		return d.UnreadCountUser
	}
	return d.UnreadCountOwner
}

// IsParticipant reports whether userID is the dialog's customer or owner
func (d *Dialog) IsParticipant(userID string) bool {
	return d.UserID == userID || d.OwnerID == userID
}
