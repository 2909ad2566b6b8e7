package model

import "time"

// Business is a directory entry owned by a user. Each business may own a bot
// identity and a broadcast channel on the message service; both are created
// lazily at business creation and left empty when that fails. A non-empty
// channel id implies a non-empty bot id: the channel is created only after
// the bot.
type Business struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	BusinessID         string    `gorm:"uniqueIndex;not null" json:"business_id"` // public identifier (biz_...)
	OwnerID            string    `gorm:"index;not null" json:"owner_id"`          // references User.UserID
	Name               string    `gorm:"not null" json:"name"`
	Description        string    `gorm:"type:text" json:"description"`
	Logo               string    `json:"logo"` // logo image URL
	Slug               string    `gorm:"uniqueIndex;not null" json:"slug"`        // human-readable key (^[a-z0-9-]+$)
	MessagingBotID     string    `json:"messaging_bot_id,omitempty"`              // bot identity, empty when creation failed
	MessagingChannelID string    `json:"messaging_channel_id,omitempty"`          // channel dialog, empty unless the bot exists
	IsPublic           bool      `gorm:"default:true" json:"is_public"`
	IsActive           bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// HasChannel reports whether subscriber membership can be mirrored into the
// message service
func (b *Business) HasChannel() bool {
	return b.MessagingChannelID != "" && b.MessagingBotID != ""
}
