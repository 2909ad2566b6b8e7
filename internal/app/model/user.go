package model

import "time"

// User is an identity record. Users log in with their phone number; the
// messaging identity is attached best-effort after login and may stay empty
// until the provisioning sweep catches up. Users are never hard-deleted.
type User struct {
	ID              uint       `gorm:"primarykey" json:"-"`
	UserID          string     `gorm:"uniqueIndex;not null" json:"user_id"`        // public identifier (user_...)
	Phone           string     `gorm:"uniqueIndex;not null" json:"phone"`          // login key
	Name            string     `json:"name"`                                       // display name, may be empty
	Avatar          string     `json:"avatar"`                                     // avatar URL
	MessagingUserID string     `gorm:"index" json:"messaging_user_id,omitempty"`   // message service identity, empty until provisioned
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`                    // last successful code verification
	IsActive        bool       `gorm:"default:true;index" json:"is_active"`        // soft-deactivation flag
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the user's name, falling back to the phone number
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Phone
}

// IsProvisioned reports whether the user holds a messaging identity
func (u *User) IsProvisioned() bool {
	return u.MessagingUserID != ""
}
