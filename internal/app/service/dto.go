package service

import "time"

// Denormalized read models assembled from the local records and the message
// service at call time. None of these are cached.

// DialogSummary describes a dialog from the customer's point of view right
// after starting it.
type DialogSummary struct {
	DialogID          string    `json:"dialog_id"`
	MessagingDialogID string    `json:"messaging_dialog_id"`
	BusinessID        string    `json:"business_id"`
	BusinessName      string    `json:"business_name"`
	BusinessSlug      string    `json:"business_slug"`
	OwnerID           string    `json:"owner_id"`
	OwnerName         string    `json:"owner_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// LastMessage is the most recent message of a dialog, fetched best-effort;
// nil when the fetch failed or the dialog is empty.
type LastMessage struct {
	Content   string    `json:"content"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDialogEntry is one row of a customer's dialog list.
type UserDialogEntry struct {
	DialogID      string       `json:"dialog_id"`
	BusinessID    string       `json:"business_id"`
	BusinessName  string       `json:"business_name"`
	BusinessSlug  string       `json:"business_slug"`
	LastMessage   *LastMessage `json:"last_message"`
	LastMessageAt time.Time    `json:"last_message_at"`
	UnreadCount   int          `json:"unread_count"`
}

// BusinessDialogEntry is one row of an owner's dialog list. The unread count
// here comes from the message service's per-member state, not the local
// counter.
type BusinessDialogEntry struct {
	DialogID      string       `json:"dialog_id"`
	UserID        string       `json:"user_id"`
	UserName      string       `json:"user_name"`
	UserPhone     string       `json:"user_phone"`
	LastMessage   *LastMessage `json:"last_message"`
	LastMessageAt time.Time    `json:"last_message_at"`
	UnreadCount   int          `json:"unread_count"`
}

// DialogDetail is the full denormalized view of one dialog.
type DialogDetail struct {
	DialogID          string    `json:"dialog_id"`
	MessagingDialogID string    `json:"messaging_dialog_id"`
	BusinessID        string    `json:"business_id"`
	BusinessName      string    `json:"business_name"`
	BusinessSlug      string    `json:"business_slug"`
	UserID            string    `json:"user_id"`
	UserName          string    `json:"user_name"`
	UserPhone         string    `json:"user_phone"`
	OwnerID           string    `json:"owner_id"`
	OwnerName         string    `json:"owner_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// DialogMessage is one message annotated with the resolved sender name.
type DialogMessage struct {
	MessageID  string    `json:"message_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	Status     string    `json:"status"`
}

// DialogMessagePage is a chronological page of messages plus pagination
// metadata from the message service.
type DialogMessagePage struct {
	Messages []DialogMessage `json:"messages"`
	HasMore  bool            `json:"has_more"`
	Total    int             `json:"total"`
}

// SentMessage acknowledges a message accepted by the message service.
type SentMessage struct {
	MessageID string    `json:"message_id"`
	DialogID  string    `json:"dialog_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriberEntry is one row of an owner's subscriber list.
type SubscriberEntry struct {
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserPhone    string    `json:"user_phone"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
