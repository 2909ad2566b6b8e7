package messaging

import "time"

// UserKind distinguishes human users from business bots on the service side.
type UserKind string

const (
	KindUser UserKind = "user"
	KindBot  UserKind = "bot"
)

// MessageTypeText is the message type used for plain text content.
const MessageTypeText = "internal.text"

// CreateUserRequest registers a user or bot with the message service.
type CreateUserRequest struct {
	UserID string   `json:"userId"`
	Name   string   `json:"name"`
	Type   UserKind `json:"type"`
}

// Member describes one dialog participant.
type Member struct {
	UserID string   `json:"userId"`
	Type   UserKind `json:"type"`
	Name   string   `json:"name"`
}

// CreateDialogRequest creates a dialog with an initial member set. Meta is an
// opaque tag the service stores verbatim; we use it to identify which local
// entities a dialog belongs to.
type CreateDialogRequest struct {
	Name      string                 `json:"name"`
	CreatedBy string                 `json:"createdBy"`
	Members   []Member               `json:"members"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// PostMessageRequest posts one message into a dialog.
type PostMessageRequest struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// MessageReceipt acknowledges a stored message.
type MessageReceipt struct {
	MessageID string    `json:"messageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageStatus is a delivery status entry attached to a message.
type MessageStatus struct {
	Status string `json:"status"`
}

// Message is one stored message as the service returns it.
type Message struct {
	MessageID string          `json:"messageId"`
	SenderID  string          `json:"senderId"`
	Content   string          `json:"content"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	Statuses  []MessageStatus `json:"statuses,omitempty"`
}

// MessagePage is one page of messages plus pagination metadata.
type MessagePage struct {
	Messages []Message
	HasMore  bool
	Total    int
}

// ListMessagesOptions control pagination and filtering of ListMessages.
// Messages come back newest-first; Before, when set, keeps only messages
// strictly older than the given time.
type ListMessagesOptions struct {
	Page   int
	Limit  int
	Before *time.Time
}

// MemberState is the per-member dialog state the service tracks.
type MemberState struct {
	UserID string `json:"userId"`
	State  struct {
		UnreadCount int `json:"unreadCount"`
	} `json:"state"`
}
