package service

import "errors"

// Service-level sentinel errors. Controllers translate these into HTTP
// status classes; nothing below the controller layer knows about HTTP.
var (
	// not found
	ErrUserNotFound         = errors.New("user not found")
	ErrBusinessNotFound     = errors.New("business not found")
	ErrOwnerNotFound        = errors.New("business owner not found")
	ErrDialogNotFound       = errors.New("dialog not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// access denied (entity exists, caller is not a participant/owner)
	ErrAccessDenied = errors.New("access denied")

	// conflicts
	ErrAlreadySubscribed = errors.New("already subscribed to this business")
	ErrSlugTaken         = errors.New("business with this slug already exists")
	ErrPhoneExists       = errors.New("user with this phone already exists")

	// invalid input
	ErrInvalidSlug  = errors.New("invalid slug format, use only lowercase letters, numbers and hyphens")
	ErrInvalidPhone = errors.New("invalid phone number format")
	ErrEmptyMessage = errors.New("message content is required")

	// verification codes
	ErrCodeInvalid     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")

	// external message service
	ErrNotProvisioned      = errors.New("not registered in the message service")
	ErrUpstreamUnavailable = errors.New("message service unavailable")
)
