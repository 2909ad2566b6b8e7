package messaging

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid messaging client config")

	// ErrUnavailable is returned when the service cannot be reached, times
	// out, or fails with a server-side error
	ErrUnavailable = errors.New("message service unavailable")

	// ErrRequestRejected is returned when the service rejects the request
	// (client-side error)
	ErrRequestRejected = errors.New("message service rejected request")

	// ErrUnexpectedResponse is returned when the service answers with a shape
	// the client cannot interpret
	ErrUnexpectedResponse = errors.New("unexpected message service response")
)
