package errors

// Error code constants returned in the `error` field of failure responses.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these codes to messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized   = "AUTH_UNAUTHORIZED"    // login required
	AuthTokenExpired   = "AUTH_TOKEN_EXPIRED"   // token expired
	AuthTokenInvalid   = "AUTH_TOKEN_INVALID"   // malformed or unverifiable token
	AuthCodeInvalid    = "AUTH_CODE_INVALID"    // wrong verification code
	AuthCodeExpired    = "AUTH_CODE_EXPIRED"    // verification code expired
	AuthTooManyTries   = "AUTH_TOO_MANY_TRIES"  // attempt limit reached
	AuthPhoneExists    = "AUTH_PHONE_EXISTS"    // duplicate phone number
	AuthInvalidPhone   = "AUTH_INVALID_PHONE"   // bad phone format
	AuthNotProvisioned = "AUTH_NOT_PROVISIONED" // no messaging identity yet

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // access denied
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // business owner only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // bad request body
	ValidationInvalidSlug  = "VALIDATION_INVALID_SLUG"  // bad slug format
	ValidationEmptyMessage = "VALIDATION_EMPTY_MESSAGE" // blank message content

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Businesses (BUSINESS_) ====================
	BusinessNotFound   = "BUSINESS_NOT_FOUND"
	BusinessSlugExists = "BUSINESS_SLUG_EXISTS"

	// ==================== Dialogs (DIALOG_) ====================
	DialogNotFound = "DIALOG_NOT_FOUND"

	// ==================== Subscriptions (SUBSCRIPTION_) ====================
	SubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	SubscriptionExists   = "SUBSCRIPTION_EXISTS" // already an active subscription

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	UpstreamUnavailable   = "UPSTREAM_UNAVAILABLE" // message service call failed
)
