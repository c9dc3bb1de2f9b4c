package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Account errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeRefreshFailed      = "refresh_failed"

	// Quiz session errors
	ErrCodeSessionNotFound      = "session_not_found"
	ErrCodeSessionStartFailed   = "session_start_failed"
	ErrCodeNoQuestionsAvailable = "no_questions_available"
	ErrCodeQuestionFetchFailed  = "question_fetch_failed"
	ErrCodeInvalidChoice        = "invalid_choice"
	ErrCodeNoSelection          = "no_selection"
	ErrCodeQuestionOutOfRange   = "question_out_of_range"
	ErrCodeInvalidOperation     = "invalid_operation"
	ErrCodeResultsUnavailable   = "results_unavailable"

	// Catalog errors
	ErrCodeCatalogFetchFailed      = "catalog_fetch_failed"
	ErrCodeSubscriptionFetchFailed = "subscription_fetch_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
)
