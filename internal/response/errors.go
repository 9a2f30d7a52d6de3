package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrRoleDenied       ErrCode = "ROLE_DENIED"
	ErrNotParticipant   ErrCode = "NOT_THREAD_PARTICIPANT"
	ErrPreschoolScoping ErrCode = "PRESCHOOL_SCOPE_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Messaging ─────────────────────────────────────────────────────
	ErrVoiceTooShort  ErrCode = "VOICE_MESSAGE_TOO_SHORT"
	ErrEmptyMessage   ErrCode = "EMPTY_MESSAGE"
	ErrThreadArchived ErrCode = "THREAD_ARCHIVED"

	// ─── Registration ──────────────────────────────────────────────────
	ErrRegistrationNotPending ErrCode = "REGISTRATION_NOT_PENDING"
	ErrPOPRequired            ErrCode = "PROOF_OF_PAYMENT_REQUIRED"
	ErrImportInvalid          ErrCode = "IMPORT_FILE_INVALID"

	// ─── Campaigns ─────────────────────────────────────────────────────
	ErrCampaignInactive  ErrCode = "CAMPAIGN_INACTIVE"
	ErrCampaignExhausted ErrCode = "CAMPAIGN_EXHAUSTED"

	// ─── Quotas ────────────────────────────────────────────────────────
	ErrQuotaExceeded ErrCode = "QUOTA_EXCEEDED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRoleDenied:
		return "Your role does not allow this action."
	case ErrNotParticipant:
		return "You are not a participant of this conversation."
	case ErrPreschoolScoping:
		return "This resource belongs to a different school."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrDependencyExists:
		return "The record cannot be deleted because other data depends on it."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Messaging ─────────────────────────────────────────────────────
	case ErrVoiceTooShort:
		return "The voice message is too short to send."
	case ErrEmptyMessage:
		return "A message needs text or audio content."
	case ErrThreadArchived:
		return "This conversation has been archived."

	// ─── Registration ──────────────────────────────────────────────────
	case ErrRegistrationNotPending:
		return "This registration has already been reviewed."
	case ErrPOPRequired:
		return "A proof of payment upload is required before approval."
	case ErrImportInvalid:
		return "The import file could not be parsed."

	// ─── Campaigns ─────────────────────────────────────────────────────
	case ErrCampaignInactive:
		return "This campaign is not currently active."
	case ErrCampaignExhausted:
		return "This campaign has reached its redemption limit."

	// ─── Quotas ────────────────────────────────────────────────────────
	case ErrQuotaExceeded:
		return "You have reached your daily AI usage limit."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "The file type is not supported."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
