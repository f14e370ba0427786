package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrConflict  ErrCode = "CONFLICT"
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Interview-specific ────────────────────────────────────────────
	ErrInterviewActive    ErrCode = "INTERVIEW_ALREADY_ACTIVE"
	ErrInterviewFinished  ErrCode = "INTERVIEW_FINISHED"
	ErrInterviewRunning   ErrCode = "INTERVIEW_STILL_RUNNING"
	ErrUnknownDomain      ErrCode = "UNKNOWN_DOMAIN"
	ErrUnknownDifficulty  ErrCode = "UNKNOWN_DIFFICULTY"
	ErrQuestionPoolSmall  ErrCode = "QUESTION_POOL_TOO_SMALL"
	ErrAnswerNotAnOption  ErrCode = "ANSWER_NOT_AN_OPTION"
	ErrQuestionOutOfRange ErrCode = "QUESTION_OUT_OF_RANGE"

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
		return "Invalid email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrForbidden:
		return "You do not have access to this resource."

	// ─── Interview-specific ────────────────────────────────────────────
	case ErrInterviewActive:
		return "An interview session is already in progress."
	case ErrInterviewFinished:
		return "This interview session has already finished."
	case ErrInterviewRunning:
		return "This interview session has not finished yet."
	case ErrUnknownDomain:
		return "Unknown interview domain."
	case ErrUnknownDifficulty:
		return "Unknown difficulty level."
	case ErrQuestionPoolSmall:
		return "Not enough questions are available for this domain and difficulty."
	case ErrAnswerNotAnOption:
		return "The answer is not one of the question's options."
	case ErrQuestionOutOfRange:
		return "The question index is out of range."

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
