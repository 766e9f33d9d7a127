package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration and input errors (not retryable)
const (
	// ErrCodeConfiguration indicates a missing or unusable credential or
	// configuration value. The calling operation cannot proceed until the
	// user configures the missing value.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates the input is invalid (caller bug).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodePermissionDenied indicates the device denied a capability
	// (e.g. microphone access). User-actionable.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// Provider errors
const (
	// ErrCodeProvider indicates a transport or HTTP failure from a single
	// provider attempt. Drives fallback inside the orchestrator and is only
	// surfaced as part of a composite failure.
	ErrCodeProvider ErrorCode = "PROVIDER_ERROR"
	// ErrCodeTranscription indicates every transcription provider was
	// exhausted. Carries both underlying causes.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeGeneration indicates the note-generation provider failed.
	ErrCodeGeneration ErrorCode = "GENERATION_FAILED"
	// ErrCodeRateLimited indicates the provider reported rate limiting.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource and access errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabase indicates a persistence error.
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeProvider:    true,
	ErrCodeRateLimited: true,
	ErrCodeTimeout:     true,
	ErrCodeDatabase:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
