package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for retrieval and agent operations.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates an empty or malformed query. Rejected
	// immediately, never retried.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeRetrievalUnavailable indicates an embedding or index call failed.
	// Callers treat this as "no candidates", not as a crash.
	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	// ErrCodeUnparseableModelOutput indicates the generative model returned
	// text that is not the expected structured shape. Always handled by a
	// deterministic fallback; never surfaced to the end user.
	ErrCodeUnparseableModelOutput ErrorCode = "UNPARSEABLE_MODEL_OUTPUT"
	// ErrCodeNoResults is a legitimate, non-exceptional outcome.
	ErrCodeNoResults ErrorCode = "NO_RESULTS"
	// ErrCodeLLMUnavailable indicates the generative model call failed.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeUnexpectedResponseShape indicates an embedding payload that
	// matched none of the known response shapes.
	ErrCodeUnexpectedResponseShape ErrorCode = "UNEXPECTED_RESPONSE_SHAPE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// CoreError is a structured error carrying a stable code.
type CoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// InvalidInput creates an invalid input error.
func InvalidInput(msg string) *CoreError {
	return &CoreError{Code: ErrCodeInvalidInput, Message: msg}
}

// RetrievalUnavailable wraps an upstream embedding/index failure.
func RetrievalUnavailable(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeRetrievalUnavailable, Message: msg, Cause: cause}
}

// UnparseableModelOutput wraps a model-output parse failure.
func UnparseableModelOutput(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeUnparseableModelOutput, Message: msg, Cause: cause}
}

// NoResults creates a no-results outcome.
func NoResults(msg string) *CoreError {
	return &CoreError{Code: ErrCodeNoResults, Message: msg}
}

// LLMUnavailable wraps a generative model failure.
func LLMUnavailable(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// UnexpectedResponseShape creates an embedding payload shape error.
func UnexpectedResponseShape(msg string) *CoreError {
	return &CoreError{Code: ErrCodeUnexpectedResponseShape, Message: msg}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// CodeOf extracts the error code, or returns defaultCode for foreign errors.
func CodeOf(err error, defaultCode ErrorCode) ErrorCode {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return defaultCode
}
