package tracking

import (
	"fmt"
	"time"
)

type ErrorReason string

const ErrReasonValidationFailed ErrorReason = "ERR_VALIDATION_FAILED"
const ErrReasonBusAlreadyTracked ErrorReason = "ERR_BUS_ALREADY_TRACKED"
const ErrReasonInvalidSession ErrorReason = "ERR_INVALID_SESSION"
const ErrReasonStoreFailure ErrorReason = "ERR_STORE_FAILURE"

func (e ErrorReason) String() string {
	return string(e)
}

// ValidationError reports malformed or out-of-range input. It is always
// surfaced to the caller synchronously and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func IsValidationError(e error) bool {
	_, ok := e.(*ValidationError)
	return ok
}

// ConflictError reports that a claim lost against an existing session. It
// carries the existing session's identifying info so the caller can present
// "already tracked" information.
type ConflictError struct {
	BusNumber   string
	TrackerID   string
	LastUpdated time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bus '%s' is already tracked", e.BusNumber)
}

func IsConflictError(e error) bool {
	_, ok := e.(*ConflictError)
	return ok
}

// InvalidSessionError reports that an operation referenced a session that
// does not exist: already released, expired or swept. It is distinct from a
// transient store failure so callers can tell "this session is gone" from
// "try again".
type InvalidSessionError struct {
	SessionID string
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("session '%s' does not exist", e.SessionID)
}

func IsInvalidSessionError(e error) bool {
	_, ok := e.(*InvalidSessionError)
	return ok
}
