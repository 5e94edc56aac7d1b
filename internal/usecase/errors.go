package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrorNotFound        ErrorCode = "NOT_FOUND"
	ErrorInternal        ErrorCode = "INTERNAL_ERROR"
)

// Error is the failure type returned by every MessageService operation.
// Reason is a stable machine-readable tag; Message is meant for callers.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s): %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("usecase: %s (%s): %s: %v", e.Code, e.Reason, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

func invalidID() *Error {
	return newError(ErrorInvalidArgument, "invalid_id", "Invalid ID", nil)
}

func notFound(id, action string) *Error {
	msg := fmt.Sprintf("Message with id=%s not found", id)
	if action != "" {
		msg += ". Couldn't " + action + "."
	}
	return newError(ErrorNotFound, "message_not_found", msg, nil)
}
