package domain

import "errors"

// Ledger error kinds. Every failure returned by the ledger engine wraps
// exactly one of these, so callers classify with errors.Is.
var (
	// ErrValidation is returned when input is malformed or out of range
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a credential, PIN or session check fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a requested account does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create an account that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrIO is returned when the account mapping could not be persisted
	ErrIO = errors.New("persistence failure")
)

// Error is a ledger failure carrying a human-readable message.
// The message is what end users see; Kind is what code branches on.
type Error struct {
	Kind    error
	Message string
	cause   error
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind that also carries an underlying cause.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// Outcome converts an operation result into the (success, message) pair
// used by the outer adapters.
func Outcome(message string, err error) (bool, string) {
	if err == nil {
		return true, message
	}
	var de *Error
	if errors.As(err, &de) {
		return false, de.Message
	}
	return false, err.Error()
}
