package apperror

import "errors"

// Kind classifies an error into one of the categories the HTTP layer knows
// how to report.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing input
	KindConflict               // uniqueness violation, caller may retry with fresh input
	KindNotFound               // referenced record absent
	KindUnavailable            // external collaborator unreachable or erroring
)

// Error carries a kind plus a human-readable message. Wrapping is preserved
// so callers can still errors.Is/As through it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Validation reports malformed input.
func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

// Conflict reports a uniqueness violation.
func Conflict(msg string, cause error) *Error { return newError(KindConflict, msg, cause) }

// NotFound reports an absent record.
func NotFound(msg string, cause error) *Error { return newError(KindNotFound, msg, cause) }

// Unavailable reports an external collaborator failure.
func Unavailable(msg string, cause error) *Error { return newError(KindUnavailable, msg, cause) }

// KindOf returns the kind of err, or (0, false) when err carries none.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
