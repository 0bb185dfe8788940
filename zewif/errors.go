package zewif

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindTypeMismatch: an envelope's type-identity assertion is absent or
	// names a different entity type. Fatal for that entity's decode; the
	// value is never coerced.
	KindTypeMismatch Kind = "TypeMismatch"

	// KindMissingField: a required (Class I) field mandated by the entity's
	// schema is absent. Fatal for that entity's decode.
	KindMissingField Kind = "MissingRequiredField"

	// KindInvalidValue: a field is present but violates the schema (out of
	// range, wrong leaf kind, duplicate key).
	KindInvalidValue Kind = "InvalidValue"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier (e.g. ZEWIF-MODEL-001) naming the violated
// schema rule. Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
