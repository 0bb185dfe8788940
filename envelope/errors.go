package envelope

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Leaf-level failures surface as codec.Error with codec.KindMalformedLeaf;
// this package's kinds cover tree structure.
type Kind string

const (
	// KindMalformedEncoding covers truncated, structurally invalid, or
	// non-canonical tree encodings. Always fatal to the decode of that
	// subtree; never silently repaired.
	KindMalformedEncoding Kind = "MalformedEncoding"

	// KindMissingVendor is raised when an attachment is constructed without
	// a vendor identifier. Raised at construction time, not encode time.
	KindMissingVendor Kind = "MissingVendor"

	// KindInvalidOperation covers transforms applied to envelopes that do
	// not support them (e.g. unwrapping a leaf, compressing an elided node).
	KindInvalidOperation Kind = "InvalidOperation"

	KindInternal Kind = "Internal"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier (e.g. ZEWIF-ENC-001) naming the violated
// invariant. Message is intended for humans; do not match on it.
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
