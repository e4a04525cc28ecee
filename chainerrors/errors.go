// Package chainerrors implements the error taxonomy of the core: five
// failure classes (Transient, Input-invalid, Block-invalid,
// Consistency, Configuration), each a distinct Go type so callers can
// dispatch on class with errors.As rather than string matching.
package chainerrors

import "github.com/pkg/errors"

// Kind identifies a failure class.
type Kind uint8

const (
	KindTransient Kind = iota
	KindInputInvalid
	KindBlockInvalid
	KindConsistency
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindInputInvalid:
		return "input-invalid"
	case KindBlockInvalid:
		return "block-invalid"
	case KindConsistency:
		return "consistency"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a failure Kind and, for
// block-invalid errors, whether the offending peer should be banned
// (only cryptographic/structural cases warrant a ban).
type Error struct {
	Kind    Kind
	Ban     bool
	cause   error
	message string
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, ban bool, message string, cause error) *Error {
	return &Error{Kind: kind, Ban: ban, message: message, cause: cause}
}

// Transient wraps a recoverable, retry-or-drop failure (peer timeout,
// mempool full, RPC rate limit).
func Transient(message string, cause error) *Error {
	return newErr(KindTransient, false, message, cause)
}

// InputInvalid wraps a rejected input (bad signature, bad nonce,
// unknown sender) that is non-fatal to the node.
func InputInvalid(message string, cause error) *Error {
	return newErr(KindInputInvalid, false, message, cause)
}

// BlockInvalid wraps a rejected block. ban is true only for
// cryptographic/structural invalidity, never for out-of-order or
// duplicate blocks.
func BlockInvalid(message string, ban bool, cause error) *Error {
	return newErr(KindBlockInvalid, ban, message, cause)
}

// Consistency wraps a fatal-to-the-current-operation invariant
// violation (state-root mismatch on an idempotent import, missing VC
// initialization). The caller must abort the block, never corrupt
// state.
func Consistency(message string, cause error) *Error {
	return newErr(KindConsistency, false, message, cause)
}

// Configuration wraps a startup failure that should exit the process
// with a non-zero code.
func Configuration(message string, cause error) *Error {
	return newErr(KindConfiguration, false, message, cause)
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ShouldBan reports whether err (if a block-invalid error) warrants
// banning the peer that sent it.
func ShouldBan(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindBlockInvalid && e.Ban
	}
	return false
}

// Wrap is a thin re-export of pkg/errors.Wrap for packages that only
// need context, not a Kind classification.
func Wrap(err error, message string) error { return errors.Wrap(err, message) }

// Wrapf is a thin re-export of pkg/errors.Wrapf.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
