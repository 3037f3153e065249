// Package chainerror classifies every error the swap core can surface.
//
// Every public operation in this module returns either nil or an *Error so
// callers can errors.As into a single shape instead of pattern-matching on
// error strings. Transient network errors are retried only inside the
// watchers and the Electrum reconnect supervisor; nowhere else.
package chainerror

import "fmt"

// Kind classifies an Error for retry and reporting purposes.
type Kind int

const (
	// Network covers transport failure: TCP reset, TLS error, connection
	// refused. Retried by the Electrum supervisor.
	Network Kind = iota
	// Protocol covers HTTP non-200, a JSON-RPC error field, or malformed
	// JSON. Surfaced, never retried.
	Protocol
	// Timeout covers a deadline exceeded waiting for a confirmation or a
	// response. Terminal.
	Timeout
	// InsufficientFunds covers coin selection failing to cover target+fee.
	// Terminal; no broadcast happens.
	InsufficientFunds
	// BadInput covers a caller-provided key, script, or length that fails
	// validation. Terminal.
	BadInput
	// SignatureMismatch covers a derived P2PKH that does not match the
	// previous output's script. Terminal.
	SignatureMismatch
	// SecretUnavailable covers extract_secret finding no 32-byte push at
	// the expected script_sig position. Terminal for that call, but a swap
	// layer may retry against a different spending transaction.
	SecretUnavailable
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "Network"
	case Protocol:
		return "Protocol"
	case Timeout:
		return "Timeout"
	case InsufficientFunds:
		return "InsufficientFunds"
	case BadInput:
		return "BadInput"
	case SignatureMismatch:
		return "SignatureMismatch"
	case SecretUnavailable:
		return "SecretUnavailable"
	default:
		return "Unknown"
	}
}

// Error is the single error variant surfaced to callers. It carries a Kind
// tag, a human-readable message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error wrapping cause. If cause is already an *Error of
// the same kind, it is returned unchanged to avoid double-wrapping.
func Wrap(kind Kind, message string, cause error) *Error {
	if existing, ok := cause.(*Error); ok && existing.Kind == kind {
		return existing
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
