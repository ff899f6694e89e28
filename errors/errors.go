// Package errors provides error handling for the beacon access core.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check classified access failures
//	if errors.Is(err, errors.ErrUnauthorized) {
//	    // map to 401
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors forming the access-failure taxonomy. The transport layer
// maps these to HTTP statuses; the core only classifies.
//
// Credential failures split three ways: a credential that cannot be read at
// all (ErrMalformedCredential), a credential that was read but fails
// verification (ErrInvalidCredential), and a key-retrieval failure for the
// primary credential (ErrKeyUnavailable). The last is a server-side fault:
// the service cannot assert anything about the credential, which is not the
// same as the credential being bad.
var (
	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrUnauthorized indicates the request lacks valid authentication
	ErrUnauthorized = New("unauthorized")

	// ErrForbidden indicates the request is not allowed for this user
	ErrForbidden = New("forbidden")

	// ErrMalformedCredential indicates a credential that could not be parsed
	// (bad scheme, unparsable token). Unauthorized-class.
	ErrMalformedCredential = Wrap(ErrUnauthorized, "malformed credential")

	// ErrInvalidCredential indicates a parsed credential that failed
	// verification (signature, issuer, audience, expiry). Unauthorized-class.
	ErrInvalidCredential = Wrap(ErrUnauthorized, "invalid credential")

	// ErrKeyUnavailable indicates the service could not obtain the key
	// material needed to verify the primary credential. Server-side fault.
	ErrKeyUnavailable = New("verification key unavailable")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// IsUnauthorized checks if an error is or wraps ErrUnauthorized. Both
// malformed and invalid credential errors satisfy this.
func IsUnauthorized(err error) bool {
	return err != nil && Is(err, ErrUnauthorized)
}

// IsForbidden checks if an error is or wraps ErrForbidden
func IsForbidden(err error) bool {
	return err != nil && Is(err, ErrForbidden)
}

// IsKeyUnavailable checks if an error is or wraps ErrKeyUnavailable
func IsKeyUnavailable(err error) bool {
	return err != nil && Is(err, ErrKeyUnavailable)
}

// IsInvalidRequest checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequest(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
