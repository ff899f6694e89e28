package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnauthorizedClassification(t *testing.T) {
	assert.True(t, IsUnauthorized(ErrUnauthorized))
	assert.True(t, IsUnauthorized(ErrMalformedCredential))
	assert.True(t, IsUnauthorized(ErrInvalidCredential))
	assert.True(t, IsUnauthorized(Wrap(ErrInvalidCredential, "token expired")))
	assert.False(t, IsUnauthorized(ErrForbidden))
	assert.False(t, IsUnauthorized(nil))
}

func TestKeyUnavailableIsNotUnauthorized(t *testing.T) {
	// A key-retrieval failure is a server fault, not a bad credential.
	err := Wrap(ErrKeyUnavailable, "jwks fetch failed")
	assert.True(t, IsKeyUnavailable(err))
	assert.False(t, IsUnauthorized(err))
}

func TestForbiddenClassification(t *testing.T) {
	assert.True(t, IsForbidden(Wrap(ErrForbidden, "no visible datasets")))
	assert.False(t, IsForbidden(ErrUnauthorized))
}

func TestInvalidRequestFormatting(t *testing.T) {
	err := NewInvalidRequestError("bad coordinate %d", 42)
	assert.True(t, IsInvalidRequest(err))
	assert.Contains(t, err.Error(), "bad coordinate 42")
}
