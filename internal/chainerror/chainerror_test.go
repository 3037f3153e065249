package chainerror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(BadInput, "bad thing")
	assert.Equal(t, "BadInput: bad thing", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(Network, "dial failed", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "underlying failure")
}

func TestWrapAvoidsDoubleWrappingSameKind(t *testing.T) {
	inner := New(Timeout, "first")
	wrapped := Wrap(Timeout, "second", inner)
	assert.Same(t, inner, wrapped)
}

func TestWrapWrapsDifferentKind(t *testing.T) {
	inner := New(Timeout, "first")
	wrapped := Wrap(Network, "second", inner)
	assert.NotSame(t, inner, wrapped)
	assert.Equal(t, Network, wrapped.Kind)
}

func TestIs(t *testing.T) {
	err := New(SignatureMismatch, "mismatch")
	assert.True(t, Is(err, SignatureMismatch))
	assert.False(t, Is(err, BadInput))
	assert.False(t, Is(errors.New("plain"), BadInput))
}

func TestErrorsAsCompatibility(t *testing.T) {
	var target *Error
	err := Wrap(Protocol, "server said no", errors.New("rpc error"))
	require.True(t, errors.As(err, &target))
	assert.Equal(t, Protocol, target.Kind)
}

func TestKindStrings(t *testing.T) {
	kinds := []Kind{Network, Protocol, Timeout, InsufficientFunds, BadInput, SignatureMismatch, SecretUnavailable}
	for _, k := range kinds {
		assert.NotEqual(t, "Unknown", k.String())
	}
	assert.Equal(t, "Unknown", Kind(999).String())
}
