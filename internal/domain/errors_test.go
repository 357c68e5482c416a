package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_DomainError(t *testing.T) {
	err := E(KindConflict, "email already registered")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "email already registered", err.Error())
}

func TestKindOf_WrappedDomainError(t *testing.T) {
	err := fmt.Errorf("register: %w", E(KindNotFound, "user not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOf_PlainError_IsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(KindInternal, "could not send verification email", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not send verification email", err.Error())
}

func TestIsKind(t *testing.T) {
	err := E(KindInvalidToken, "invalid or expired token")
	assert.True(t, IsKind(err, KindInvalidToken))
	assert.False(t, IsKind(err, KindUnauthorized))
	assert.False(t, IsKind(errors.New("boom"), KindInvalidToken))
}
