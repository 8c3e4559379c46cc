package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := New(KindInvalidPassword, "Senha inválida")

	assert.Equal(t, "Senha inválida", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidPassword))
	assert.False(t, errors.Is(err, ErrNotRegistered))
	assert.Equal(t, KindInvalidPassword, KindOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("sign in: %w", Wrap(KindTransport, "fora do ar", cause))

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "validation_error", Validationf("campo %s", "x").(*Error).Kind.String())
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger("loud", "")
	assert.Error(t, err)

	logger, err := NewLogger("debug", "")
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}
