package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(Validation("bad input"))
	assert.True(t, ok)
	assert.Equal(t, KindValidation, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = KindOf(nil)
	assert.False(t, ok)
}

func TestKindSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("entity not found", nil))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Unavailable("vies service unavailable", cause)
	assert.Equal(t, "vies service unavailable: timeout", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "nif is required", Validation("nif is required").Error())
}
