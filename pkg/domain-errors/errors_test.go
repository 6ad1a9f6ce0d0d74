package derrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeDuplicateEmail, "email already registered")
		assert.True(t, HasCode(err, CodeDuplicateEmail))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches wrapped code anywhere in chain", func(t *testing.T) {
		inner := New(CodeNotFound, "property missing")
		outer := Wrap(inner, CodeInternal, "lookup failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeNotFound))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeForbidden, "not allowed"))
		assert.True(t, HasCode(err, CodeForbidden))
	})

	t.Run("false for uncoded errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeIncompleteForm, CodeOf(New(CodeIncompleteForm, "missing fields")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// Outermost code wins when wrapped.
	err := Wrap(New(CodeNotFound, "missing"), CodeInternal, "load failed")
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("sql: no rows")
	err := Wrap(cause, CodeNotFound, "document not found")
	assert.ErrorIs(t, err, cause)
}
