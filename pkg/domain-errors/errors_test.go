package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeSerialConflict, "range taken")
		assert.True(t, HasCode(err, CodeSerialConflict))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches nested code through wrap", func(t *testing.T) {
		inner := New(CodeInsufficientStock, "stock low")
		outer := Wrap(inner, CodeInternal, "commit failed")
		assert.True(t, HasCode(outer, CodeInsufficientStock))
		assert.Equal(t, CodeInternal, CodeOf(outer))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Empty(t, MessageOf(err))
	})

	t.Run("wrap keeps cause reachable", func(t *testing.T) {
		cause := errors.New("driver: bad connection")
		err := Wrap(cause, CodeUnavailable, "core banking unreachable")
		assert.True(t, Is(err, cause))
		assert.Equal(t, "core banking unreachable", MessageOf(err))
	})
}
