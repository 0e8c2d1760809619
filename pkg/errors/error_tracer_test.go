package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerFromError(t *testing.T) {
	t.Run("plain error gains a stack", func(t *testing.T) {
		tracer := TracerFromError(fmt.Errorf("boom"))

		assert.Equal(t, "boom", tracer.Error())
		assert.NotNil(t, tracer.StackTrace())
	})

	t.Run("existing stack is preserved", func(t *testing.T) {
		original := pkgerrors.New("boom")
		tracer := TracerFromError(original)

		assert.Same(t, original, tracer.Unwrap())
	})
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	tracer := NewTracer("outer").Wrap(inner)

	assert.Equal(t, "outer", tracer.Error())
	require.NotNil(t, tracer.Unwrap())
	assert.ErrorIs(t, tracer, inner)
	assert.NotNil(t, tracer.StackTrace())
}
