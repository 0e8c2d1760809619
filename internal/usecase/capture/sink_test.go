package capture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkCollectsWrites(t *testing.T) {
	sink := NewSink()

	fmt.Fprintln(sink, "first line")
	fmt.Fprintln(sink, "second line")

	assert.Equal(t, "first line\nsecond line", sink.String())
}

func TestSinkTrimsTrailingWhitespace(t *testing.T) {
	sink := NewSink()

	_, err := sink.Write([]byte("  payload \n\t \n"))
	require.NoError(t, err)

	assert.Equal(t, "  payload", sink.String())
}

func TestSinkCloseBehavior(t *testing.T) {
	sink := NewSink()
	fmt.Fprint(sink, "before")

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	assert.True(t, sink.Closed())

	fmt.Fprint(sink, " after")
	assert.Equal(t, "before after", sink.String(), "writes after close are still collected")
}

func TestSinkEmpty(t *testing.T) {
	assert.Equal(t, "", NewSink().String())
}
