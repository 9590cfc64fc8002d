package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	reader := NewNonBlockingReader(strings.NewReader("  hello world  \nsecond\n"))

	line, err := reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)

	line, err = reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", line)
}

func TestReadLineCancelled(t *testing.T) {
	// A pipe-like reader that never yields data.
	blocked := make(chan struct{})
	t.Cleanup(func() { close(blocked) })
	reader := NewNonBlockingReader(blockingReader{blocked})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := reader.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

type blockingReader struct {
	done chan struct{}
}

func (b blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, nil
}

func TestNewNonBlockingReaderNilPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewNonBlockingReader(nil)
	})
}
