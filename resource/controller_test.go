package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferSlots(t *testing.T) {
	c := NewController(Config{MaxTransfers: 2})

	require.True(t, c.TryAcquireTransfer())
	require.True(t, c.TryAcquireTransfer())
	assert.Equal(t, int64(2), c.InFlight())

	assert.False(t, c.TryAcquireTransfer())

	c.ReleaseTransfer()
	assert.Equal(t, int64(1), c.InFlight())
	assert.True(t, c.TryAcquireTransfer())

	c.ReleaseTransfer()
	c.ReleaseTransfer()
	assert.Equal(t, int64(0), c.InFlight())
}

func TestAcquireTransferBlocksUntilRelease(t *testing.T) {
	c := NewController(Config{MaxTransfers: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquireTransfer(ctx))

	done := make(chan error, 1)
	go func() {
		done <- c.AcquireTransfer(ctx)
	}()

	select {
	case <-done:
		t.Fatal("second acquire should block while the slot is held")
	case <-time.After(20 * time.Millisecond):
	}

	c.ReleaseTransfer()
	require.NoError(t, <-done)
	c.ReleaseTransfer()
}

func TestAcquireTransferCanceled(t *testing.T) {
	c := NewController(Config{MaxTransfers: 1})
	require.True(t, c.TryAcquireTransfer())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.AcquireTransfer(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	c.ReleaseTransfer()
}

func TestDefaultMaxTransfers(t *testing.T) {
	c := NewController(Config{})

	require.True(t, c.TryAcquireTransfer())
	assert.False(t, c.TryAcquireTransfer())
	c.ReleaseTransfer()
}

func TestNilController(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireTransfer(context.Background()))
	assert.True(t, c.TryAcquireTransfer())
	c.ReleaseTransfer()
	assert.Equal(t, int64(0), c.InFlight())
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestAcquireIOUnlimited(t *testing.T) {
	c := NewController(Config{MaxTransfers: 1})

	start := time.Now()
	require.NoError(t, c.AcquireIO(context.Background(), 100<<20))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquireIOThrottles(t *testing.T) {
	// 1 KiB/s with a 1 KiB burst: the second full-burst acquire must wait.
	c := NewController(Config{MaxTransfers: 1, IOLimitBytesPerSec: 1024})
	ctx := context.Background()

	require.NoError(t, c.AcquireIO(ctx, 1024))

	start := time.Now()
	require.NoError(t, c.AcquireIO(ctx, 512))
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestAcquireIOLargerThanBurst(t *testing.T) {
	// A request above the burst must throttle in chunks, not error.
	c := NewController(Config{MaxTransfers: 1, IOLimitBytesPerSec: 1 << 20})

	require.NoError(t, c.AcquireIO(context.Background(), (1<<20)+4096))
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLimitedWriter(context.Background(), &buf, nil)

	n, err := lw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}

func TestLimitedReader(t *testing.T) {
	lr := NewLimitedReader(context.Background(), strings.NewReader("hello"), nil)

	data, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLimitedWriterCanceled(t *testing.T) {
	c := NewController(Config{MaxTransfers: 1, IOLimitBytesPerSec: 16})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	lw := NewLimitedWriter(ctx, &buf, c)

	_, err := lw.Write(bytes.Repeat([]byte("x"), 16))
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
