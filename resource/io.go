package resource

import (
	"context"
	"io"
)

// LimitedWriter wraps an io.Writer with the controller's IO limit.
type LimitedWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

// NewLimitedWriter creates a rate-limited writer.
func NewLimitedWriter(ctx context.Context, w io.Writer, c *Controller) *LimitedWriter {
	return &LimitedWriter{ctx: ctx, w: w, c: c}
}

func (lw *LimitedWriter) Write(p []byte) (int, error) {
	if err := lw.c.AcquireIO(lw.ctx, len(p)); err != nil {
		return 0, err
	}
	return lw.w.Write(p)
}

// LimitedReader wraps an io.Reader with the controller's IO limit.
// The wait is based on the buffer size, the upper bound of the read.
type LimitedReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

// NewLimitedReader creates a rate-limited reader.
func NewLimitedReader(ctx context.Context, r io.Reader, c *Controller) *LimitedReader {
	return &LimitedReader{ctx: ctx, r: r, c: c}
}

func (lr *LimitedReader) Read(p []byte) (int, error) {
	if err := lr.c.AcquireIO(lr.ctx, len(p)); err != nil {
		return 0, err
	}
	return lr.r.Read(p)
}
