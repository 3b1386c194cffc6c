package channels

import (
	"context"
	"time"
)

// caller applies the bounded store timeout to every store call.
type caller struct {
	timeout time.Duration
}

func (c caller) read(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// write detaches from the caller's cancellation so an aborted request never
// interrupts a write that has already been issued.
func (c caller) write(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
}
