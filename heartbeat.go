package photozip

import (
	"context"
	"fmt"
	"time"

	"github.com/sagarc03/photozip/internal/clock"
)

const (
	// DefaultHeartbeatToken is the reserved token that selects the heartbeat stream.
	DefaultHeartbeatToken = "7kna"
	// DefaultHeartbeatInterval is the pause between heartbeat lines.
	DefaultHeartbeatInterval = time.Second

	heartbeatLayout = "2006-01-02 15:04:05"
)

// Heartbeat writes a timestamp line per interval for as long as the
// client stays connected. It is used to check long-lived connection
// behavior through proxies.
type Heartbeat struct {
	interval time.Duration
	clock    clock.Clock
}

// NewHeartbeat creates a Heartbeat. A non-positive interval falls back to
// DefaultHeartbeatInterval and a nil clock to the real one.
func NewHeartbeat(interval time.Duration, c clock.Clock) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if c == nil {
		c = clock.Real()
	}
	return &Heartbeat{interval: interval, clock: c}
}

// Run writes lines until ctx is cancelled or a write fails, and returns
// the cause. It never returns nil.
func (h *Heartbeat) Run(ctx context.Context, w ChunkWriter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := h.clock.Now().Format(heartbeatLayout) + "<br>\n"
		if _, err := w.Write([]byte(line)); err != nil {
			return fmt.Errorf("write heartbeat: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush heartbeat: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.clock.After(h.interval):
		}
	}
}
