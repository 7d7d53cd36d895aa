package sleep

import (
	"context"
	"time"
)

// Sweep advances every known session to now, so sessions with no traffic
// still age through their natural transitions (AWAKE→DROWSY, DROWSY→SLEEPING,
// WOKEN_UP decay-back).
func (e *Engine) Sweep(now time.Time) {
	for _, key := range e.keys() {
		e.withSession(key, func(rec *SessionRecord) {
			e.advance(rec, now)
		})
	}
}

// RunSweeper runs the periodic sweep until ctx is done. The interval is
// independent of message traffic; once per minute is plenty since all
// transitions are also recomputed lazily on every inbound message.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(e.clock())
		}
	}
}
