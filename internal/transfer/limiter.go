package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// slidingWindowLimiter enforces "at most maxStarts search starts within
// window", per spec §4.4 (default 35 starts / 220s). Grounded on
// derat/nup's ratelimit bookkeeping: drop timestamps older than the
// window, count what remains, wait for the oldest to age out when full.
// A mutex-guarded slice is sufficient for a single process-wide window —
// no external rate-limit library is warranted for one counter.
type slidingWindowLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	maxStarts int
	starts    []time.Time

	now func() time.Time
}

func newSlidingWindowLimiter(maxStarts int, window time.Duration) *slidingWindowLimiter {
	if maxStarts <= 0 {
		maxStarts = 35
	}
	if window <= 0 {
		window = 220 * time.Second
	}
	return &slidingWindowLimiter{
		maxStarts: maxStarts,
		window:    window,
		now:       time.Now,
	}
}

// Await blocks until a new search start is permitted, records its
// timestamp, and returns. Ctx cancellation aborts the wait.
func (l *slidingWindowLimiter) Await(ctx context.Context) error {
	waitStart := l.now()
	for {
		l.mu.Lock()
		now := l.now()
		cutoff := now.Add(-l.window)
		kept := l.starts[:0]
		for _, t := range l.starts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		l.starts = kept

		if len(l.starts) < l.maxStarts {
			l.starts = append(l.starts, now)
			l.mu.Unlock()
			if waited := now.Sub(waitStart); waited > 0 {
				metrics.DaemonRateLimitWaitSeconds.Observe(waited.Seconds())
			}
			return nil
		}

		oldest := l.starts[0]
		waitFor := oldest.Add(l.window).Sub(now)
		l.mu.Unlock()

		if waitFor <= 0 {
			continue
		}
		select {
		case <-time.After(waitFor):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
