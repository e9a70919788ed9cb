package transfer

import (
	"context"
	"testing"
	"time"
)

func TestSlidingWindowLimiterAllowsUpToMax(t *testing.T) {
	l := newSlidingWindowLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Await(ctx); err != nil {
			t.Fatalf("Await() #%d error = %v", i, err)
		}
	}
	if len(l.starts) != 3 {
		t.Fatalf("len(starts) = %d, want 3", len(l.starts))
	}
}

func TestSlidingWindowLimiterEvictsExpiredStarts(t *testing.T) {
	base := time.Now()
	cur := base
	l := newSlidingWindowLimiter(1, 10*time.Second)
	l.now = func() time.Time { return cur }

	ctx := context.Background()
	if err := l.Await(ctx); err != nil {
		t.Fatalf("first Await() error = %v", err)
	}

	cur = base.Add(11 * time.Second)
	if err := l.Await(ctx); err != nil {
		t.Fatalf("Await() after window elapsed error = %v", err)
	}
	if len(l.starts) != 1 {
		t.Fatalf("len(starts) = %d, want 1 (expired start evicted)", len(l.starts))
	}
}

func TestSlidingWindowLimiterRespectsContextCancellation(t *testing.T) {
	l := newSlidingWindowLimiter(1, time.Hour)
	ctx := context.Background()
	if err := l.Await(ctx); err != nil {
		t.Fatalf("first Await() error = %v", err)
	}

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Await(cancelledCtx); err == nil {
		t.Fatal("Await() on exhausted limiter with cancelled context, want error")
	}
}

func TestSlidingWindowLimiterDefaults(t *testing.T) {
	l := newSlidingWindowLimiter(0, 0)
	if l.maxStarts != 35 {
		t.Errorf("maxStarts = %d, want default 35", l.maxStarts)
	}
	if l.window != 220*time.Second {
		t.Errorf("window = %v, want default 220s", l.window)
	}
}
