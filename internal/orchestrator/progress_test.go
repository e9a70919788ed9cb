package orchestrator

import (
	"context"
	"testing"
	"time"
)

func TestProgressBusPublishSubscribe(t *testing.T) {
	bus := newProgressBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	bus.publish(SyncProgress{PlaylistName: "My Playlist", Step: "complete", ProgressPct: 100})

	select {
	case p := <-events:
		if p.PlaylistName != "My Playlist" || p.ProgressPct != 100 {
			t.Errorf("got %+v, want PlaylistName=My Playlist ProgressPct=100", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published progress event")
	}
}

func TestProgressBusMultipleSubscribersEachGetEvent(t *testing.T) {
	bus := newProgressBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventsA, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() (A) error = %v", err)
	}
	eventsB, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() (B) error = %v", err)
	}

	bus.publish(SyncProgress{PlaylistName: "X"})

	for name, ch := range map[string]<-chan SyncProgress{"A": eventsA, "B": eventsB} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %s did not receive the published event", name)
		}
	}
}
