package wishlist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "catalog.duckdb"),
		BusyTimeout:    30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 100 * time.Millisecond,
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store)
}

func TestRecordAndListWishlistTrack(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	track := catalog.WishlistTrack{SourceType: catalog.SourcePlaylist}
	if err := svc.Record(ctx, "Time", "Pink Floyd", track); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() = %d rows, want 1", len(got))
	}
}

func TestRecordWishlistTrackDeduplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	track := catalog.WishlistTrack{SourceType: catalog.SourcePlaylist}
	if err := svc.Record(ctx, "Time", "Pink Floyd", track); err != nil {
		t.Fatalf("first Record() error = %v", err)
	}
	if err := svc.Record(ctx, "Time", "Pink Floyd", track); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() = %d rows, want 1 (duplicate collapsed)", len(got))
	}
}

func TestMarkAttemptAndRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, "Time", "Pink Floyd", catalog.WishlistTrack{SourceType: catalog.SourcePlaylist}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	rows, err := svc.List(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("List() = %v, %v", rows, err)
	}
	id := rows[0].ID

	if err := svc.MarkAttempt(ctx, id, "no matching peer"); err != nil {
		t.Fatalf("MarkAttempt() error = %v", err)
	}
	rows, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if rows[0].RetryCount != 1 || rows[0].FailureReason != "no matching peer" {
		t.Errorf("List()[0] = %+v, want RetryCount=1 FailureReason=no matching peer", rows[0])
	}

	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	rows, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("List() after Remove() = %d rows, want 0", len(rows))
	}
}
