package orchestrator

import (
	"context"
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/remoteprovider"
)

func TestSyncPreviewReportsUnmatchedTracksWithoutWishlisting(t *testing.T) {
	provider := &fakeProvider{
		playlists: []remoteprovider.Playlist{{ID: "p1", Name: "My Playlist"}},
		tracks: map[string][]remoteprovider.Track{
			"p1": {
				{ID: "t1", Name: "Time", Artists: []string{"Pink Floyd"}},
				{ID: "t2", Name: "Money", Artists: []string{"Pink Floyd"}},
			},
		},
	}
	o := newTestOrchestrator(t, provider)

	preview, err := o.SyncPreview(context.Background(), "My Playlist")
	if err != nil {
		t.Fatalf("SyncPreview() error = %v", err)
	}
	if preview.TotalTracks != 2 {
		t.Errorf("preview.TotalTracks = %d, want 2", preview.TotalTracks)
	}
	if preview.NeedsDownload != 2 || preview.AvailableInLibrary != 0 {
		t.Errorf("preview = %+v, want 2 tracks needing download and 0 available (no backend configured)", preview)
	}
	if len(preview.TracksPreview) != 2 {
		t.Errorf("len(preview.TracksPreview) = %d, want 2", len(preview.TracksPreview))
	}

	rows, err := o.wishlist.List(context.Background())
	if err != nil {
		t.Fatalf("wishlist.List() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("wishlist rows = %d, want 0 — SyncPreview must never wishlist anything", len(rows))
	}
}

func TestSyncPreviewUnknownPlaylist(t *testing.T) {
	o := newTestOrchestrator(t, &fakeProvider{})

	if _, err := o.SyncPreview(context.Background(), "Nonexistent"); err == nil {
		t.Fatal("SyncPreview() error = nil, want an error for an unknown playlist")
	}
}

func TestSyncPreviewTrackPreviewCappedAtLimit(t *testing.T) {
	tracks := make([]remoteprovider.Track, 0, previewTrackLimit+5)
	for i := 0; i < previewTrackLimit+5; i++ {
		tracks = append(tracks, remoteprovider.Track{ID: "t", Name: "Track", Artists: []string{"Artist"}})
	}
	provider := &fakeProvider{
		playlists: []remoteprovider.Playlist{{ID: "p1", Name: "Big Playlist"}},
		tracks:    map[string][]remoteprovider.Track{"p1": tracks},
	}
	o := newTestOrchestrator(t, provider)

	preview, err := o.SyncPreview(context.Background(), "Big Playlist")
	if err != nil {
		t.Fatalf("SyncPreview() error = %v", err)
	}
	if preview.TotalTracks != len(tracks) {
		t.Errorf("preview.TotalTracks = %d, want %d", preview.TotalTracks, len(tracks))
	}
	if len(preview.TracksPreview) != previewTrackLimit {
		t.Errorf("len(preview.TracksPreview) = %d, want %d", len(preview.TracksPreview), previewTrackLimit)
	}
}

func TestLibraryComparisonFailsWithoutMediaBackend(t *testing.T) {
	provider := &fakeProvider{
		playlists: []remoteprovider.Playlist{{ID: "p1", Name: "My Playlist"}},
		tracks: map[string][]remoteprovider.Track{
			"p1": {{ID: "t1", Name: "Time", Artists: []string{"Pink Floyd"}}},
		},
	}
	o := newTestOrchestrator(t, provider)

	if _, err := o.LibraryComparison(context.Background()); err == nil {
		t.Fatal("LibraryComparison() error = nil, want an error since NoopBackend never resolves library stats")
	}
}
