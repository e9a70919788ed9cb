package orchestrator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/mediaserver"
	"github.com/playlistbridge/playlistbridge/internal/remoteprovider"
	"github.com/playlistbridge/playlistbridge/internal/transfer"
)

type fakeProvider struct {
	playlists []remoteprovider.Playlist
	tracks    map[string][]remoteprovider.Track
}

func (f *fakeProvider) ListPlaylists(ctx context.Context) ([]remoteprovider.Playlist, error) {
	return f.playlists, nil
}

func (f *fakeProvider) GetPlaylistTracks(ctx context.Context, playlistID string) ([]remoteprovider.Track, error) {
	return f.tracks[playlistID], nil
}

func newTestOrchestrator(t *testing.T, provider remoteprovider.PlaylistProvider) *Orchestrator {
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

	media := mediaserver.New(mediaserver.NoopBackend{})
	transferAdp := transfer.New(transfer.NoopTransport{}, &config.SoulseekConfig{})

	ctx := context.Background()
	return New(ctx, media, store, transferAdp, provider,
		config.PlaylistSyncConfig{}, config.QualityProfileConfig{}, t.TempDir())
}

func TestSyncPlaylistNotFoundOnProvider(t *testing.T) {
	provider := &fakeProvider{}
	o := newTestOrchestrator(t, provider)

	result, err := o.SyncPlaylist(context.Background(), "Missing Playlist", false)
	if err != nil {
		t.Fatalf("SyncPlaylist() error = %v, want nil (errors are reported in result)", err)
	}
	if len(result.Errors) == 0 {
		t.Fatal("result.Errors is empty, want an error about the playlist not being found")
	}
}

func TestSyncPlaylistWishlistsUnmatchedTracks(t *testing.T) {
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

	result, err := o.SyncPlaylist(context.Background(), "My Playlist", true)
	if err != nil {
		t.Fatalf("SyncPlaylist() error = %v", err)
	}
	if result.TotalTracks != 2 {
		t.Errorf("result.TotalTracks = %d, want 2", result.TotalTracks)
	}
	if result.MatchedTracks != 0 {
		t.Errorf("result.MatchedTracks = %d, want 0 (no backend configured)", result.MatchedTracks)
	}
	if result.Wishlisted != 2 {
		t.Errorf("result.Wishlisted = %d, want 2 (both tracks unmatched and undownloadable)", result.Wishlisted)
	}

	rows, err := o.wishlist.List(context.Background())
	if err != nil {
		t.Fatalf("wishlist.List() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("wishlist rows = %d, want 2", len(rows))
	}
}

func TestSyncPlaylistRejectsConcurrentSameName(t *testing.T) {
	provider := &fakeProvider{
		playlists: []remoteprovider.Playlist{{ID: "p1", Name: "My Playlist"}},
		tracks: map[string][]remoteprovider.Track{
			"p1": {{ID: "t1", Name: "Time", Artists: []string{"Pink Floyd"}}},
		},
	}
	o := newTestOrchestrator(t, provider)

	o.inFlightMu.Lock()
	o.inFlight["My Playlist"] = func() {}
	o.inFlightMu.Unlock()

	_, err := o.SyncPlaylist(context.Background(), "My Playlist", false)
	if err == nil {
		t.Fatal("SyncPlaylist() error = nil, want rejection of concurrent same-name sync")
	}
}

func TestCancelSyncReportsNoSyncInProgress(t *testing.T) {
	o := newTestOrchestrator(t, &fakeProvider{})
	if o.CancelSync("nonexistent") {
		t.Fatal("CancelSync() = true, want false for a playlist with no in-flight sync")
	}
}
