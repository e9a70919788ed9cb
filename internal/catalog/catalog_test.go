package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "catalog.duckdb"),
		BusyTimeout:    30 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 100 * time.Millisecond,
	}
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertAndGetArtist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.UpsertArtist(ctx, Artist{ID: "a1", Name: "The Beatles", ServerSource: ServerPrimary})
	if err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}

	got, err := store.GetArtist(ctx, "a1", ServerPrimary)
	if err != nil {
		t.Fatalf("GetArtist() error = %v", err)
	}
	if got == nil || got.Name != "The Beatles" {
		t.Fatalf("GetArtist() = %+v, want name The Beatles", got)
	}
}

func TestArtistAlbumTrackCascadeDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustUpsertChain(t, store, ctx)

	if err := store.DeleteArtist(ctx, "a1", ServerPrimary); err != nil {
		t.Fatalf("DeleteArtist() error = %v", err)
	}

	album, err := store.GetAlbum(ctx, "al1", ServerPrimary)
	if err != nil {
		t.Fatalf("GetAlbum() error = %v", err)
	}
	if album != nil {
		t.Errorf("expected album to cascade-delete, got %+v", album)
	}

	track, err := store.GetTrack(ctx, "t1", ServerPrimary)
	if err != nil {
		t.Fatalf("GetTrack() error = %v", err)
	}
	if track != nil {
		t.Errorf("expected track to cascade-delete, got %+v", track)
	}
}

func mustUpsertChain(t *testing.T, store *Store, ctx context.Context) {
	t.Helper()
	if err := store.UpsertArtist(ctx, Artist{ID: "a1", Name: "Pink Floyd", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}
	if err := store.UpsertAlbum(ctx, Album{ID: "al1", ArtistID: "a1", Title: "The Dark Side of the Moon", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertAlbum() error = %v", err)
	}
	if err := store.UpsertTrack(ctx, Track{ID: "t1", AlbumID: "al1", ArtistID: "a1", Title: "Time", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertTrack() error = %v", err)
	}
}

func TestCheckTrackExistsFindsDiacriticVariant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertArtist(ctx, Artist{ID: "a1", Name: "Subcarpati", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}
	if err := store.UpsertAlbum(ctx, Album{ID: "al1", ArtistID: "a1", Title: "Album", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertAlbum() error = %v", err)
	}
	if err := store.UpsertTrack(ctx, Track{ID: "t1", AlbumID: "al1", ArtistID: "a1", Title: "Jertfa", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertTrack() error = %v", err)
	}

	match, err := store.CheckTrackExists(ctx, "Jertfă", "Subcarpați", 0.7, ServerPrimary)
	if err != nil {
		t.Fatalf("CheckTrackExists() error = %v", err)
	}
	if match.Track == nil {
		t.Fatal("expected a match via diacritic-folded normalization")
	}
	if match.Confidence < 0.7 {
		t.Errorf("Confidence = %v, want >= 0.7", match.Confidence)
	}
}

func TestCheckAlbumCompleteness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustUpsertChain(t, store, ctx)

	owned, expected, complete, err := store.CheckAlbumCompleteness(ctx, "al1", 10, ServerPrimary)
	if err != nil {
		t.Fatalf("CheckAlbumCompleteness() error = %v", err)
	}
	if owned != 1 || expected != 10 || complete {
		t.Errorf("CheckAlbumCompleteness() = (%d, %d, %v), want (1, 10, false)", owned, expected, complete)
	}
}

func TestGetAlbumCompletionStatsBucketsByRatio(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertArtist(ctx, Artist{ID: "a1", Name: "Pink Floyd", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}

	if err := store.UpsertAlbum(ctx, Album{ID: "complete", ArtistID: "a1", Title: "Complete", TrackCount: 2, ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertAlbum() error = %v", err)
	}
	if err := store.UpsertTrack(ctx, Track{ID: "t1", AlbumID: "complete", ArtistID: "a1", Title: "One", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertTrack() error = %v", err)
	}
	if err := store.UpsertTrack(ctx, Track{ID: "t2", AlbumID: "complete", ArtistID: "a1", Title: "Two", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertTrack() error = %v", err)
	}

	if err := store.UpsertAlbum(ctx, Album{ID: "partial", ArtistID: "a1", Title: "Partial", TrackCount: 10, ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertAlbum() error = %v", err)
	}
	if err := store.UpsertTrack(ctx, Track{ID: "t3", AlbumID: "partial", ArtistID: "a1", Title: "Three", ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertTrack() error = %v", err)
	}

	if err := store.UpsertAlbum(ctx, Album{ID: "missing", ArtistID: "a1", Title: "Missing", TrackCount: 5, ServerSource: ServerPrimary}); err != nil {
		t.Fatalf("UpsertAlbum() error = %v", err)
	}

	stats, err := store.GetAlbumCompletionStats(ctx, "pink floyd", ServerPrimary)
	if err != nil {
		t.Fatalf("GetAlbumCompletionStats() error = %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("stats.Total = %d, want 3", stats.Total)
	}
	if stats.Complete != 1 {
		t.Errorf("stats.Complete = %d, want 1", stats.Complete)
	}
	if stats.Partial != 1 {
		t.Errorf("stats.Partial = %d, want 1", stats.Partial)
	}
	if stats.Missing != 1 {
		t.Errorf("stats.Missing = %d, want 1", stats.Missing)
	}
}

func TestWishlistDedupByNormalizedKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.RecordWishlistTrack(ctx, "Hey Jude", "The Beatles", WishlistTrack{
		ExternalTrackID: "ext-1",
		SourceType:      SourcePlaylist,
	})
	if err != nil {
		t.Fatalf("RecordWishlistTrack() error = %v", err)
	}
	err = store.RecordWishlistTrack(ctx, "hey jude", "the beatles", WishlistTrack{
		ExternalTrackID: "ext-2",
		SourceType:      SourcePlaylist,
	})
	if err != nil {
		t.Fatalf("RecordWishlistTrack() error = %v", err)
	}

	rows, err := store.ListWishlistTracks(ctx)
	if err != nil {
		t.Fatalf("ListWishlistTracks() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (duplicate should have been dropped)", len(rows))
	}
}

// TestRemoveWishlistDuplicatesKeepsOldest covers rows that predate
// RecordWishlistTrack's insert-time check — e.g. imported directly — where
// the normalized key collision was never caught on insert.
func TestRemoveWishlistDuplicatesKeepsOldest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insert := func(name, artist, externalID string) {
		t.Helper()
		_, err := store.conn.ExecContext(ctx, `
			INSERT INTO wishlist_tracks (
				id, external_track_id, retry_count, date_added, source_type, normalized_name, normalized_artist
			) VALUES (nextval('wishlist_tracks_id_seq'), ?, 0, CURRENT_TIMESTAMP, ?, ?, ?)
		`, externalID, string(SourcePlaylist), "hey jude", "the beatles")
		if err != nil {
			t.Fatalf("insert raw wishlist row: %v", err)
		}
	}

	insert("Hey Jude", "The Beatles", "oldest")
	insert("Hey Jude", "The Beatles", "newer")

	if err := store.RecordWishlistTrack(ctx, "Let It Be", "The Beatles", WishlistTrack{SourceType: SourcePlaylist}); err != nil {
		t.Fatalf("RecordWishlistTrack() error = %v", err)
	}

	removed, err := store.RemoveWishlistDuplicates(ctx)
	if err != nil {
		t.Fatalf("RemoveWishlistDuplicates() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	rows, err := store.ListWishlistTracks(ctx)
	if err != nil {
		t.Fatalf("ListWishlistTracks() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (one deduped pair plus the distinct track)", len(rows))
	}
	for _, r := range rows {
		if r.NormalizedName == "hey jude" && r.ExternalTrackID != "oldest" {
			t.Errorf("surviving duplicate has ExternalTrackID = %q, want %q (oldest by date_added)", r.ExternalTrackID, "oldest")
		}
	}
}

func TestClearServerDataScopedToSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustUpsertChain(t, store, ctx)
	if err := store.UpsertArtist(ctx, Artist{ID: "a2", Name: "Other", ServerSource: ServerSecondary}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}

	if err := store.ClearServerData(ctx, ServerPrimary); err != nil {
		t.Fatalf("ClearServerData() error = %v", err)
	}

	primary, err := store.GetArtist(ctx, "a1", ServerPrimary)
	if err != nil {
		t.Fatalf("GetArtist() error = %v", err)
	}
	if primary != nil {
		t.Errorf("expected primary-source artist removed, got %+v", primary)
	}

	secondary, err := store.GetArtist(ctx, "a2", ServerSecondary)
	if err != nil {
		t.Fatalf("GetArtist() error = %v", err)
	}
	if secondary == nil {
		t.Error("expected secondary-source artist untouched")
	}
}
