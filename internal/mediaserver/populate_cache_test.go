package mediaserver

import (
	"context"
	"errors"
	"testing"
)

type fakeCacheBackend struct {
	NoopBackend

	audioPages []AudioPage
	audioErr   error

	albumPages []LibraryAlbum

	trackLookups map[string]*LibraryItem
	albumLookups map[string][]LibraryAlbum
}

func (f *fakeCacheBackend) FetchAudioPage(ctx context.Context, cursor string, pageSize int) (AudioPage, error) {
	if f.audioErr != nil {
		return AudioPage{}, f.audioErr
	}
	if len(f.audioPages) == 0 {
		return AudioPage{}, nil
	}
	page := f.audioPages[0]
	f.audioPages = f.audioPages[1:]
	return page, nil
}

func (f *fakeCacheBackend) FetchAlbumPage(ctx context.Context, cursor string, pageSize int) (AlbumPage, error) {
	return AlbumPage{Albums: f.albumPages}, nil
}

func (f *fakeCacheBackend) ListTracksForAlbum(ctx context.Context, albumID string) ([]LibraryItem, error) {
	if item, ok := f.trackLookups[albumID]; ok {
		return []LibraryItem{*item}, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeCacheBackend) ListAlbumsForArtist(ctx context.Context, artistID string) ([]LibraryAlbum, error) {
	return f.albumLookups[artistID], nil
}

func TestPopulateCachePopulatesTrackAndAlbumLookups(t *testing.T) {
	backend := &fakeCacheBackend{
		audioPages: []AudioPage{
			{Items: []LibraryItem{{ID: "t1", ParentAlbumID: "al1"}}, HasMore: false},
		},
		albumPages: []LibraryAlbum{{ID: "al1", ArtistID: "a1"}},
	}
	a := New(backend)

	if err := a.PopulateCache(context.Background(), nil); err != nil {
		t.Fatalf("PopulateCache() error = %v", err)
	}

	tracks, err := a.TracksForAlbum(context.Background(), "al1")
	if err != nil {
		t.Fatalf("TracksForAlbum() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("TracksForAlbum() = %+v, want [t1]", tracks)
	}

	item, err := a.TrackByID(context.Background(), "t1")
	if err != nil || item == nil {
		t.Fatalf("TrackByID() = (%v, %v)", item, err)
	}
}

func TestPopulateCacheAbortsAfterConsecutiveFailures(t *testing.T) {
	backend := &fakeCacheBackend{audioErr: errors.New("backend down")}
	a := New(backend)

	err := a.PopulateCache(context.Background(), nil)
	if err != nil {
		t.Fatalf("PopulateCache() error = %v, want nil (aborts gracefully after consecutive failures)", err)
	}
}

func TestTracksForAlbumFallsBackOnCacheMiss(t *testing.T) {
	backend := &fakeCacheBackend{
		trackLookups: map[string]*LibraryItem{"al1": {ID: "t1", ParentAlbumID: "al1"}},
	}
	a := New(backend)

	tracks, err := a.TracksForAlbum(context.Background(), "al1")
	if err != nil {
		t.Fatalf("TracksForAlbum() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("TracksForAlbum() = %+v, want [t1] from backend fallback", tracks)
	}
}

func TestAlbumsForArtistFallsBackOnCacheMiss(t *testing.T) {
	backend := &fakeCacheBackend{
		albumLookups: map[string][]LibraryAlbum{"a1": {{ID: "al1", ArtistID: "a1"}}},
	}
	a := New(backend)

	albums, err := a.AlbumsForArtist(context.Background(), "a1")
	if err != nil {
		t.Fatalf("AlbumsForArtist() error = %v", err)
	}
	if len(albums) != 1 || albums[0].ID != "al1" {
		t.Errorf("AlbumsForArtist() = %+v, want [al1]", albums)
	}
}
