package mediaserver

import (
	"context"
	"errors"
	"testing"
)

// fakePlaylistBackend embeds NoopBackend (every method fails by default)
// and overrides only what each test exercises.
type fakePlaylistBackend struct {
	NoopBackend

	existing *PlaylistDescriptor

	createErr  error
	createdIDs [][]string
	nextID     int

	appendErr    error
	appendCalls  int
	appendFailAt int

	deleteErr     error
	deletedIDs    []string
	copyErr       error
	copyID        string
}

func (f *fakePlaylistBackend) GetPlaylistByName(ctx context.Context, name string) (*PlaylistDescriptor, error) {
	return f.existing, nil
}

func (f *fakePlaylistBackend) CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdIDs = append(f.createdIDs, trackIDs)
	f.nextID++
	return "new-playlist-id", nil
}

func (f *fakePlaylistBackend) AppendToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	f.appendCalls++
	if f.appendErr != nil && f.appendCalls == f.appendFailAt {
		return f.appendErr
	}
	return nil
}

func (f *fakePlaylistBackend) DeletePlaylist(ctx context.Context, playlistID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, playlistID)
	return nil
}

func (f *fakePlaylistBackend) CopyPlaylist(ctx context.Context, sourceID, destName string) (string, error) {
	if f.copyErr != nil {
		return "", f.copyErr
	}
	return f.copyID, nil
}

func validHexID(n byte) string {
	const hex = "0123456789abcdef"
	id := make([]byte, 32)
	for i := range id {
		id[i] = hex[(int(n)+i)%16]
	}
	return string(id)
}

func TestCreatePlaylistBatchedSingleBatch(t *testing.T) {
	backend := &fakePlaylistBackend{}
	a := New(backend)

	ids := []string{validHexID(1), validHexID(2)}
	result, err := a.CreatePlaylistBatched(context.Background(), "My Playlist", ids)
	if err != nil {
		t.Fatalf("CreatePlaylistBatched() error = %v", err)
	}
	if result.ID != "new-playlist-id" {
		t.Errorf("result.ID = %q, want new-playlist-id", result.ID)
	}
	if result.AppendFailures != 0 {
		t.Errorf("result.AppendFailures = %d, want 0", result.AppendFailures)
	}
	if backend.appendCalls != 0 {
		t.Errorf("appendCalls = %d, want 0 (small playlist created directly with ids)", backend.appendCalls)
	}
}

func TestCreatePlaylistBatchedSplitsLargePlaylists(t *testing.T) {
	backend := &fakePlaylistBackend{}
	a := New(backend)

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = validHexID(byte(i))
	}

	result, err := a.CreatePlaylistBatched(context.Background(), "Big Playlist", ids)
	if err != nil {
		t.Fatalf("CreatePlaylistBatched() error = %v", err)
	}
	if backend.appendCalls != 3 {
		t.Errorf("appendCalls = %d, want 3 (250 ids / 100 per batch)", backend.appendCalls)
	}
	if result.AppendFailures != 0 {
		t.Errorf("result.AppendFailures = %d, want 0", result.AppendFailures)
	}
}

func TestCreatePlaylistBatchedContinuesAfterBatchFailure(t *testing.T) {
	backend := &fakePlaylistBackend{appendErr: errors.New("batch failed"), appendFailAt: 2}
	a := New(backend)

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = validHexID(byte(i))
	}

	result, err := a.CreatePlaylistBatched(context.Background(), "Big Playlist", ids)
	if err != nil {
		t.Fatalf("CreatePlaylistBatched() error = %v, want success despite one batch failing", err)
	}
	if result.AppendFailures != 1 {
		t.Errorf("result.AppendFailures = %d, want 1", result.AppendFailures)
	}
	if backend.appendCalls != 3 {
		t.Errorf("appendCalls = %d, want all 3 batches attempted", backend.appendCalls)
	}
}

func TestCreatePlaylistBatchedDropsInvalidIDs(t *testing.T) {
	backend := &fakePlaylistBackend{}
	a := New(backend)

	ids := []string{validHexID(1), "not-a-valid-id"}
	_, err := a.CreatePlaylistBatched(context.Background(), "My Playlist", ids)
	if err != nil {
		t.Fatalf("CreatePlaylistBatched() error = %v", err)
	}
	if len(backend.createdIDs) != 1 || len(backend.createdIDs[0]) != 1 {
		t.Fatalf("createdIDs = %v, want exactly the one valid id passed through", backend.createdIDs)
	}
}

func TestUpdatePlaylistRecreatesExisting(t *testing.T) {
	backend := &fakePlaylistBackend{existing: &PlaylistDescriptor{ID: "old-id", Name: "My Playlist"}}
	a := New(backend)

	_, err := a.UpdatePlaylist(context.Background(), "My Playlist", []string{validHexID(1)}, false)
	if err != nil {
		t.Fatalf("UpdatePlaylist() error = %v", err)
	}
	if len(backend.deletedIDs) != 1 || backend.deletedIDs[0] != "old-id" {
		t.Errorf("deletedIDs = %v, want [old-id]", backend.deletedIDs)
	}
}

func TestUpdatePlaylistPreservesBackupOnRecreateFailure(t *testing.T) {
	backend := &fakePlaylistBackend{
		existing: &PlaylistDescriptor{ID: "old-id", Name: "My Playlist"},
		copyID:   "backup-id",
		createErr: errors.New("create failed"),
	}
	a := New(backend)

	_, err := a.UpdatePlaylist(context.Background(), "My Playlist", []string{validHexID(1)}, true)
	if err == nil {
		t.Fatal("UpdatePlaylist() error = nil, want propagated create failure")
	}
	for _, deleted := range backend.deletedIDs {
		if deleted == "backup-id" {
			t.Fatal("backup playlist was deleted despite recreation failing")
		}
	}
}

func TestUpdatePlaylistDeletesBackupOnSuccess(t *testing.T) {
	backend := &fakePlaylistBackend{
		existing: &PlaylistDescriptor{ID: "old-id", Name: "My Playlist"},
		copyID:   "backup-id",
	}
	a := New(backend)

	_, err := a.UpdatePlaylist(context.Background(), "My Playlist", []string{validHexID(1)}, true)
	if err != nil {
		t.Fatalf("UpdatePlaylist() error = %v", err)
	}

	found := false
	for _, deleted := range backend.deletedIDs {
		if deleted == "backup-id" {
			found = true
		}
	}
	if !found {
		t.Errorf("deletedIDs = %v, want backup-id deleted after success", backend.deletedIDs)
	}
}
