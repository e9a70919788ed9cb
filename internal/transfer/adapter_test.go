package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/config"
)

// fakeDaemonTransport is a minimal, fully-controllable DaemonTransport for
// exercising the adapter's behavior stack (retry, rate limit, polling)
// without a live slskd/Soulseek daemon.
type fakeDaemonTransport struct {
	mu sync.Mutex

	startSearchErr error
	searchID       string

	pollResponses [][]RawResponse // one slice per successive poll call
	pollCall      int
	pollErr       error

	enqueueID  string
	enqueueErr error

	history    []SearchHistoryEntry
	deletedIDs []string
}

func (f *fakeDaemonTransport) StartSearch(ctx context.Context, req SearchRequest) (string, error) {
	if f.startSearchErr != nil {
		return "", f.startSearchErr
	}
	return f.searchID, nil
}

func (f *fakeDaemonTransport) PollResponses(ctx context.Context, searchID string) ([]RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if f.pollCall >= len(f.pollResponses) {
		return nil, nil
	}
	r := f.pollResponses[f.pollCall]
	f.pollCall++
	return r, nil
}

func (f *fakeDaemonTransport) DeleteSearch(ctx context.Context, searchID string) error { return nil }

func (f *fakeDaemonTransport) EnqueueDownload(ctx context.Context, username string, files []DownloadFile) (string, error) {
	if f.enqueueErr != nil {
		return "", f.enqueueErr
	}
	return f.enqueueID, nil
}

func (f *fakeDaemonTransport) AllDownloads(ctx context.Context) ([]DownloadStatus, error) {
	return nil, nil
}
func (f *fakeDaemonTransport) CancelDownload(ctx context.Context, username, downloadID string) error {
	return nil
}
func (f *fakeDaemonTransport) ClearCompletedDownloads(ctx context.Context) error { return nil }

func (f *fakeDaemonTransport) ListSearchHistory(ctx context.Context) ([]SearchHistoryEntry, error) {
	return f.history, nil
}
func (f *fakeDaemonTransport) DeleteSearchHistory(ctx context.Context, searchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, searchID)
	return nil
}
func (f *fakeDaemonTransport) Session(ctx context.Context) error { return nil }

var _ DaemonTransport = (*fakeDaemonTransport)(nil)

func testConfig() *config.SoulseekConfig {
	return &config.SoulseekConfig{
		RateLimitMaxStarts:  100,
		RateLimitWindow:     time.Minute,
		SearchTimeoutBuffer: 0,
	}
}

func TestSearchAccumulatesTracksAcrossPolls(t *testing.T) {
	transport := &fakeDaemonTransport{
		searchID: "search-1",
		pollResponses: [][]RawResponse{
			{{Username: "peer1", Files: []RawFile{{Filename: "Pink Floyd - Time.flac", Size: 30_000_000, BitRate: 1000}}}},
		},
	}
	a := New(transport, testConfig())

	results, err := a.Search(context.Background(), SearchRequest{TimeoutMS: 1500}, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results.Tracks) != 1 {
		t.Fatalf("results.Tracks = %+v, want 1 track", results.Tracks)
	}
	if results.ResponsesSeen != 1 {
		t.Errorf("results.ResponsesSeen = %d, want 1", results.ResponsesSeen)
	}
}

func TestSearchSkipsIgnoredUsers(t *testing.T) {
	transport := &fakeDaemonTransport{
		searchID: "search-1",
		pollResponses: [][]RawResponse{
			{{Username: "BadPeer", Files: []RawFile{{Filename: "Pink Floyd - Time.flac", Size: 1000, BitRate: 320}}}},
		},
	}
	cfg := testConfig()
	cfg.IgnoredUsers = []string{"badpeer"}
	a := New(transport, cfg)

	results, err := a.Search(context.Background(), SearchRequest{TimeoutMS: 1500}, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results.Tracks) != 0 {
		t.Errorf("results.Tracks = %+v, want none (ignored user)", results.Tracks)
	}
}

func TestSearchFiltersBlacklistedTitles(t *testing.T) {
	transport := &fakeDaemonTransport{
		searchID: "search-1",
		pollResponses: [][]RawResponse{
			{{Username: "peer1", Files: []RawFile{
				{Filename: "Pink Floyd - Time (Live Bootleg).flac", Size: 1000, BitRate: 320},
				{Filename: "Pink Floyd - Time.flac", Size: 1000, BitRate: 320},
			}}},
		},
	}
	cfg := testConfig()
	cfg.TitleBlacklist = []string{"bootleg"}
	a := New(transport, cfg)

	results, err := a.Search(context.Background(), SearchRequest{TimeoutMS: 1500}, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results.Tracks) != 1 {
		t.Fatalf("results.Tracks = %+v, want 1 track (bootleg filtered)", results.Tracks)
	}
}

func TestSearchStartFailurePropagates(t *testing.T) {
	transport := &fakeDaemonTransport{startSearchErr: errors.New("daemon unreachable")}
	a := New(transport, testConfig())

	_, err := a.Search(context.Background(), SearchRequest{TimeoutMS: 500}, nil)
	if err == nil {
		t.Fatal("Search() error = nil, want propagated start-search failure")
	}
}

func TestCancelSearchStopsPollLoop(t *testing.T) {
	transport := &fakeDaemonTransport{searchID: "search-1"}
	a := New(transport, testConfig())

	done := make(chan SearchResults, 1)
	go func() {
		results, _ := a.Search(context.Background(), SearchRequest{TimeoutMS: 60_000}, nil)
		done <- results
	}()

	time.Sleep(50 * time.Millisecond)
	a.CancelSearch("search-1")

	select {
	case results := <-done:
		if len(results.Tracks) != 0 {
			t.Errorf("results.Tracks = %+v, want empty after cancel", results.Tracks)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Search() did not return promptly after CancelSearch")
	}
}

func TestEnqueueDownloadFallsBackToFilenameOnEmptyID(t *testing.T) {
	transport := &fakeDaemonTransport{enqueueID: ""}
	a := New(transport, testConfig())

	id, err := a.EnqueueDownload(context.Background(), "peer1", []DownloadFile{{Filename: "Time.flac"}})
	if err != nil {
		t.Fatalf("EnqueueDownload() error = %v", err)
	}
	if id != "Time.flac" {
		t.Errorf("EnqueueDownload() = %q, want filename fallback", id)
	}
}

func TestEnqueueDownloadEmptyFilesIsNoop(t *testing.T) {
	transport := &fakeDaemonTransport{}
	a := New(transport, testConfig())

	id, err := a.EnqueueDownload(context.Background(), "peer1", nil)
	if err != nil || id != "" {
		t.Errorf("EnqueueDownload(nil files) = (%q, %v), want (\"\", nil)", id, err)
	}
}

func TestPruneSearchHistoryDeletesOldestBeyondKeep(t *testing.T) {
	history := make([]SearchHistoryEntry, 250)
	for i := range history {
		history[i] = SearchHistoryEntry{ID: string(rune('a' + i%26)) + string(rune(i)), StartedAt: int64(i)}
	}
	transport := &fakeDaemonTransport{history: history}
	cfg := testConfig()
	cfg.SearchHistoryTrigger = 200
	cfg.SearchHistoryKeep = 50
	a := New(transport, cfg)

	if err := a.PruneSearchHistory(context.Background()); err != nil {
		t.Fatalf("PruneSearchHistory() error = %v", err)
	}
	if len(transport.deletedIDs) != 200 {
		t.Errorf("deletedIDs = %d, want 200 (250 - keep 50)", len(transport.deletedIDs))
	}
}

func TestPruneSearchHistoryNoopBelowTrigger(t *testing.T) {
	transport := &fakeDaemonTransport{history: make([]SearchHistoryEntry, 10)}
	cfg := testConfig()
	cfg.SearchHistoryTrigger = 200
	a := New(transport, cfg)

	if err := a.PruneSearchHistory(context.Background()); err != nil {
		t.Fatalf("PruneSearchHistory() error = %v", err)
	}
	if len(transport.deletedIDs) != 0 {
		t.Errorf("deletedIDs = %d, want 0 below trigger", len(transport.deletedIDs))
	}
}
