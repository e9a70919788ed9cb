// Package transfer drives the out-of-process peer-to-peer transfer daemon
// (C4): rate-limited search submission, poll-and-diff result streaming,
// download enqueue/status/cancel, and search-history maintenance.
package transfer

import "context"

// SearchRequest starts one daemon-side search.
type SearchRequest struct {
	Text          string
	TimeoutMS     int
	MinimumOneFile bool
}

// RawResponse is one unprocessed daemon search response — a single peer's
// file listing for a search id, before filename parsing and grouping.
type RawResponse struct {
	Username string
	Files    []RawFile
}

// RawFile is one file entry inside a daemon search response, as returned
// over the wire — duration in seconds, unprocessed filename/path.
type RawFile struct {
	Filename string
	Size     int64
	BitRate  int
	DurationSeconds int
	FreeSlots       bool
	UploadSpeed     int
	QueueLength     int
}

// DownloadFile is one file the caller wants the daemon to fetch.
type DownloadFile struct {
	Filename string
	Size     int64
	Path     string
}

// DownloadStatus mirrors the daemon's download state verbatim (spec §4.4).
type DownloadStatus struct {
	ID       string
	Username string
	Filename string
	State    string
	PercentComplete float64
	BytesTransferred int64
	Size             int64
}

// SearchHistoryEntry is one row of the daemon's search log, used by
// PruneSearchHistory to decide what to delete.
type SearchHistoryEntry struct {
	ID        string
	StartedAt int64 // unix seconds
}

// DaemonTransport is the out-of-scope "specified interface" boundary per
// spec §1/§6 — no concrete slskd wire client lives in this package, only
// the contract the adapter drives and the behavior layered on top of it.
type DaemonTransport interface {
	// StartSearch submits a new search and returns the daemon-assigned id.
	StartSearch(ctx context.Context, req SearchRequest) (searchID string, err error)

	// PollResponses returns every response the daemon has accumulated for
	// searchID so far (not just new ones since the last call — diffing is
	// the adapter's job, spec §4.4 step 4).
	PollResponses(ctx context.Context, searchID string) ([]RawResponse, error)

	// DeleteSearch issues a best-effort cleanup of a search the adapter is
	// done polling, used both on normal completion and on cancellation.
	DeleteSearch(ctx context.Context, searchID string) error

	// EnqueueDownload submits files for one username to the primary
	// download endpoint. The adapter calls it once per enqueue (retried
	// only on a 429) and tries no fallback endpoints or payload shapes.
	EnqueueDownload(ctx context.Context, username string, files []DownloadFile) (downloadID string, err error)

	// AllDownloads returns every in-flight/completed download the daemon
	// currently tracks, flattened from its user -> directories -> files
	// nested shape.
	AllDownloads(ctx context.Context) ([]DownloadStatus, error)

	// CancelDownload removes one queued/in-progress download.
	CancelDownload(ctx context.Context, username, downloadID string) error

	// ClearCompletedDownloads removes every completed download record.
	ClearCompletedDownloads(ctx context.Context) error

	// ListSearchHistory returns every search the daemon still remembers,
	// used by PruneSearchHistory.
	ListSearchHistory(ctx context.Context) ([]SearchHistoryEntry, error)

	// DeleteSearchHistory removes a specific historical search record.
	DeleteSearchHistory(ctx context.Context, searchID string) error

	// Session reports whether the daemon considers itself authenticated
	// and reachable.
	Session(ctx context.Context) error
}
