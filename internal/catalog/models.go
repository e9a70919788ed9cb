package catalog

import "time"

// ServerSource identifies which configured media-server backend a row
// belongs to. It is immutable once a row is written.
type ServerSource string

const (
	ServerPrimary   ServerSource = "primary"
	ServerSecondary ServerSource = "secondary"
)

// SourceType classifies how a WishlistTrack entered the wishlist.
type SourceType string

const (
	SourcePlaylist SourceType = "playlist"
	SourceAlbum    SourceType = "album"
	SourceManual   SourceType = "manual"
	SourceUnknown  SourceType = "unknown"
)

// Artist mirrors one media-server artist row.
type Artist struct {
	ID           string
	Name         string
	Thumb        string
	Genres       []string
	Summary      string
	ServerSource ServerSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Album mirrors one media-server album row, cascading to Artist.
type Album struct {
	ID           string
	ArtistID     string
	Title        string
	Year         int
	Thumb        string
	Genres       []string
	TrackCount   int
	DurationMS   int64
	ServerSource ServerSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Track mirrors one media-server track row, cascading to Album and Artist.
type Track struct {
	ID           string
	AlbumID      string
	ArtistID     string
	Title        string
	TrackNumber  int
	DurationMS   int64
	FilePath     string
	Bitrate      int
	ServerSource ServerSource
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WatchlistArtist is a server-agnostic "follow this artist" entry that
// drives discovery, independent of any single server_source.
type WatchlistArtist struct {
	ID               int64
	ExternalArtistID string
	Name             string
	DateAdded        time.Time
	LastScan         *time.Time
	Image            string
	IncludeAlbums      bool
	IncludeEPs         bool
	IncludeSingles     bool
	IncludeLive        bool
	IncludeRemixes     bool
	IncludeAcoustic    bool
	IncludeCompilations bool
}

// WishlistTrack is a permanently-missing-track record, deduplicated by
// (normalized name, normalized primary artist) rather than by external id.
type WishlistTrack struct {
	ID                int64
	ExternalTrackID   string
	FullTrackPayload  []byte // raw JSON, opaque to the store
	FailureReason     string
	RetryCount        int
	LastAttempted     *time.Time
	DateAdded         time.Time
	SourceType        SourceType
	SourceInfo        []byte // raw JSON, opaque to the store

	// NormalizedName/NormalizedArtist are the dedup business key. They are
	// persisted (rather than recomputed on every read) so the uniqueness
	// constraint survives a future change to the normalization algorithm
	// without silently admitting duplicates written under the old rules.
	NormalizedName   string
	NormalizedArtist string
}

// SimilarArtist is one row of the discovery "similar artists" cache.
type SimilarArtist struct {
	ArtistID        string
	SimilarArtistID string
	SimilarName     string
	Score           float64
	CachedAt        time.Time
}

// DiscoveryPoolEntry is a candidate surfaced for the user to add to their
// watchlist, independent of any specific artist relation.
type DiscoveryPoolEntry struct {
	ID        int64
	Name      string
	Reason    string
	AddedDate time.Time
}

// RecentRelease is one row of the discovery "recent releases" cache.
type RecentRelease struct {
	ArtistID    string
	AlbumTitle  string
	ReleaseDate time.Time
	CachedAt    time.Time
}

// ListenBrainzCacheEntry memoizes a ListenBrainz lookup response keyed by
// the request it answers, with a TTL enforced by the caller at read time.
type ListenBrainzCacheEntry struct {
	Key       string
	Payload   []byte
	CachedAt  time.Time
}
