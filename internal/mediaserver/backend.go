package mediaserver

import "context"

// LibraryItem is the polymorphic "track" object per spec §9: one shape
// for both Plex- and Jellyfin-sourced rows, and for the filesystem-tier
// synthetic placeholder the three-tier resolver can produce.
type LibraryItem struct {
	ID             string
	Title          string
	DurationMS     int64
	Bitrate        int
	FilePath       string
	ParentAlbumID  string
	ParentArtistID string

	// IsFileMatch marks a synthetic placeholder discovered by the
	// resolver's filesystem tier. Placeholders never participate in
	// playlist writes (spec §4.7) — they only suppress re-downloads.
	IsFileMatch bool
}

// LibraryArtist is a backend-agnostic artist row returned by ListAllArtists.
type LibraryArtist struct {
	ID     string
	Name   string
	Thumb  string
	Genres []string
}

// LibraryAlbum is a backend-agnostic album row.
type LibraryAlbum struct {
	ID         string
	ArtistID   string
	Title      string
	Year       int
	TrackCount int
	DurationMS int64
}

// PlaylistDescriptor names a playlist this backend already knows about.
type PlaylistDescriptor struct {
	ID        string
	Name      string
	TrackIDs  []string
}

// LibraryStats summarizes one backend's music library.
type LibraryStats struct {
	ArtistCount int
	AlbumCount  int
	TrackCount  int
}

// AudioPage is one page of the bulk audio-item listing used by aggressive
// cache population.
type AudioPage struct {
	Items      []LibraryItem
	NextCursor string
	HasMore    bool
}

// AlbumPage is one page of the bulk album listing.
type AlbumPage struct {
	Albums     []LibraryAlbum
	NextCursor string
	HasMore    bool
}

// Backend is the out-of-scope "specified interface" boundary per spec
// §1/§4.3 — no concrete Plex/Jellyfin/Navidrome wire client lives in this
// package, only this contract and the adapter built on top of it.
type Backend interface {
	Name() string

	DiscoverMusicLibraries(ctx context.Context) ([]string, error)
	SelectLibraryByName(ctx context.Context, name string) error

	ListAllArtists(ctx context.Context) ([]LibraryArtist, error)
	ListAlbumsForArtist(ctx context.Context, artistID string) ([]LibraryAlbum, error)
	ListTracksForAlbum(ctx context.Context, albumID string) ([]LibraryItem, error)

	LookupArtistByID(ctx context.Context, id string) (*LibraryArtist, error)
	LookupAlbumByID(ctx context.Context, id string) (*LibraryAlbum, error)
	LookupTrackByID(ctx context.Context, id string) (*LibraryItem, error)

	ListRecentlyAddedAlbums(ctx context.Context, limit int) ([]LibraryAlbum, error)
	ListRecentlyUpdatedAlbums(ctx context.Context, limit int) ([]LibraryAlbum, error)
	ListRecentlyAddedTracks(ctx context.Context, limit int) ([]LibraryItem, error)
	ListRecentlyUpdatedTracks(ctx context.Context, limit int) ([]LibraryItem, error)

	LibraryStats(ctx context.Context) (LibraryStats, error)

	ListPlaylists(ctx context.Context) ([]PlaylistDescriptor, error)
	GetPlaylistByName(ctx context.Context, name string) (*PlaylistDescriptor, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]LibraryItem, error)
	CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error)
	AppendToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	DeletePlaylist(ctx context.Context, playlistID string) error
	CopyPlaylist(ctx context.Context, sourceID, destName string) (string, error)

	TriggerScan(ctx context.Context) error
	IsScanning(ctx context.Context) (bool, error)

	UpdateArtistPoster(ctx context.Context, artistID, imageURL string) error
	UpdateAlbumPoster(ctx context.Context, albumID, imageURL string) error
	NeedsUpdateByAge(ctx context.Context, id string, maxAge int64) (bool, error)
	IsIgnored(ctx context.Context, id string) (bool, error)

	// FetchAudioPage and FetchAlbumPage back the aggressive cache
	// population pass (cache.go); cursor is "" on the first call.
	FetchAudioPage(ctx context.Context, cursor string, pageSize int) (AudioPage, error)
	FetchAlbumPage(ctx context.Context, cursor string, pageSize int) (AlbumPage, error)

	// ResolveFileToID attempts to map a filesystem path discovered by the
	// resolver's Tier 2 to a real backend id; ok is false when the
	// backend cannot perform this lookup, in which case the caller falls
	// back to a synthetic placeholder.
	ResolveFileToID(ctx context.Context, filePath string) (id string, ok bool, err error)
}

// MetadataOnlyModeSetter is implemented by backends that can skip the
// aggressive cache population pass and serve metadata-only responses
// instead (spec §4.3's "unless metadata-only mode is set").
type MetadataOnlyModeSetter interface {
	SetMetadataOnlyMode(enabled bool)
}

// MetadataSearcher is an optional capability a Backend may implement: a
// direct server-side metadata search by title/artist, used by the
// three-tier resolver's Tier 1 probe (spec §4.7). Not every backend
// protocol exposes this, so the resolver type-asserts for it rather than
// requiring it on Backend itself.
type MetadataSearcher interface {
	SearchTrackByArtist(ctx context.Context, title, artist string) (*LibraryItem, bool, error)
}
