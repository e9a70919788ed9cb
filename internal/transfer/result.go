package transfer

// Quality is the coarse audio format bucket used by both the search
// pipeline and the quality filter (spec §3/§4.5).
type Quality string

const (
	QualityFLAC    Quality = "flac"
	QualityMP3     Quality = "mp3"
	QualityOGG     Quality = "ogg"
	QualityAAC     Quality = "aac"
	QualityWMA     Quality = "wma"
	QualityUnknown Quality = "unknown"
)

// audioExtensions is the set of extensions the response processor keeps;
// everything else is discarded before parsing (spec §4.4 step 5).
var audioExtensions = map[string]Quality{
	".mp3":  QualityMP3,
	".flac": QualityFLAC,
	".ogg":  QualityOGG,
	".aac":  QualityAAC,
	".wma":  QualityWMA,
	".wav":  QualityUnknown,
	".m4a":  QualityAAC,
}

// PeerStats captures the daemon-reported health of the peer offering a
// file, used by both quality scoring and the quality filter's tie-break.
type PeerStats struct {
	FreeSlots    bool
	UploadSpeed  int
	QueueLength  int
}

// ParsedMetadata is best-effort artist/title/album/track-number
// extraction from a raw filename, per spec §4.4 step 5.
type ParsedMetadata struct {
	Artist      string
	Title       string
	Album       string
	TrackNumber int
}

// TrackResult is one individual file offered by a peer.
type TrackResult struct {
	Username   string
	Filename   string
	Size       int64
	Bitrate    int
	DurationMS int64
	Quality    Quality
	Peer       PeerStats
	Parsed     ParsedMetadata
}

// AlbumResult is a directory of >=2 tracks from the same peer grouped
// together (spec §3's "Album constructed only when >=2 tracks share a
// directory").
type AlbumResult struct {
	Username       string
	DirectoryPath  string
	Title          string
	Artist         string
	TrackCount     int
	TotalSize      int64
	Tracks         []TrackResult
	DominantQuality Quality
	Year           int
	Peer           PeerStats
}

// SearchResults is the accumulated, grouped output of one search, per
// spec §4.4 steps 6-8.
type SearchResults struct {
	Tracks         []TrackResult
	Albums         []AlbumResult
	ResponsesSeen  int
}

// SearchProgress is reported to the caller's progress callback after each
// poll tick (spec §4.4 step 7).
type SearchProgress struct {
	CumulativeTracks    int
	CumulativeAlbums    int
	TotalResponsesSeen  int
}
