package orchestrator

import (
	"context"
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
)

// TrackPreview is one resolved-or-not row in a SyncPreview, capped to the
// first previewTrackLimit tracks of the playlist.
type TrackPreview struct {
	TrackName  string  `json:"track_name"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"` // "available" or "needs_download"
}

// SyncPreview is a read-only, non-mutating dry run of SyncPlaylist: it
// resolves every track against the media server exactly as a real sync
// would, but never downloads, writes a playlist, or wishlists anything.
type SyncPreview struct {
	PlaylistName        string         `json:"playlist_name"`
	TotalTracks         int            `json:"total_tracks"`
	AvailableInLibrary  int            `json:"available_in_library"`
	NeedsDownload       int            `json:"needs_download"`
	MatchPercentage     float64        `json:"match_percentage"`
	ConfidenceBreakdown map[string]int `json:"confidence_breakdown"`
	TracksPreview       []TrackPreview `json:"tracks_preview"`
}

// previewTrackLimit bounds how many per-track rows a SyncPreview returns,
// matching the "first 10" cap the operation is grounded on.
const previewTrackLimit = 10

// confidenceBucket labels a resolver confidence the same way quality's
// waterfall reasons about thresholds, for the preview's breakdown map.
func confidenceBucket(confidence float64) string {
	switch {
	case confidence >= 0.95:
		return "high"
	case confidence >= catalogExistenceThreshold:
		return "medium"
	case confidence > 0:
		return "low"
	default:
		return "none"
	}
}

// SyncPreview resolves playlistName against the media server without
// downloading, writing, or wishlisting anything — a dry run a caller can
// use to estimate how much of a sync would actually need the transfer
// daemon before triggering one.
func (o *Orchestrator) SyncPreview(ctx context.Context, playlistName string) (SyncPreview, error) {
	_, tracks, err := o.fetchPlaylist(ctx, playlistName)
	if err != nil {
		return SyncPreview{}, err
	}

	preview := SyncPreview{
		PlaylistName:        playlistName,
		TotalTracks:         len(tracks),
		ConfidenceBreakdown: map[string]int{"high": 0, "medium": 0, "low": 0, "none": 0},
	}

	for _, t := range tracks {
		resolved := o.resolveTrack(ctx, t.Name, t.Artists, catalog.ServerPrimary)
		preview.ConfidenceBreakdown[confidenceBucket(resolved.Confidence)]++

		status := "needs_download"
		if resolved.Item != nil {
			preview.AvailableInLibrary++
			status = "available"
		} else {
			preview.NeedsDownload++
		}

		if len(preview.TracksPreview) < previewTrackLimit {
			preview.TracksPreview = append(preview.TracksPreview, TrackPreview{
				TrackName:  t.Name,
				Confidence: resolved.Confidence,
				Status:     status,
			})
		}
	}

	if preview.TotalTracks > 0 {
		preview.MatchPercentage = float64(preview.AvailableInLibrary) / float64(preview.TotalTracks) * 100
	}

	return preview, nil
}

// LibrarySide summarizes one side of a LibraryComparison.
type LibrarySide struct {
	Playlists int `json:"playlists"`
	Artists   int `json:"artists,omitempty"`
	Albums    int `json:"albums,omitempty"`
	Tracks    int `json:"tracks"`
}

// SyncPotential estimates how much of the remote-provider catalog the
// media server could already satisfy versus how much a full sync would
// still need to download.
type SyncPotential struct {
	EstimatedMatches   int `json:"estimated_matches"`
	PotentialDownloads int `json:"potential_downloads"`
}

// LibraryComparison is a read-only side-by-side of the remote provider's
// total catalog against the media server's current library, independent
// of any single playlist.
type LibraryComparison struct {
	RemoteProvider LibrarySide   `json:"remote_provider"`
	MediaServer    LibrarySide   `json:"media_server"`
	SyncPotential  SyncPotential `json:"sync_potential"`
}

// LibraryComparison compares the remote provider's full catalog against
// the media server's library stats, without resolving a single track.
func (o *Orchestrator) LibraryComparison(ctx context.Context) (LibraryComparison, error) {
	playlists, err := o.provider.ListPlaylists(ctx)
	if err != nil {
		return LibraryComparison{}, fmt.Errorf("list remote playlists: %w", err)
	}

	var remoteTrackCount int
	for _, p := range playlists {
		tracks, err := o.provider.GetPlaylistTracks(ctx, p.ID)
		if err != nil {
			return LibraryComparison{}, fmt.Errorf("fetch tracks for playlist %q: %w", p.Name, err)
		}
		remoteTrackCount += len(tracks)
	}

	stats, err := o.media.Backend().LibraryStats(ctx)
	if err != nil {
		return LibraryComparison{}, fmt.Errorf("media server library stats: %w", err)
	}
	mediaPlaylists, err := o.media.Backend().ListPlaylists(ctx)
	if err != nil {
		return LibraryComparison{}, fmt.Errorf("list media server playlists: %w", err)
	}

	estimatedMatches := remoteTrackCount
	if stats.TrackCount < estimatedMatches {
		estimatedMatches = stats.TrackCount
	}
	potentialDownloads := remoteTrackCount - stats.TrackCount
	if potentialDownloads < 0 {
		potentialDownloads = 0
	}

	return LibraryComparison{
		RemoteProvider: LibrarySide{Playlists: len(playlists), Tracks: remoteTrackCount},
		MediaServer: LibrarySide{
			Playlists: len(mediaPlaylists),
			Artists:   stats.ArtistCount,
			Albums:    stats.AlbumCount,
			Tracks:    stats.TrackCount,
		},
		SyncPotential: SyncPotential{
			EstimatedMatches:   estimatedMatches,
			PotentialDownloads: potentialDownloads,
		},
	}, nil
}
