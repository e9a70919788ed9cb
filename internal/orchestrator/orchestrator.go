// Package orchestrator implements the sync pipeline (spec §4.6/§6): given
// a playlist descriptor, resolve every track against the media server's
// library, fill gaps through the transfer daemon, mirror the result back
// as a media-server playlist, and wishlist what could not be filled.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/mediaserver"
	"github.com/playlistbridge/playlistbridge/internal/quality"
	"github.com/playlistbridge/playlistbridge/internal/remoteprovider"
	"github.com/playlistbridge/playlistbridge/internal/transfer"
	"github.com/playlistbridge/playlistbridge/internal/wishlist"
)

// downloadMatchThreshold is the minimum match confidence a daemon search
// result must clear before it is considered for download (spec §4.6 step 3).
const downloadMatchThreshold = 0.7

// SyncResult summarizes one completed (or cancelled) sync.
type SyncResult struct {
	PlaylistName   string   `json:"playlist_name"`
	TotalTracks    int      `json:"total_tracks"`
	MatchedTracks  int      `json:"matched_tracks"`
	DownloadedNew  int      `json:"downloaded_new"`
	Wishlisted     int      `json:"wishlisted"`
	Errors         []string `json:"errors,omitempty"`
}

// Orchestrator is the C6 sync pipeline. It holds no per-sync state between
// calls other than the in-flight set used to reject concurrent syncs of
// the same playlist name.
type Orchestrator struct {
	media        *mediaserver.Adapter
	store        *catalog.Store
	wishlist     *wishlist.Service
	transferAdp  *transfer.Adapter
	provider     remoteprovider.PlaylistProvider
	cfg          config.PlaylistSyncConfig
	qualityCfg   config.QualityProfileConfig
	transferPath string

	bus        *progressBus
	supervisor *syncSupervisor

	inFlightMu sync.Mutex
	inFlight   map[string]context.CancelFunc
}

// New builds an Orchestrator. ctx governs the lifetime of the underlying
// supervisor tree, not of any individual sync.
func New(ctx context.Context, media *mediaserver.Adapter, store *catalog.Store, transferAdp *transfer.Adapter, provider remoteprovider.PlaylistProvider, cfg config.PlaylistSyncConfig, qualityCfg config.QualityProfileConfig, transferPath string) *Orchestrator {
	return &Orchestrator{
		media:        media,
		store:        store,
		wishlist:     wishlist.New(store),
		transferAdp:  transferAdp,
		provider:     provider,
		cfg:          cfg,
		qualityCfg:   qualityCfg,
		transferPath: transferPath,
		bus:          newProgressBus(),
		supervisor:   newSyncSupervisor(ctx),
		inFlight:     make(map[string]context.CancelFunc),
	}
}

// Subscribe exposes the progress event stream for the control surface.
func (o *Orchestrator) Subscribe(ctx context.Context) (<-chan SyncProgress, error) {
	return o.bus.Subscribe(ctx)
}

// CancelSync cancels a currently running sync by playlist name. It is a
// no-op (false) if no sync for that name is in flight.
func (o *Orchestrator) CancelSync(playlistName string) bool {
	o.inFlightMu.Lock()
	defer o.inFlightMu.Unlock()

	cancel, ok := o.inFlight[playlistName]
	if !ok {
		return false
	}
	cancel()
	return true
}

// SyncPlaylist runs the full pipeline for one playlist, per spec §6's
// inbound contract. Concurrent calls for the same playlist name are
// rejected immediately rather than queued.
func (o *Orchestrator) SyncPlaylist(ctx context.Context, playlistName string, downloadMissing bool) (SyncResult, error) {
	o.inFlightMu.Lock()
	if _, busy := o.inFlight[playlistName]; busy {
		o.inFlightMu.Unlock()
		return SyncResult{}, fmt.Errorf("sync already in progress for playlist %q", playlistName)
	}
	syncCtx, cancel := context.WithCancel(ctx)
	o.inFlight[playlistName] = cancel
	o.inFlightMu.Unlock()

	defer func() {
		o.inFlightMu.Lock()
		delete(o.inFlight, playlistName)
		o.inFlightMu.Unlock()
		cancel()
	}()

	var result SyncResult
	o.supervisor.run(syncCtx, playlistName, func(ctx context.Context) {
		result = o.runPipeline(ctx, playlistName, downloadMissing)
	})
	return result, nil
}

func (o *Orchestrator) cancelled(ctx context.Context, playlistName string) (SyncResult, bool) {
	select {
	case <-ctx.Done():
		logging.Info().Str("playlist", playlistName).Msg("sync cancelled")
		return SyncResult{PlaylistName: playlistName, Errors: []string{"Sync cancelled"}}, true
	default:
		return SyncResult{}, false
	}
}

func (o *Orchestrator) publish(playlistName, step string, stepNumber int, currentTrack string, total, matched, failed, pct int) {
	o.bus.publish(SyncProgress{
		PlaylistName: playlistName,
		Step:         step,
		CurrentTrack: currentTrack,
		ProgressPct:  pct,
		StepNumber:   stepNumber,
		TotalSteps:   5,
		Total:        total,
		Matched:      matched,
		Failed:       failed,
	})
}

// runPipeline implements spec §4.6's five coarse steps, reporting progress
// at 10/20/60/70/80/100 percent and checking for cancellation at every
// coarse boundary and per-track within the resolution loop.
func (o *Orchestrator) runPipeline(ctx context.Context, playlistName string, downloadMissing bool) SyncResult {
	result := SyncResult{PlaylistName: playlistName}

	o.publish(playlistName, "fetching_playlist", 1, "", 0, 0, 0, 10)
	if r, cancelled := o.cancelled(ctx, playlistName); cancelled {
		return r
	}

	_, tracks, err := o.fetchPlaylist(ctx, playlistName)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if len(tracks) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("playlist %q has no tracks", playlistName))
		return result
	}
	result.TotalTracks = len(tracks)

	o.publish(playlistName, "resolving_tracks", 2, "", len(tracks), 0, 0, 20)

	matchedItems := make([]*mediaserver.LibraryItem, 0, len(tracks))
	unmatched := make([]remoteprovider.Track, 0)
	matched, failed := 0, 0

	for _, t := range tracks {
		if r, cancelled := o.cancelled(ctx, playlistName); cancelled {
			return r
		}

		resolved := o.resolveTrack(ctx, t.Name, t.Artists, catalog.ServerPrimary)
		if resolved.Item != nil {
			matched++
			if !resolved.Item.IsFileMatch {
				matchedItems = append(matchedItems, resolved.Item)
			}
		} else {
			failed++
			unmatched = append(unmatched, t)
		}

		pct := 20 + (matched+failed)*40/len(tracks)
		o.publish(playlistName, "resolving_tracks", 2, t.Name, len(tracks), matched, failed, pct)
	}
	result.MatchedTracks = matched

	o.publish(playlistName, "downloading_missing", 3, "", len(tracks), matched, failed, 60)
	if r, cancelled := o.cancelled(ctx, playlistName); cancelled {
		return r
	}

	stillMissing := unmatched
	if downloadMissing && o.transferAdp != nil {
		stillMissing = o.downloadMissingTracks(ctx, playlistName, unmatched, &result)
	}

	o.publish(playlistName, "writing_playlist", 4, "", len(tracks), matched, failed, 70)
	if r, cancelled := o.cancelled(ctx, playlistName); cancelled {
		return r
	}

	if err := o.writePlaylist(ctx, playlistName, matchedItems); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("write playlist: %v", err))
	}

	o.publish(playlistName, "wishlisting", 5, "", len(tracks), matched, failed, 80)
	o.wishlistTracks(ctx, playlistName, stillMissing, &result)

	o.publish(playlistName, "complete", 5, "", len(tracks), matched, failed, 100)
	return result
}

func (o *Orchestrator) fetchPlaylist(ctx context.Context, playlistName string) (*remoteprovider.Playlist, []remoteprovider.Track, error) {
	playlists, err := o.provider.ListPlaylists(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list remote playlists: %w", err)
	}

	var match *remoteprovider.Playlist
	for i := range playlists {
		if playlists[i].Name == playlistName {
			match = &playlists[i]
			break
		}
	}
	if match == nil {
		return nil, nil, fmt.Errorf("playlist %q not found on remote provider", playlistName)
	}

	tracks, err := o.provider.GetPlaylistTracks(ctx, match.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch tracks for playlist %q: %w", playlistName, err)
	}
	return match, tracks, nil
}

// downloadMissingTracks runs the "search and best-download" step (spec
// §4.6 step 3) for each unmatched track, pausing EnqueuePause between
// enqueues. Tracks that still have nothing downloadable stay in the
// returned slice for wishlisting.
func (o *Orchestrator) downloadMissingTracks(ctx context.Context, playlistName string, tracks []remoteprovider.Track, result *SyncResult) []remoteprovider.Track {
	stillMissing := make([]remoteprovider.Track, 0, len(tracks))

	for _, t := range tracks {
		if _, cancelled := o.cancelled(ctx, playlistName); cancelled {
			stillMissing = append(stillMissing, t)
			continue
		}

		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0]
		}

		query := t.Name
		if artist != "" {
			query = artist + " " + t.Name
		}

		searchResults, err := o.transferAdp.Search(ctx, transfer.SearchRequest{Text: query, MinimumOneFile: true}, nil)
		if err != nil {
			logging.Warn().Err(err).Str("track", t.Name).Msg("transfer search failed")
			stillMissing = append(stillMissing, t)
			continue
		}

		best := quality.BestMatch(searchResults.Tracks, t.Name, artist, downloadMatchThreshold, o.qualityCfg)
		if best == nil {
			stillMissing = append(stillMissing, t)
			continue
		}

		_, err = o.transferAdp.EnqueueDownload(ctx, best.Username, []transfer.DownloadFile{
			{Filename: best.Filename, Size: best.Size},
		})
		if err != nil {
			logging.Warn().Err(err).Str("track", t.Name).Str("peer", best.Username).Msg("enqueue download failed")
			stillMissing = append(stillMissing, t)
			continue
		}

		result.DownloadedNew++

		if o.cfg.EnqueuePause > 0 {
			select {
			case <-time.After(o.cfg.EnqueuePause):
			case <-ctx.Done():
			}
		}
	}

	return stillMissing
}

func (o *Orchestrator) writePlaylist(ctx context.Context, playlistName string, items []*mediaserver.LibraryItem) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	_, err := o.media.UpdatePlaylist(ctx, playlistName, ids, o.cfg.CreateBackup)
	return err
}

func (o *Orchestrator) wishlistTracks(ctx context.Context, playlistName string, tracks []remoteprovider.Track, result *SyncResult) {
	for _, t := range tracks {
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0]
		}

		fullPayload, err := json.Marshal(map[string]any{
			"title":   t.Name,
			"artists": t.Artists,
			"album":   t.Album,
		})
		if err != nil {
			logging.Warn().Err(err).Str("track", t.Name).Msg("marshal wishlist payload failed")
			result.Errors = append(result.Errors, fmt.Sprintf("wishlist %q: %v", t.Name, err))
			continue
		}
		sourceInfo, err := json.Marshal(map[string]any{"playlist_name": playlistName})
		if err != nil {
			logging.Warn().Err(err).Str("track", t.Name).Msg("marshal wishlist source info failed")
			result.Errors = append(result.Errors, fmt.Sprintf("wishlist %q: %v", t.Name, err))
			continue
		}

		if err := o.wishlist.Record(ctx, t.Name, artist, catalog.WishlistTrack{
			ExternalTrackID:  t.ID,
			FullTrackPayload: fullPayload,
			SourceType:       catalog.SourcePlaylist,
			SourceInfo:       sourceInfo,
		}); err != nil {
			logging.Warn().Err(err).Str("track", t.Name).Msg("wishlist track failed")
			result.Errors = append(result.Errors, fmt.Sprintf("wishlist %q: %v", t.Name, err))
			continue
		}
		result.Wishlisted++
	}
}
