package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/match"
	"github.com/playlistbridge/playlistbridge/internal/mediaserver"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// resolvedTrack is the three-tier resolver's result: a real or synthetic
// library item and the confidence the resolver assigned it.
type resolvedTrack struct {
	Item       *mediaserver.LibraryItem
	Confidence float64
}

// filesystemTrackThreshold is the confidence assigned to a Tier 2
// filesystem placeholder match (spec §4.7).
const filesystemTrackThreshold = 0.95

// catalogExistenceThreshold is the confidence floor for Tier 3 (spec §4.7
// explicitly names 0.7).
const catalogExistenceThreshold = 0.7

var audioFileExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".aac": true, ".wma": true, ".wav": true, ".m4a": true,
}

// resolveTrack runs the three-tier resolver for one requested track
// (title, artists) per spec §4.7: remote-API probe, filesystem probe,
// catalog lookup, in that order, returning the first hit.
func (o *Orchestrator) resolveTrack(ctx context.Context, title string, artists []string, source catalog.ServerSource) resolvedTrack {
	if r, ok := o.resolveTier1(ctx, title, artists); ok {
		metrics.ResolverTierHits.WithLabelValues("api").Inc()
		return r
	}

	if r, ok := o.resolveTier2(title, artists); ok {
		metrics.ResolverTierHits.WithLabelValues("filesystem").Inc()
		return r
	}

	// catalog.CheckTrackExists already records its own "catalog" tier hit
	// internally, so resolveTier3's success is not counted again here.
	if r, ok := o.resolveTier3(ctx, title, artists, source); ok {
		return r
	}

	metrics.ResolverTierHits.WithLabelValues("miss").Inc()
	return resolvedTrack{}
}

// resolveTier1 probes the media server's direct metadata search, if the
// wrapped backend supports it, iterating artists and returning the first
// hit at full confidence.
func (o *Orchestrator) resolveTier1(ctx context.Context, title string, artists []string) (resolvedTrack, bool) {
	searcher, ok := o.media.Backend().(mediaserver.MetadataSearcher)
	if !ok {
		return resolvedTrack{}, false
	}

	for _, artist := range artists {
		item, found, err := searcher.SearchTrackByArtist(ctx, title, artist)
		if err != nil {
			logging.Debug().Err(err).Str("title", title).Str("artist", artist).Msg("tier 1 metadata search failed")
			continue
		}
		if found && item != nil {
			return resolvedTrack{Item: item, Confidence: 1.0}, true
		}
	}
	return resolvedTrack{}, false
}

// resolveTier2 walks the configured transfer-path filesystem tree,
// per-artist subfolders first, matching any audio file whose lower-cased
// name contains the normalized title. It never touches the network.
func (o *Orchestrator) resolveTier2(title string, artists []string) (resolvedTrack, bool) {
	if o.transferPath == "" {
		return resolvedTrack{}, false
	}

	normTitle := match.Normalize(title)
	if normTitle == "" {
		return resolvedTrack{}, false
	}

	for _, artist := range artists {
		if path, ok := findMatchingFile(filepath.Join(o.transferPath, artist), normTitle); ok {
			return o.fileMatchToResolved(path), true
		}
	}

	if path, ok := findMatchingFile(o.transferPath, normTitle); ok {
		return o.fileMatchToResolved(path), true
	}

	return resolvedTrack{}, false
}

func (o *Orchestrator) fileMatchToResolved(filePath string) resolvedTrack {
	if id, ok, err := o.media.Backend().ResolveFileToID(context.Background(), filePath); err == nil && ok {
		return resolvedTrack{
			Item:       &mediaserver.LibraryItem{ID: id, FilePath: filePath},
			Confidence: 1.0,
		}
	}

	return resolvedTrack{
		Item: &mediaserver.LibraryItem{
			FilePath:    filePath,
			IsFileMatch: true,
		},
		Confidence: filesystemTrackThreshold,
	}
}

// findMatchingFile walks root looking for the first audio file whose
// lower-cased basename contains normTitle. A missing or unreadable root
// is treated as a miss, not an error — the filesystem tier is best-effort.
func findMatchingFile(root, normTitle string) (string, bool) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", false
	}

	var found string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if found != "" {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !audioFileExtensions[ext] {
			return nil
		}
		name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if strings.Contains(name, normTitle) {
			found = path
		}
		return nil
	})

	return found, found != ""
}

// resolveTier3 calls the catalog's check_track_exists for each artist,
// returning the best match that clears the spec-mandated 0.7 threshold.
// When the backend needs a live object for a matched id, it is fetched;
// a fetch failure falls through to the next artist rather than failing
// the whole resolution.
func (o *Orchestrator) resolveTier3(ctx context.Context, title string, artists []string, source catalog.ServerSource) (resolvedTrack, bool) {
	best := resolvedTrack{}
	for _, artist := range artists {
		m, err := o.store.CheckTrackExists(ctx, title, artist, catalogExistenceThreshold, source)
		if err != nil {
			logging.Warn().Err(err).Str("title", title).Str("artist", artist).Msg("tier 3 catalog lookup failed")
			continue
		}
		if m.Track == nil {
			continue
		}

		item, err := o.media.Backend().LookupTrackByID(ctx, m.Track.ID)
		if err != nil || item == nil {
			logging.Debug().Err(err).Str("track_id", m.Track.ID).Msg("tier 3 match could not be resolved to a live server object")
			continue
		}

		if m.Confidence > best.Confidence {
			best = resolvedTrack{Item: item, Confidence: m.Confidence}
		}
	}

	if best.Item != nil {
		return best, true
	}
	return resolvedTrack{}, false
}
