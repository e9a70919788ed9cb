package mediaserver

import (
	"context"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/cache"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

const (
	initialPageSize   = 10000
	maxConsecutiveFails = 3
)

// libraryCache holds the aggressively-populated artist/album/track lookup
// tables, built on internal/cache's TTL primitives the same way the
// teacher's tile/geolocation cache is — just holding rows instead of
// vector tiles.
type libraryCache struct {
	tracksByAlbum cache.Cacher // album id -> []LibraryItem
	albumsByArtist cache.Cacher // artist id -> []LibraryAlbum
	trackByID     cache.Cacher
	albumByID     cache.Cacher
}

func newLibraryCache() *libraryCache {
	ttl := 30 * time.Minute
	return &libraryCache{
		tracksByAlbum:  cache.NewTTL(ttl),
		albumsByArtist: cache.NewTTL(ttl),
		trackByID:      cache.NewTTL(ttl),
		albumByID:      cache.NewTTL(ttl),
	}
}

// PopulationProgress is reported after each page during PopulateCache.
type PopulationProgress struct {
	TracksSeen int
	AlbumsSeen int
	Page       int
}

// PopulateCache runs the aggressive cache population pass (spec §4.3):
// page all audio items, group by album; page all albums, group by primary
// artist. A failed page halves the batch size; three consecutive failures
// abort with whatever was gathered so far.
// Callers that have put the backend into metadata-only mode (via
// MetadataOnlyModeSetter) should skip calling PopulateCache altogether —
// the mode switch is the caller's decision, this method always performs a
// full pass.
func (a *Adapter) PopulateCache(ctx context.Context, progress func(PopulationProgress)) error {
	tracksSeen, err := a.populateTrackCache(ctx, progress)
	if err != nil {
		metrics.MediaServerCachePopulations.WithLabelValues(a.backend.Name(), "partial").Inc()
		return err
	}

	albumsSeen, err := a.populateAlbumCache(ctx, progress, tracksSeen)
	if err != nil {
		metrics.MediaServerCachePopulations.WithLabelValues(a.backend.Name(), "partial").Inc()
		return err
	}

	_ = albumsSeen
	metrics.MediaServerCachePopulations.WithLabelValues(a.backend.Name(), "complete").Inc()
	return nil
}

func (a *Adapter) populateTrackCache(ctx context.Context, progress func(PopulationProgress)) (int, error) {
	byAlbum := map[string][]LibraryItem{}
	cursor := ""
	pageSize := initialPageSize
	consecutiveFailures := 0
	page := 0
	total := 0

	for {
		result, err := a.backend.FetchAudioPage(ctx, cursor, pageSize)
		if err != nil {
			consecutiveFailures++
			logging.Warn().Err(err).Int("page_size", pageSize).Msg("audio page fetch failed")
			if consecutiveFailures >= maxConsecutiveFails {
				a.flushTrackCache(byAlbum)
				return total, nil
			}
			pageSize = pageSize / 2
			if pageSize < 1 {
				pageSize = 1
			}
			continue
		}
		consecutiveFailures = 0
		page++

		for _, item := range result.Items {
			byAlbum[item.ParentAlbumID] = append(byAlbum[item.ParentAlbumID], item)
			a.cache.trackByID.Set(item.ID, item)
			total++
		}

		if progress != nil {
			progress(PopulationProgress{TracksSeen: total, Page: page})
		}

		if !result.HasMore {
			break
		}
		cursor = result.NextCursor
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	a.flushTrackCache(byAlbum)
	return total, nil
}

func (a *Adapter) flushTrackCache(byAlbum map[string][]LibraryItem) {
	for albumID, tracks := range byAlbum {
		a.cache.tracksByAlbum.Set(albumID, tracks)
	}
}

func (a *Adapter) populateAlbumCache(ctx context.Context, progress func(PopulationProgress), tracksSeen int) (int, error) {
	byArtist := map[string][]LibraryAlbum{}
	cursor := ""
	pageSize := initialPageSize
	consecutiveFailures := 0
	page := 0
	total := 0

	for {
		result, err := a.backend.FetchAlbumPage(ctx, cursor, pageSize)
		if err != nil {
			consecutiveFailures++
			logging.Warn().Err(err).Int("page_size", pageSize).Msg("album page fetch failed")
			if consecutiveFailures >= maxConsecutiveFails {
				a.flushAlbumCache(byArtist)
				return total, nil
			}
			pageSize = pageSize / 2
			if pageSize < 1 {
				pageSize = 1
			}
			continue
		}
		consecutiveFailures = 0
		page++

		for _, album := range result.Albums {
			byArtist[album.ArtistID] = append(byArtist[album.ArtistID], album)
			a.cache.albumByID.Set(album.ID, album)
			total++
		}

		if progress != nil {
			progress(PopulationProgress{TracksSeen: tracksSeen, AlbumsSeen: total, Page: page})
		}

		if !result.HasMore {
			break
		}
		cursor = result.NextCursor
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	a.flushAlbumCache(byArtist)
	return total, nil
}

func (a *Adapter) flushAlbumCache(byArtist map[string][]LibraryAlbum) {
	for artistID, albums := range byArtist {
		a.cache.albumsByArtist.Set(artistID, albums)
	}
}

// TracksForAlbum serves from cache, falling back to a targeted backend
// call on a miss and populating the cache with the result.
func (a *Adapter) TracksForAlbum(ctx context.Context, albumID string) ([]LibraryItem, error) {
	if cached, ok := a.cache.tracksByAlbum.Get(albumID); ok {
		return cached.([]LibraryItem), nil
	}

	tracks, err := a.backend.ListTracksForAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	a.cache.tracksByAlbum.Set(albumID, tracks)
	return tracks, nil
}

// AlbumsForArtist serves from cache, falling back to a targeted backend
// call on a miss.
func (a *Adapter) AlbumsForArtist(ctx context.Context, artistID string) ([]LibraryAlbum, error) {
	if cached, ok := a.cache.albumsByArtist.Get(artistID); ok {
		return cached.([]LibraryAlbum), nil
	}

	albums, err := a.backend.ListAlbumsForArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	a.cache.albumsByArtist.Set(artistID, albums)
	return albums, nil
}

// TrackByID serves from cache, falling back to a targeted lookup.
func (a *Adapter) TrackByID(ctx context.Context, id string) (*LibraryItem, error) {
	if cached, ok := a.cache.trackByID.Get(id); ok {
		item := cached.(LibraryItem)
		return &item, nil
	}

	item, err := a.backend.LookupTrackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item != nil {
		a.cache.trackByID.Set(id, *item)
	}
	return item, nil
}
