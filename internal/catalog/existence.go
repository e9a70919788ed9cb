package catalog

import (
	"context"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/match"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// TrackMatch is the result of CheckTrackExists: the best-scoring candidate
// and its confidence, or a nil Track when nothing cleared the threshold.
type TrackMatch struct {
	Track      *Track
	Confidence float64
}

// AlbumMatch is the result of CheckAlbumExistsWithEditions.
type AlbumMatch struct {
	Album      *Album
	Confidence float64
}

// CheckTrackExists iterates track-title variations, searching with every
// known alias of artist (including its diacritic-folded form), scoring
// every candidate and returning the best one if it clears threshold.
func (s *Store) CheckTrackExists(ctx context.Context, title, artist string, threshold float64, source ServerSource) (TrackMatch, error) {
	start := time.Now()
	defer observeCatalogDuration("check_track_exists", start)

	aliases := artistAliases(artist)
	variants := match.GenerateTrackVariations(title)

	best := TrackMatch{}
	for _, variant := range variants {
		candidates, err := s.SearchTracksByTitle(ctx, []string{variant, match.Normalize(variant)}, "", source)
		if err != nil {
			return TrackMatch{}, err
		}
		for i := range candidates {
			candidateArtist, err := s.artistNameFor(ctx, candidates[i].ArtistID, source)
			if err != nil {
				return TrackMatch{}, err
			}
			conf := bestConfidenceAcrossAliases(aliases, func(alias string) float64 {
				return match.TrackConfidence(title, alias, candidates[i].Title, candidateArtist)
			})
			if conf > best.Confidence {
				t := candidates[i]
				best = TrackMatch{Track: &t, Confidence: conf}
			}
		}
	}

	metrics.MatchConfidence.WithLabelValues("track").Observe(best.Confidence)
	if best.Track != nil && best.Confidence >= threshold {
		metrics.ResolverTierHits.WithLabelValues("catalog").Inc()
		return best, nil
	}
	return TrackMatch{}, nil
}

// CheckAlbumExistsWithEditions iterates album-title variations; if none
// meets threshold, falls back to enumerating up to 100 albums by any alias
// of artist and rescoring in Go, which bypasses the query-side exact-match
// lookup's diacritic sensitivity.
func (s *Store) CheckAlbumExistsWithEditions(ctx context.Context, title, artist string, threshold float64, expectedTracks int, source ServerSource) (AlbumMatch, error) {
	start := time.Now()
	defer observeCatalogDuration("check_album_exists_with_editions", start)

	aliases := artistAliases(artist)
	variants := match.GenerateAlbumVariations(title)

	best := AlbumMatch{}
	for _, variant := range variants {
		candidates, err := s.SearchAlbumsByTitle(ctx, []string{variant, match.Normalize(variant)}, source)
		if err != nil {
			return AlbumMatch{}, err
		}
		if b, ok, err := s.rescoreAlbumCandidates(ctx, candidates, title, aliases, expectedTracks, source); err != nil {
			return AlbumMatch{}, err
		} else if ok && b.Confidence > best.Confidence {
			best = b
		}
	}

	if best.Album == nil || best.Confidence < threshold {
		fallback, err := s.SearchAlbumsByArtist(ctx, aliases, source, 100)
		if err != nil {
			return AlbumMatch{}, err
		}
		if b, ok, err := s.rescoreAlbumCandidates(ctx, fallback, title, aliases, expectedTracks, source); err != nil {
			return AlbumMatch{}, err
		} else if ok && b.Confidence > best.Confidence {
			best = b
		}
	}

	metrics.MatchConfidence.WithLabelValues("album").Observe(best.Confidence)
	if best.Album != nil && best.Confidence >= threshold {
		return best, nil
	}
	return AlbumMatch{}, nil
}

func (s *Store) rescoreAlbumCandidates(ctx context.Context, candidates []Album, wantTitle string, aliases []string, expectedTracks int, source ServerSource) (AlbumMatch, bool, error) {
	best := AlbumMatch{}
	found := false
	for i := range candidates {
		candidateArtist, err := s.artistNameFor(ctx, candidates[i].ArtistID, source)
		if err != nil {
			return AlbumMatch{}, false, err
		}
		candidateTracks := candidates[i].TrackCount
		if candidateTracks == 0 {
			if n, err := s.CountTracksForAlbum(ctx, candidates[i].ID, source); err == nil {
				candidateTracks = n
			}
		}
		conf := bestConfidenceAcrossAliases(aliases, func(alias string) float64 {
			return match.AlbumConfidence(wantTitle, alias, candidates[i].Title, candidateArtist, expectedTracks, candidateTracks)
		})
		if !found || conf > best.Confidence {
			a := candidates[i]
			best = AlbumMatch{Album: &a, Confidence: conf}
			found = true
		}
	}
	return best, found, nil
}

// CheckAlbumCompleteness reports how many of an expected track count the
// catalog currently holds for an album. Complete iff owned/expected >= 0.9,
// or any owned track when expected is unknown (0).
func (s *Store) CheckAlbumCompleteness(ctx context.Context, albumID string, expected int, source ServerSource) (owned, expectedOut int, complete bool, err error) {
	owned, err = s.CountTracksForAlbum(ctx, albumID, source)
	if err != nil {
		return 0, 0, false, err
	}
	if expected <= 0 {
		return owned, 0, owned > 0, nil
	}
	return owned, expected, float64(owned)/float64(expected) >= 0.9, nil
}

// ClearServerData deletes tracks then albums then artists for one server
// source only, vacuuming afterward when the deletion was large enough to
// matter (spec §4.2: >1000 tracks or >100 albums removed).
func (s *Store) ClearServerData(ctx context.Context, source ServerSource) error {
	var trackCount, albumCount int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE server_source = ?`, string(source)).Scan(&trackCount); err != nil {
		return err
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums WHERE server_source = ?`, string(source)).Scan(&albumCount); err != nil {
		return err
	}

	return s.withRetry(ctx, "clear_server_data", func(ctx context.Context) error {
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		for _, stmt := range []string{
			`DELETE FROM tracks WHERE server_source = ?`,
			`DELETE FROM albums WHERE server_source = ?`,
			`DELETE FROM artists WHERE server_source = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, string(source)); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		if trackCount > 1000 || albumCount > 100 {
			_, err := s.conn.ExecContext(ctx, "VACUUM")
			return err
		}
		return nil
	})
}

// CleanupOrphanedRecords removes artists and albums that own zero tracks.
func (s *Store) CleanupOrphanedRecords(ctx context.Context) error {
	return s.withRetry(ctx, "cleanup_orphaned_records", func(ctx context.Context) error {
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM albums WHERE id NOT IN (SELECT DISTINCT album_id FROM tracks)
		`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM artists WHERE id NOT IN (SELECT DISTINCT artist_id FROM tracks)
		`); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (s *Store) artistNameFor(ctx context.Context, artistID string, source ServerSource) (string, error) {
	artist, err := s.GetArtist(ctx, artistID, source)
	if err != nil {
		return "", err
	}
	if artist == nil {
		return "", nil
	}
	return artist.Name, nil
}

// artistAliases returns artist plus its diacritic-folded normalized form,
// deduplicated, per spec §4.2's "all known artist aliases".
func artistAliases(artist string) []string {
	normalized := match.Normalize(artist)
	if normalized == artist {
		return []string{artist}
	}
	return []string{artist, normalized}
}

func bestConfidenceAcrossAliases(aliases []string, score func(alias string) float64) float64 {
	best := 0.0
	for _, alias := range aliases {
		if c := score(alias); c > best {
			best = c
		}
	}
	return best
}
