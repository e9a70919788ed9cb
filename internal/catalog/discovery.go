package catalog

import (
	"context"
	"database/sql"
)

// Discovery (similar_artists, discovery_pool, recent_releases, the
// ListenBrainz cache) is observed by spec §4.2 but not required to drive
// any sync-pipeline decision; this file provides just enough to keep the
// tables populated from a future discovery job without blocking on one.

// UpsertSimilarArtists replaces the cached similar-artist list for one
// artist.
func (s *Store) UpsertSimilarArtists(ctx context.Context, artistID string, similar []SimilarArtist) error {
	return s.withRetry(ctx, "upsert_similar_artists", func(ctx context.Context) error {
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM similar_artists WHERE artist_id = ?`, artistID); err != nil {
			return err
		}
		for _, sa := range similar {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO similar_artists (artist_id, similar_artist_id, similar_name, score)
				VALUES (?, ?, ?, ?)
			`, artistID, sa.SimilarArtistID, sa.SimilarName, sa.Score); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// ListSimilarArtists returns the cached similar-artist list for one artist.
func (s *Store) ListSimilarArtists(ctx context.Context, artistID string) ([]SimilarArtist, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT artist_id, similar_artist_id, similar_name, score, cached_at
		FROM similar_artists WHERE artist_id = ? ORDER BY score DESC
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SimilarArtist
	for rows.Next() {
		var sa SimilarArtist
		if err := rows.Scan(&sa.ArtistID, &sa.SimilarArtistID, &sa.SimilarName, &sa.Score, &sa.CachedAt); err != nil {
			return nil, err
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

// AddDiscoveryPoolEntry surfaces a candidate for the user to add to their
// watchlist.
func (s *Store) AddDiscoveryPoolEntry(ctx context.Context, name, reason string) error {
	return s.withRetry(ctx, "add_discovery_pool_entry", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO discovery_pool (id, name, reason) VALUES (nextval('discovery_pool_id_seq'), ?, ?)
		`, name, nullableString(reason))
		return err
	})
}

// ListDiscoveryPool returns every unresolved discovery candidate, oldest
// first.
func (s *Store) ListDiscoveryPool(ctx context.Context) ([]DiscoveryPoolEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, COALESCE(reason,''), added_date FROM discovery_pool ORDER BY added_date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DiscoveryPoolEntry
	for rows.Next() {
		var d DiscoveryPoolEntry
		if err := rows.Scan(&d.ID, &d.Name, &d.Reason, &d.AddedDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertRecentRelease records a cached recent-release sighting for an
// artist.
func (s *Store) UpsertRecentRelease(ctx context.Context, r RecentRelease) error {
	return s.withRetry(ctx, "upsert_recent_release", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO recent_releases (artist_id, album_title, release_date)
			VALUES (?, ?, ?)
			ON CONFLICT (artist_id, album_title) DO UPDATE SET
				release_date = excluded.release_date, cached_at = CURRENT_TIMESTAMP
		`, r.ArtistID, r.AlbumTitle, r.ReleaseDate)
		return err
	})
}

// GetListenBrainzCache fetches a cached ListenBrainz response payload by
// key; callers enforce their own TTL against CachedAt.
func (s *Store) GetListenBrainzCache(ctx context.Context, key string) (*ListenBrainzCacheEntry, error) {
	var e ListenBrainzCacheEntry
	var payload string
	err := s.conn.QueryRowContext(ctx, `
		SELECT key, payload, cached_at FROM listenbrainz_cache WHERE key = ?
	`, key).Scan(&e.Key, &payload, &e.CachedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.Payload = []byte(payload)
	return &e, nil
}

// PutListenBrainzCache stores or replaces a cached ListenBrainz response.
func (s *Store) PutListenBrainzCache(ctx context.Context, key string, payload []byte) error {
	return s.withRetry(ctx, "put_listenbrainz_cache", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			INSERT INTO listenbrainz_cache (key, payload) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, cached_at = CURRENT_TIMESTAMP
		`, key, string(payload))
		return err
	})
}
