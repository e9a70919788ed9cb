package catalog

import (
	"context"
	"database/sql"

	"github.com/playlistbridge/playlistbridge/internal/match"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// RecordWishlistTrack inserts a wishlist entry after scanning for an
// existing row sharing the same (normalized name, normalized primary
// artist) business key; a collision is silently dropped, per spec §3/§4.2
// — duplicate entries under ID drift must never pile up.
func (s *Store) RecordWishlistTrack(ctx context.Context, name, primaryArtist string, w WishlistTrack) error {
	w.NormalizedName = match.Normalize(name)
	w.NormalizedArtist = match.Normalize(primaryArtist)

	return s.withRetry(ctx, "record_wishlist_track", func(ctx context.Context) error {
		var existing int
		err := s.conn.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM wishlist_tracks WHERE normalized_name = ? AND normalized_artist = ?
		`, w.NormalizedName, w.NormalizedArtist).Scan(&existing)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		_, err = s.conn.ExecContext(ctx, `
			INSERT INTO wishlist_tracks (
				id, external_track_id, full_track_payload, failure_reason, retry_count,
				date_added, source_type, source_info, normalized_name, normalized_artist
			) VALUES (nextval('wishlist_tracks_id_seq'), ?, ?, ?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?)
		`, nullableString(w.ExternalTrackID), jsonOrNull(w.FullTrackPayload), nullableString(w.FailureReason),
			w.RetryCount, string(w.SourceType), jsonOrNull(w.SourceInfo), w.NormalizedName, w.NormalizedArtist)
		if err != nil {
			return err
		}

		metrics.WishlistSize.Inc()
		return nil
	})
}

// ListWishlistTracks returns every wishlist row, newest first.
func (s *Store) ListWishlistTracks(ctx context.Context) ([]WishlistTrack, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, COALESCE(external_track_id,''), COALESCE(full_track_payload,''), COALESCE(failure_reason,''),
		       retry_count, last_attempted, date_added, source_type, COALESCE(source_info,''),
		       normalized_name, normalized_artist
		FROM wishlist_tracks ORDER BY date_added DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WishlistTrack
	for rows.Next() {
		var w WishlistTrack
		var lastAttempted sql.NullTime
		var payload, sourceInfo string
		if err := rows.Scan(&w.ID, &w.ExternalTrackID, &payload, &w.FailureReason, &w.RetryCount,
			&lastAttempted, &w.DateAdded, &w.SourceType, &sourceInfo, &w.NormalizedName, &w.NormalizedArtist); err != nil {
			return nil, err
		}
		w.FullTrackPayload = []byte(payload)
		w.SourceInfo = []byte(sourceInfo)
		if lastAttempted.Valid {
			w.LastAttempted = &lastAttempted.Time
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// RemoveWishlistTrack deletes a wishlist row, typically after a successful
// re-download.
func (s *Store) RemoveWishlistTrack(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "remove_wishlist_track", func(ctx context.Context) error {
		result, err := s.conn.ExecContext(ctx, `DELETE FROM wishlist_tracks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n > 0 {
			metrics.WishlistSize.Dec()
		}
		return nil
	})
}

// MarkWishlistAttempt records a retry attempt against a wishlist row.
func (s *Store) MarkWishlistAttempt(ctx context.Context, id int64, failureReason string) error {
	return s.withRetry(ctx, "mark_wishlist_attempt", func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, `
			UPDATE wishlist_tracks
			SET retry_count = retry_count + 1, last_attempted = CURRENT_TIMESTAMP, failure_reason = ?
			WHERE id = ?
		`, failureReason, id)
		return err
	})
}

// RemoveWishlistDuplicates sweeps the whole wishlist for rows sharing the
// same (normalized_name, normalized_artist) business key — entries that
// predate the insert-time check in RecordWishlistTrack, or that drifted in
// through a direct import — keeping the oldest row of each set and
// deleting the rest. Returns the number of rows removed.
func (s *Store) RemoveWishlistDuplicates(ctx context.Context) (int, error) {
	var removed int
	err := s.withRetry(ctx, "remove_wishlist_duplicates", func(ctx context.Context) error {
		rows, err := s.conn.QueryContext(ctx, `
			SELECT id, normalized_name, normalized_artist
			FROM wishlist_tracks
			ORDER BY date_added ASC
		`)
		if err != nil {
			return err
		}

		type row struct {
			id           int64
			name, artist string
		}
		var all []row
		for rows.Next() {
			var r row
			if err := rows.Scan(&r.id, &r.name, &r.artist); err != nil {
				rows.Close()
				return err
			}
			all = append(all, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		seen := make(map[string]int64, len(all))
		var toRemove []int64
		for _, r := range all {
			key := r.name + "\x00" + r.artist
			if _, ok := seen[key]; ok {
				toRemove = append(toRemove, r.id)
				continue
			}
			seen[key] = r.id
		}

		for _, id := range toRemove {
			if _, err := s.conn.ExecContext(ctx, `DELETE FROM wishlist_tracks WHERE id = ?`, id); err != nil {
				return err
			}
			removed++
			metrics.WishlistSize.Dec()
		}
		return nil
	})
	return removed, err
}

func jsonOrNull(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
