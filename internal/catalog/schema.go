package catalog

import "context"

// createSchema creates every table and index this package owns if they do
// not already exist. It never drops or alters an existing table —
// structural change is the job of migrations.go.
func (s *Store) createSchema(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	for _, stmt := range tableCreationStatements() {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexCreationStatements() {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func tableCreationStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			thumb TEXT,
			genres TEXT,
			summary TEXT,
			server_source TEXT NOT NULL DEFAULT 'primary',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id, server_source)
		)`,
		`CREATE TABLE IF NOT EXISTS albums (
			id TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			title TEXT NOT NULL,
			year INTEGER,
			thumb TEXT,
			genres TEXT,
			track_count INTEGER,
			duration_ms BIGINT,
			server_source TEXT NOT NULL DEFAULT 'primary',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id, server_source),
			FOREIGN KEY (artist_id, server_source) REFERENCES artists(id, server_source) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT NOT NULL,
			album_id TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			title TEXT NOT NULL,
			track_number INTEGER,
			duration_ms BIGINT,
			file_path TEXT,
			bitrate INTEGER,
			server_source TEXT NOT NULL DEFAULT 'primary',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id, server_source),
			FOREIGN KEY (album_id, server_source) REFERENCES albums(id, server_source) ON DELETE CASCADE,
			FOREIGN KEY (artist_id, server_source) REFERENCES artists(id, server_source) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist_artists (
			id BIGINT PRIMARY KEY,
			external_artist_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_scan TIMESTAMP,
			image TEXT,
			include_albums BOOLEAN NOT NULL DEFAULT true,
			include_eps BOOLEAN NOT NULL DEFAULT true,
			include_singles BOOLEAN NOT NULL DEFAULT false,
			include_live BOOLEAN NOT NULL DEFAULT false,
			include_remixes BOOLEAN NOT NULL DEFAULT false,
			include_acoustic BOOLEAN NOT NULL DEFAULT false,
			include_compilations BOOLEAN NOT NULL DEFAULT false
		)`,
		`CREATE SEQUENCE IF NOT EXISTS watchlist_artists_id_seq`,
		`CREATE TABLE IF NOT EXISTS wishlist_tracks (
			id BIGINT PRIMARY KEY,
			external_track_id TEXT,
			full_track_payload JSON,
			failure_reason TEXT,
			retry_count INTEGER NOT NULL DEFAULT 0,
			last_attempted TIMESTAMP,
			date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			source_type TEXT NOT NULL DEFAULT 'unknown',
			source_info JSON,
			normalized_name TEXT NOT NULL,
			normalized_artist TEXT NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS wishlist_tracks_id_seq`,
		`CREATE TABLE IF NOT EXISTS similar_artists (
			artist_id TEXT NOT NULL,
			similar_artist_id TEXT NOT NULL,
			similar_name TEXT NOT NULL,
			score DOUBLE NOT NULL,
			cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (artist_id, similar_artist_id)
		)`,
		`CREATE TABLE IF NOT EXISTS discovery_pool (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			reason TEXT,
			added_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE SEQUENCE IF NOT EXISTS discovery_pool_id_seq`,
		`CREATE TABLE IF NOT EXISTS recent_releases (
			artist_id TEXT NOT NULL,
			album_title TEXT NOT NULL,
			release_date TIMESTAMP,
			cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (artist_id, album_title)
		)`,
		`CREATE TABLE IF NOT EXISTS listenbrainz_cache (
			key TEXT PRIMARY KEY,
			payload JSON NOT NULL,
			cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

func indexCreationStatements() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_artists_name ON artists (name, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_albums_title ON albums (title, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums (artist_id, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_title ON tracks (title, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks (album_id, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks (artist_id, server_source)`,
		`CREATE INDEX IF NOT EXISTS idx_wishlist_dedup ON wishlist_tracks (normalized_name, normalized_artist)`,
	}
}
