package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// migration is one versioned, idempotent schema change. It runs inside a
// transaction and is guarded by a marker row in metadata so it never
// re-applies, per spec §4.2/§9.
type migration struct {
	marker string
	name   string
	run    func(ctx context.Context, tx *sql.Tx) error
}

// runMigrations applies every migration whose marker is not yet recorded,
// in order. The schema this package creates from scratch already matches
// the post-migration shape, so on a brand-new catalog every migration here
// is a structural no-op that still records its marker — this keeps a
// single code path for both fresh installs and upgrades from an older
// catalog file.
func (s *Store) runMigrations(ctx context.Context) error {
	for _, m := range migrations() {
		applied, err := s.markerSet(ctx, m.marker)
		if err != nil {
			return fmt.Errorf("migration %s: check marker: %w", m.name, err)
		}
		if applied {
			continue
		}

		if err := s.runOne(ctx, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		logging.Info().Str("migration", m.name).Msg("catalog migration applied")
	}
	return nil
}

func (s *Store) runOne(ctx context.Context, m migration) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.run(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, 'true')`, m.marker); err != nil {
		return fmt.Errorf("record marker: %w", err)
	}
	return tx.Commit()
}

func (s *Store) markerSet(ctx context.Context, marker string) (bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, marker).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func migrations() []migration {
	return []migration{
		{
			marker: "migration_server_source_added",
			name:   "add_server_source_column",
			run:    migrateAddServerSource,
		},
		{
			marker: "id_columns_migrated",
			name:   "id_columns_to_text",
			run:    migrateIDColumnsToText,
		},
		{
			marker: "migration_watchlist_extensions",
			name:   "watchlist_extensions",
			run:    migrateWatchlistExtensions,
		},
	}
}

// migrateAddServerSource adds server_source with default 'primary' to the
// three library tables. createSchema already declares the column on a
// fresh catalog, so ADD COLUMN IF NOT EXISTS is a no-op there and only
// does real work against a pre-server_source catalog file.
func migrateAddServerSource(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE artists ADD COLUMN IF NOT EXISTS server_source TEXT NOT NULL DEFAULT 'primary'`,
		`ALTER TABLE albums ADD COLUMN IF NOT EXISTS server_source TEXT NOT NULL DEFAULT 'primary'`,
		`ALTER TABLE tracks ADD COLUMN IF NOT EXISTS server_source TEXT NOT NULL DEFAULT 'primary'`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateIDColumnsToText copies any table whose id columns are still an
// integer type into a text-keyed replacement, transactionally, per spec
// §4.2 migration 2 and §8's "column type of every id column is text"
// invariant. createSchema declares id columns as TEXT from the start, so
// this detects the legacy shape and only acts when it's actually present.
func migrateIDColumnsToText(ctx context.Context, tx *sql.Tx) error {
	legacyNumeric, err := columnIsNumeric(ctx, tx, "artists", "id")
	if err != nil {
		return fmt.Errorf("inspect artists.id type: %w", err)
	}
	if !legacyNumeric {
		return nil
	}

	stmts := []string{
		`CREATE TABLE artists_text_migration AS SELECT CAST(id AS TEXT) AS id, name, thumb, genres, summary, server_source, created_at, updated_at FROM artists`,
		`CREATE TABLE albums_text_migration AS SELECT CAST(id AS TEXT) AS id, CAST(artist_id AS TEXT) AS artist_id, title, year, thumb, genres, track_count, duration_ms, server_source, created_at, updated_at FROM albums`,
		`CREATE TABLE tracks_text_migration AS SELECT CAST(id AS TEXT) AS id, CAST(album_id AS TEXT) AS album_id, CAST(artist_id AS TEXT) AS artist_id, title, track_number, duration_ms, file_path, bitrate, server_source, created_at, updated_at FROM tracks`,
		`DROP TABLE tracks`,
		`DROP TABLE albums`,
		`DROP TABLE artists`,
		`ALTER TABLE artists_text_migration RENAME TO artists`,
		`ALTER TABLE albums_text_migration RENAME TO albums`,
		`ALTER TABLE tracks_text_migration RENAME TO tracks`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexCreationStatements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateWatchlistExtensions adds the image column and the seven
// include-flag columns to watchlist_artists.
func migrateWatchlistExtensions(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS image TEXT`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_albums BOOLEAN NOT NULL DEFAULT true`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_eps BOOLEAN NOT NULL DEFAULT true`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_singles BOOLEAN NOT NULL DEFAULT false`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_live BOOLEAN NOT NULL DEFAULT false`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_remixes BOOLEAN NOT NULL DEFAULT false`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_acoustic BOOLEAN NOT NULL DEFAULT false`,
		`ALTER TABLE watchlist_artists ADD COLUMN IF NOT EXISTS include_compilations BOOLEAN NOT NULL DEFAULT false`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func columnIsNumeric(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var dataType string
	err := tx.QueryRowContext(ctx, `
		SELECT data_type FROM information_schema.columns
		WHERE table_name = ? AND column_name = ?`, table, column).Scan(&dataType)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch dataType {
	case "INTEGER", "BIGINT", "SMALLINT", "HUGEINT", "UINTEGER", "UBIGINT":
		return true, nil
	default:
		return false, nil
	}
}
