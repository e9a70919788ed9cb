package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/metrics"
)

// Store wraps the DuckDB connection backing the catalog. database/sql
// already pools and serializes connections for us; "every operation opens
// a fresh connection" (spec §4.2) is satisfied by never holding a
// connection or transaction across an exported method's return.
type Store struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	rapidfuzzAvailable bool
	icuAvailable       bool
}

// Open creates (or attaches to) the catalog file, applies pragmas, and
// runs schema creation plus any pending migrations.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create catalog directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, runtime.NumCPU())

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	store := &Store{conn: conn, cfg: cfg}

	if err := store.applyPragmas(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("apply catalog pragmas: %w", err)
	}

	store.installExtensions()

	if err := store.createSchema(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	if err := store.runMigrations(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("run catalog migrations: %w", err)
	}

	if err := store.checkpoint(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("catalog checkpoint after init failed")
	}

	return store, nil
}

func (s *Store) applyPragmas() error {
	busySeconds := int(s.cfg.BusyTimeout.Seconds())
	if busySeconds <= 0 {
		busySeconds = 30
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout='%ds'", busySeconds),
		"PRAGMA enable_object_cache",
	}
	for _, p := range pragmas {
		if _, err := s.conn.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// installExtensions tries to load the icu and rapidfuzz extensions and
// records whether each loaded (IsICUAvailable, IsRapidFuzzAvailable). Both
// are optional. No query in this package uses an ICU collation or
// rapidfuzz_similarity(): existence.go matches with exact LOWER() lookups
// and scores candidates in Go via internal/match.
func (s *Store) installExtensions() {
	for name, flag := range map[string]*bool{
		"icu":       &s.icuAvailable,
		"rapidfuzz": &s.rapidfuzzAvailable,
	} {
		if err := s.loadExtension(name); err != nil {
			logging.Warn().Str("extension", name).Err(err).Msg("duckdb extension unavailable, falling back to Go-side implementation")
			*flag = false
		} else {
			*flag = true
		}
	}
}

func (s *Store) loadExtension(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, "INSTALL "+name); err != nil {
		logging.Debug().Str("extension", name).Err(err).Msg("install failed, trying load")
	}
	_, err := s.conn.ExecContext(ctx, "LOAD "+name)
	return err
}

// IsRapidFuzzAvailable reports whether SQL-side fuzzy search can be used.
func (s *Store) IsRapidFuzzAvailable() bool { return s.rapidfuzzAvailable }

// IsICUAvailable reports whether ICU collations are loaded.
func (s *Store) IsICUAvailable() bool { return s.icuAvailable }

// Conn exposes the underlying pool for packages that need a raw query
// (discovery.go's cache tables, tests).
func (s *Store) Conn() *sql.DB { return s.conn }

func (s *Store) checkpoint(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := s.conn.ExecContext(ctx, "CHECKPOINT")
	return err
}

// Close flushes the WAL and closes the pool.
func (s *Store) Close() error {
	if err := s.checkpoint(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("failed to checkpoint catalog before close")
	}
	return s.conn.Close()
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// withRetry runs fn, retrying up to cfg.MaxRetries times with geometric
// backoff (cfg.RetryBaseDelay as the base) when the error indicates the
// database was locked by a concurrent writer, per spec §4.2.
func (s *Store) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	base := s.cfg.RetryBaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isLockConflict(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}
		metrics.CatalogBusyRetries.WithLabelValues(operation).Inc()

		delay := base * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(delay) / 4))
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("catalog operation %s: %w (exhausted %d retries)", operation, lastErr, maxRetries)
}

func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock") ||
		strings.Contains(msg, "conflict") ||
		strings.Contains(msg, "busy")
}

func closeQuietly(c interface{ Close() error }) {
	if c != nil {
		_ = c.Close()
	}
}

func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}
