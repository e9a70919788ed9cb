package mediaserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// Adapter wraps a Backend with the connection-lifecycle and aggressive
// cache-population behavior every caller needs regardless of which
// concrete backend is plugged in.
type Adapter struct {
	backend Backend

	connMu      sync.Mutex
	connected   bool
	libraryName string

	cache *libraryCache

	idValidationPattern string
}

// New wraps backend in an Adapter. The library cache is empty until
// PopulateCache runs or a TracksForAlbum/AlbumsForArtist/TrackByID cache
// miss stores the backend's answer.
func New(backend Backend) *Adapter {
	return &Adapter{
		backend: backend,
		cache:   newLibraryCache(),
	}
}

// Backend exposes the wrapped implementation for callers (the three-tier
// resolver's Tier 1 probe) that need capabilities beyond this adapter's
// surface, such as ResolveFileToID.
func (a *Adapter) Backend() Backend { return a.backend }

// EnsureConnection is idempotent: concurrent callers never duplicate a
// connect attempt. Unlike golang.org/x/sync/singleflight (which coalesces
// concurrent identical *calls*), this guard only needs "don't connect
// twice" — a manual mutex-guarded flag, reset on failure so a later call
// can retry, mirrors that narrower requirement.
func (a *Adapter) EnsureConnection(ctx context.Context, libraryName string) error {
	a.connMu.Lock()
	defer a.connMu.Unlock()

	if a.connected && a.libraryName == libraryName {
		return nil
	}

	libraries, err := a.backend.DiscoverMusicLibraries(ctx)
	if err != nil {
		return fmt.Errorf("discover music libraries: %w", err)
	}

	found := false
	for _, lib := range libraries {
		if lib == libraryName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("music library %q not found among %v", libraryName, libraries)
	}

	if err := a.backend.SelectLibraryByName(ctx, libraryName); err != nil {
		return fmt.Errorf("select music library %q: %w", libraryName, err)
	}

	a.connected = true
	a.libraryName = libraryName
	logging.Info().Str("backend", a.backend.Name()).Str("library", libraryName).Msg("media server connection established")
	return nil
}

// Connected reports whether EnsureConnection has succeeded at least once
// for the currently selected library.
func (a *Adapter) Connected() bool {
	a.connMu.Lock()
	defer a.connMu.Unlock()
	return a.connected
}

// resetConnection clears the connected flag so the next EnsureConnection
// call retries from scratch. Nothing in the repository calls it.
func (a *Adapter) resetConnection() {
	a.connMu.Lock()
	a.connected = false
	a.connMu.Unlock()
}
