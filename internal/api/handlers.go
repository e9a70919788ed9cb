package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/orchestrator"
)

// progressRingSize bounds how many recent progress events are kept per
// playlist for the read-back endpoint; older events are overwritten.
const progressRingSize = 32

// Handler serves the §6 inbound contract: trigger a sync, cancel one,
// read back progress, and the ambient health/readiness checks.
type Handler struct {
	orch  *orchestrator.Orchestrator
	store *catalog.Store

	progressMu sync.Mutex
	progress   map[string][]orchestrator.SyncProgress
}

// NewHandler builds a Handler and starts mirroring the orchestrator's
// progress bus into an in-memory ring buffer per playlist. ctx governs
// the lifetime of that mirroring goroutine.
func NewHandler(ctx context.Context, orch *orchestrator.Orchestrator, store *catalog.Store) *Handler {
	h := &Handler{
		orch:     orch,
		store:    store,
		progress: make(map[string][]orchestrator.SyncProgress),
	}
	go h.mirrorProgress(ctx)
	return h
}

func (h *Handler) mirrorProgress(ctx context.Context) {
	events, err := h.orch.Subscribe(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("subscribe to sync progress failed")
		return
	}
	for p := range events {
		h.progressMu.Lock()
		ring := h.progress[p.PlaylistName]
		ring = append(ring, p)
		if len(ring) > progressRingSize {
			ring = ring[len(ring)-progressRingSize:]
		}
		h.progress[p.PlaylistName] = ring
		h.progressMu.Unlock()
	}
}

// writeJSON marshals v and writes it with status, logging (not failing
// the request further) if the write itself errors out client-side.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("write json response failed")
	}
}

type syncRequest struct {
	DownloadMissing *bool `json:"download_missing"`
}

// TriggerSync handles POST /syncs/{playlist}.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	playlist := chi.URLParam(r, "playlist")
	if playlist == "" {
		http.Error(w, "playlist name required", http.StatusBadRequest)
		return
	}

	var req syncRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	downloadMissing := true
	if req.DownloadMissing != nil {
		downloadMissing = *req.DownloadMissing
	}

	result, err := h.orch.SyncPlaylist(r.Context(), playlist, downloadMissing)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelSync handles DELETE /syncs/{playlist}.
func (h *Handler) CancelSync(w http.ResponseWriter, r *http.Request) {
	playlist := chi.URLParam(r, "playlist")
	if ok := h.orch.CancelSync(playlist); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sync in progress for this playlist"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetSyncProgress handles GET /syncs/{playlist}: the most recent progress
// events seen for this playlist since the process started.
func (h *Handler) GetSyncProgress(w http.ResponseWriter, r *http.Request) {
	playlist := chi.URLParam(r, "playlist")

	h.progressMu.Lock()
	ring := append([]orchestrator.SyncProgress(nil), h.progress[playlist]...)
	h.progressMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"playlist_name": playlist, "events": ring})
}

// GetSyncPreview handles GET /syncs/{playlist}/preview: a read-only dry
// run that resolves the playlist against the media server without
// downloading, writing, or wishlisting anything.
func (h *Handler) GetSyncPreview(w http.ResponseWriter, r *http.Request) {
	playlist := chi.URLParam(r, "playlist")
	if playlist == "" {
		http.Error(w, "playlist name required", http.StatusBadRequest)
		return
	}

	preview, err := h.orch.SyncPreview(r.Context(), playlist)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// GetLibraryComparison handles GET /library/comparison: a read-only
// side-by-side of the remote provider's catalog against the media
// server's library, independent of any one playlist.
func (h *Handler) GetLibraryComparison(w http.ResponseWriter, r *http.Request) {
	comparison, err := h.orch.LibraryComparison(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// GetAlbumCompletionStats handles GET /catalog/albums/completion?artist=.
// artist is matched as a case-insensitive substring against artist names.
func (h *Handler) GetAlbumCompletionStats(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	if artist == "" {
		http.Error(w, "artist query parameter required", http.StatusBadRequest)
		return
	}

	stats, err := h.store.GetAlbumCompletionStats(r.Context(), artist, catalog.ServerPrimary)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// DedupeWishlist handles POST /wishlist/dedupe: a maintenance sweep that
// removes wishlist rows sharing the same normalized (name, artist) key,
// keeping the oldest entry of each set.
func (h *Handler) DedupeWishlist(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.RemoveWishlistDuplicates(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// HealthLive is the liveness probe: the process is up and serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HealthReady is the readiness probe: the catalog database is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
}
