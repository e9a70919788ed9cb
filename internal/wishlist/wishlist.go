// Package wishlist is a thin facade over the catalog store's wishlist
// table so orchestrator call sites read wishlist.Record(...)/wishlist.List(...)
// instead of reaching into internal/catalog directly. The entire contract
// ("insert with the dedup key, list, remove on success") already lives in
// catalog.Store against the shared DuckDB connection discipline; this
// package adds no state of its own.
package wishlist

import (
	"context"

	"github.com/playlistbridge/playlistbridge/internal/catalog"
)

// Service wraps a catalog.Store for wishlist operations.
type Service struct {
	store *catalog.Store
}

// New builds a Service bound to store.
func New(store *catalog.Store) *Service {
	return &Service{store: store}
}

// Record inserts a wishlist entry, deduplicated by normalized (name, artist).
func (s *Service) Record(ctx context.Context, name, primaryArtist string, track catalog.WishlistTrack) error {
	return s.store.RecordWishlistTrack(ctx, name, primaryArtist, track)
}

// List returns every wishlist row, newest first.
func (s *Service) List(ctx context.Context) ([]catalog.WishlistTrack, error) {
	return s.store.ListWishlistTracks(ctx)
}

// Remove deletes a wishlist row, typically after a successful re-download.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.store.RemoveWishlistTrack(ctx, id)
}

// MarkAttempt records a retry attempt against a wishlist row.
func (s *Service) MarkAttempt(ctx context.Context, id int64, failureReason string) error {
	return s.store.MarkWishlistAttempt(ctx, id, failureReason)
}
