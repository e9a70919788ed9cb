// Package remoteprovider defines the out-of-scope "specified interface"
// boundary for the authoritative remote playlist provider (spec §1/§6) —
// the core only consumes PlaylistProvider, never a concrete wire client.
package remoteprovider

import "context"

// Track is one remote-provider track, the contract shape per spec §6.
type Track struct {
	ID            string
	Name          string
	Artists       []string
	Album         string
	DurationMS    int64
	Popularity    int
	ExternalURLs  map[string]string
}

// Playlist is one remote-provider playlist summary.
type Playlist struct {
	ID   string
	Name string
}

// PlaylistProvider is the contract the sync orchestrator consumes; no
// concrete HTTP client for any specific remote provider is implemented in
// this repository beyond the default resty-backed Client in client.go, per
// spec §1's "HTTP clients for the remote playlist provider" exclusion.
type PlaylistProvider interface {
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
}
