package mediaserver

import (
	"context"
	"errors"
)

// errBackendNotConfigured is returned by every NoopBackend method. A real
// deployment replaces NoopBackend with a concrete Plex/Jellyfin/Navidrome
// wire client implementing Backend — that client is intentionally out of
// scope for this repository (spec §1/§4.3).
var errBackendNotConfigured = errors.New("mediaserver: no backend configured")

// NoopBackend is the default Backend wired by cmd/playlistbridged when no
// concrete media-server client has been registered. Every method fails
// with errBackendNotConfigured so the daemon starts and serves health
// checks without panicking on a nil dependency, rather than compiling in
// a fake success path that would mask a missing integration.
type NoopBackend struct{}

var _ Backend = NoopBackend{}

func (NoopBackend) Name() string { return "noop" }

func (NoopBackend) DiscoverMusicLibraries(ctx context.Context) ([]string, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) SelectLibraryByName(ctx context.Context, name string) error {
	return errBackendNotConfigured
}
func (NoopBackend) ListAllArtists(ctx context.Context) ([]LibraryArtist, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListAlbumsForArtist(ctx context.Context, artistID string) ([]LibraryAlbum, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListTracksForAlbum(ctx context.Context, albumID string) ([]LibraryItem, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) LookupArtistByID(ctx context.Context, id string) (*LibraryArtist, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) LookupAlbumByID(ctx context.Context, id string) (*LibraryAlbum, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) LookupTrackByID(ctx context.Context, id string) (*LibraryItem, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListRecentlyAddedAlbums(ctx context.Context, limit int) ([]LibraryAlbum, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListRecentlyUpdatedAlbums(ctx context.Context, limit int) ([]LibraryAlbum, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListRecentlyAddedTracks(ctx context.Context, limit int) ([]LibraryItem, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) ListRecentlyUpdatedTracks(ctx context.Context, limit int) ([]LibraryItem, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) LibraryStats(ctx context.Context) (LibraryStats, error) {
	return LibraryStats{}, errBackendNotConfigured
}
func (NoopBackend) ListPlaylists(ctx context.Context) ([]PlaylistDescriptor, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) GetPlaylistByName(ctx context.Context, name string) (*PlaylistDescriptor, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) GetPlaylistTracks(ctx context.Context, playlistID string) ([]LibraryItem, error) {
	return nil, errBackendNotConfigured
}
func (NoopBackend) CreatePlaylist(ctx context.Context, name string, trackIDs []string) (string, error) {
	return "", errBackendNotConfigured
}
func (NoopBackend) AppendToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	return errBackendNotConfigured
}
func (NoopBackend) DeletePlaylist(ctx context.Context, playlistID string) error {
	return errBackendNotConfigured
}
func (NoopBackend) CopyPlaylist(ctx context.Context, sourceID, destName string) (string, error) {
	return "", errBackendNotConfigured
}
func (NoopBackend) TriggerScan(ctx context.Context) error { return errBackendNotConfigured }
func (NoopBackend) IsScanning(ctx context.Context) (bool, error) {
	return false, errBackendNotConfigured
}
func (NoopBackend) UpdateArtistPoster(ctx context.Context, artistID, imageURL string) error {
	return errBackendNotConfigured
}
func (NoopBackend) UpdateAlbumPoster(ctx context.Context, albumID, imageURL string) error {
	return errBackendNotConfigured
}
func (NoopBackend) NeedsUpdateByAge(ctx context.Context, id string, maxAge int64) (bool, error) {
	return false, errBackendNotConfigured
}
func (NoopBackend) IsIgnored(ctx context.Context, id string) (bool, error) {
	return false, errBackendNotConfigured
}
func (NoopBackend) FetchAudioPage(ctx context.Context, cursor string, pageSize int) (AudioPage, error) {
	return AudioPage{}, errBackendNotConfigured
}
func (NoopBackend) FetchAlbumPage(ctx context.Context, cursor string, pageSize int) (AlbumPage, error) {
	return AlbumPage{}, errBackendNotConfigured
}
func (NoopBackend) ResolveFileToID(ctx context.Context, filePath string) (string, bool, error) {
	return "", false, errBackendNotConfigured
}
