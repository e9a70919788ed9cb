// Package mediaserver implements the uniform adapter over the two
// supported media-server backends (C3): connection lifecycle, aggressive
// library cache population, and playlist create/update/delete. The wire
// protocol for any concrete backend (Plex, Jellyfin) is out of scope —
// this package only depends on the Backend interface.
package mediaserver
