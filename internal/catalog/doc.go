// Package catalog implements the durable local mirror of the media
// server's library (C2): artists, albums, tracks, the watchlist, the
// wishlist, and the discovery tables, backed by an embedded DuckDB file.
// Every exported operation opens and releases its own connection out of
// the package-held pool — callers never share a *sql.Tx across goroutines.
package catalog
