/*
Package config loads and validates the playlistbridged configuration.

# Configuration Sources

LoadWithKoanf layers three sources, each overriding the one before it:

  - Built-in defaults (defaultConfig)
  - An optional YAML file: the path in CONFIG_PATH if that file exists,
    otherwise the first existing entry of DefaultConfigPaths
  - Environment variables, mapped to config keys by envTransformFunc;
    variables without a mapping are ignored

After the layers are merged, DATABASE_PATH (when set) replaces
database.path, the Soulseek base URL and transfer path are rewritten for
container deployments (RewriteContainerHost, RewriteWindowsTransferPath),
and the result is checked by Config.Validate.

# Configuration Structure

Config groups its settings by component:

  - Database: catalog file path, busy timeout, lock-retry count and base delay
  - MediaServer: primary/secondary backend name, URL, token and enable flag,
    music library name, id validation pattern
  - RemoteProvider: playlist provider base URL, client credentials, timeout
  - Soulseek: transfer-daemon URL, search timeouts, transfer path, search
    rate limit, search-history pruning thresholds, ignored users, title
    blacklist
  - PlaylistSync: backup, download-missing and enqueue-pause settings
  - QualityProfile: per-format waterfall tiers and the fallback flag
  - Server: HTTP host, port, timeout, CORS origins, request rate limit
  - Logging: level, format, caller flag

# Environment Variables

Examples of the mapping (envTransformFunc holds the full table):

  - DATABASE_PATH -> database.path
  - MEDIA_SERVER_PRIMARY_URL -> media_server.primary_url
  - SOULSEEK_BASE_URL -> soulseek.base_url
  - HTTP_PORT -> server.port
  - LOG_LEVEL -> logging.level

CORS_ORIGINS, SOULSEEK_IGNORED_USERS and SOULSEEK_TITLE_BLACKLIST take
comma-separated lists. The quality tier map has no environment mapping and
can only be set in the YAML file.

# Validation

Validate rejects an empty database path; for an enabled media server, a
URL that is not a bare http(s) base URL or a backend name other than plex,
jellyfin or navidrome; a set Soulseek base URL that is not a bare http(s)
base URL; a non-positive search rate limit; a search-history keep count
above its trigger; an enabled quality tier whose min_mb exceeds max_mb; and
a server port outside 1-65535.

# Usage Example

	import "github.com/playlistbridge/playlistbridge/internal/config"

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("Database: %s\n", cfg.Database.Path)
*/
package config
