package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the playlistbridged daemon.
type Config struct {
	Database       DatabaseConfig       `koanf:"database"`
	MediaServer    MediaServerConfig    `koanf:"media_server"`
	RemoteProvider RemoteProviderConfig `koanf:"remote_provider"`
	Soulseek       SoulseekConfig       `koanf:"soulseek"`
	PlaylistSync   PlaylistSyncConfig   `koanf:"playlist_sync"`
	QualityProfile QualityProfileConfig `koanf:"quality_profile"`
	Server         ServerConfig         `koanf:"server"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// DatabaseConfig configures the catalog store (C2).
type DatabaseConfig struct {
	Path           string        `koanf:"path"`
	BusyTimeout    time.Duration `koanf:"busy_timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// MediaServerConfig selects and configures the media-server backend (C3).
// Only one of Primary/Secondary need be enabled; both may run side by side
// as independent server_source values.
type MediaServerConfig struct {
	PrimaryBackend  string `koanf:"primary_backend"` // "plex", "jellyfin" or "navidrome"
	PrimaryURL      string `koanf:"primary_url"`
	PrimaryToken    string `koanf:"primary_token"`
	PrimaryEnabled  bool   `koanf:"primary_enabled"`

	SecondaryBackend string `koanf:"secondary_backend"`
	SecondaryURL     string `koanf:"secondary_url"`
	SecondaryToken   string `koanf:"secondary_token"`
	SecondaryEnabled bool   `koanf:"secondary_enabled"`

	MusicLibraryName string `koanf:"music_library_name"`

	// IDValidationPattern overrides the regexp used to decide whether a
	// library item id is well-formed enough to write into a playlist.
	// Spec §9's open question flags the "32 or 36 hex chars" rule as
	// backend-specific rather than universal; left empty, the adapter
	// falls back to that default.
	IDValidationPattern string `koanf:"id_validation_pattern"`

	// MetadataOnlyMode is loaded from config but read by nothing in the
	// daemon: the media-server adapter's PopulateCache always performs a
	// full pass, and metadata-only mode is only reachable through a
	// backend's own MetadataOnlyModeSetter.
	MetadataOnlyMode bool `koanf:"metadata_only_mode"`

	// PlaylistBatchSize is loaded from config but read by nothing in the
	// daemon: the media-server adapter always appends playlist ids in
	// batches of its fixed defaultPlaylistBatchSize (100).
	PlaylistBatchSize int `koanf:"playlist_batch_size"`
}

// RemoteProviderConfig configures the default resty-backed PlaylistProvider client.
type RemoteProviderConfig struct {
	BaseURL      string        `koanf:"base_url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Timeout      time.Duration `koanf:"timeout"`
}

// SoulseekConfig configures the transfer-daemon adapter (C4).
type SoulseekConfig struct {
	BaseURL             string        `koanf:"base_url"`
	SearchTimeout       time.Duration `koanf:"search_timeout"`
	SearchTimeoutBuffer time.Duration `koanf:"search_timeout_buffer"`
	TransferPath        string        `koanf:"transfer_path"`

	RateLimitMaxStarts int           `koanf:"rate_limit_max_starts"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`

	SearchHistoryTrigger int `koanf:"search_history_trigger"`
	SearchHistoryKeep    int `koanf:"search_history_keep"`

	IgnoredUsers   []string `koanf:"ignored_users"`
	TitleBlacklist []string `koanf:"title_blacklist"`
}

// PlaylistSyncConfig configures the sync orchestrator (C6).
type PlaylistSyncConfig struct {
	CreateBackup    bool          `koanf:"create_backup"`
	DownloadMissing bool          `koanf:"download_missing"`
	EnqueuePause    time.Duration `koanf:"enqueue_pause"`
}

// QualityTierConfig is one waterfall tier of a QualityProfileConfig (C5).
type QualityTierConfig struct {
	Enabled  bool    `koanf:"enabled"`
	MinMB    float64 `koanf:"min_mb"`
	MaxMB    float64 `koanf:"max_mb"`
	Priority int     `koanf:"priority"`
}

// QualityProfileConfig is the process-wide quality preference. It is loaded
// from config at startup but persisted into the catalog's metadata table so
// readers never have to fall back past a malformed or missing process default.
type QualityProfileConfig struct {
	Qualities       map[string]QualityTierConfig `koanf:"qualities"`
	FallbackEnabled bool                         `koanf:"fallback_enabled"`
}

// ServerConfig configures the control-plane HTTP surface.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the loaded configuration for internal consistency. It does
// not reach the network; URL shape only.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if c.MediaServer.PrimaryEnabled {
		if err := validateHTTPURL(c.MediaServer.PrimaryURL, "media_server.primary_url"); err != nil {
			return err
		}
		if !isValidMediaServerBackend(c.MediaServer.PrimaryBackend) {
			return fmt.Errorf("media_server.primary_backend must be \"plex\", \"jellyfin\", or \"navidrome\", got: %s", c.MediaServer.PrimaryBackend)
		}
	}
	if c.MediaServer.SecondaryEnabled {
		if err := validateHTTPURL(c.MediaServer.SecondaryURL, "media_server.secondary_url"); err != nil {
			return err
		}
		if !isValidMediaServerBackend(c.MediaServer.SecondaryBackend) {
			return fmt.Errorf("media_server.secondary_backend must be \"plex\", \"jellyfin\", or \"navidrome\", got: %s", c.MediaServer.SecondaryBackend)
		}
	}

	if c.Soulseek.BaseURL != "" {
		if err := validateHTTPURL(c.Soulseek.BaseURL, "soulseek.base_url"); err != nil {
			return err
		}
	}
	if c.Soulseek.RateLimitMaxStarts <= 0 {
		return fmt.Errorf("soulseek.rate_limit_max_starts must be positive")
	}
	if c.Soulseek.SearchHistoryKeep > c.Soulseek.SearchHistoryTrigger {
		return fmt.Errorf("soulseek.search_history_keep (%d) must not exceed search_history_trigger (%d)",
			c.Soulseek.SearchHistoryKeep, c.Soulseek.SearchHistoryTrigger)
	}

	for tier, q := range c.QualityProfile.Qualities {
		if q.Enabled && q.MinMB > q.MaxMB {
			return fmt.Errorf("quality_profile.qualities.%s: min_mb (%.2f) exceeds max_mb (%.2f)", tier, q.MinMB, q.MaxMB)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", c.Server.Port)
	}

	return nil
}

// isValidMediaServerBackend reports whether backend names a supported
// media-server adapter.
func isValidMediaServerBackend(backend string) bool {
	switch backend {
	case "plex", "jellyfin", "navidrome":
		return true
	default:
		return false
	}
}
