package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/playlistbridge/config.yaml",
	"/etc/playlistbridge/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DatabasePathEnvVar overrides the catalog file path directly, independent of
// the rest of the layered config (the one override the daemon's operators
// reach for most often when relocating the data volume).
const DatabasePathEnvVar = "DATABASE_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           "/data/playlistbridge.duckdb",
			BusyTimeout:    30 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 100 * time.Millisecond,
		},
		MediaServer: MediaServerConfig{
			PrimaryEnabled:   false,
			PrimaryBackend:   "plex",
			PrimaryURL:       "",
			PrimaryToken:     "",
			SecondaryEnabled: false,
			SecondaryBackend: "jellyfin",
			SecondaryURL:     "",
			SecondaryToken:   "",
			MusicLibraryName: "Music",
		},
		RemoteProvider: RemoteProviderConfig{
			BaseURL:      "",
			ClientID:     "",
			ClientSecret: "",
			Timeout:      10 * time.Second,
		},
		Soulseek: SoulseekConfig{
			BaseURL:             "",
			SearchTimeout:       10 * time.Second,
			SearchTimeoutBuffer: 5 * time.Second,
			TransferPath:        "",
			RateLimitMaxStarts:  35,
			RateLimitWindow:     220 * time.Second,
			SearchHistoryTrigger: 200,
			SearchHistoryKeep:    50,
			IgnoredUsers:         []string{},
			TitleBlacklist:       []string{},
		},
		PlaylistSync: PlaylistSyncConfig{
			CreateBackup:    true,
			DownloadMissing: true,
			EnqueuePause:    1 * time.Second,
		},
		QualityProfile: QualityProfileConfig{
			Qualities: map[string]QualityTierConfig{
				"flac":    {Enabled: true, MinMB: 0, MaxMB: 1024, Priority: 0},
				"mp3_320": {Enabled: true, MinMB: 0, MaxMB: 512, Priority: 1},
				"mp3_256": {Enabled: true, MinMB: 0, MaxMB: 512, Priority: 2},
				"mp3_192": {Enabled: false, MinMB: 0, MaxMB: 512, Priority: 3},
				"other":   {Enabled: false, MinMB: 0, MaxMB: 512, Priority: 4},
			},
			FallbackEnabled: true,
		},
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// DATABASE_PATH always wins, even over an explicit config file value,
	// since it is how containerized deployments relocate the data volume.
	if dbPath := os.Getenv(DatabasePathEnvVar); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	cfg.Soulseek.BaseURL = RewriteContainerHost(cfg.Soulseek.BaseURL)
	cfg.Soulseek.TransferPath = RewriteWindowsTransferPath(cfg.Soulseek.TransferPath)

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"soulseek.ignored_users",
	"soulseek.title_blacklist",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DATABASE_PATH -> database.path (also applied as a direct override, see LoadWithKoanf)
//   - MEDIA_SERVER_PRIMARY_URL -> media_server.primary_url
//   - SOULSEEK_BASE_URL -> soulseek.base_url
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Database
		"database_path":             "database.path",
		"database_busy_timeout":     "database.busy_timeout",
		"database_max_retries":      "database.max_retries",
		"database_retry_base_delay": "database.retry_base_delay",

		// Media server
		"media_server_primary_enabled":    "media_server.primary_enabled",
		"media_server_primary_backend":    "media_server.primary_backend",
		"media_server_primary_url":        "media_server.primary_url",
		"media_server_primary_token":      "media_server.primary_token",
		"media_server_secondary_enabled":  "media_server.secondary_enabled",
		"media_server_secondary_backend":  "media_server.secondary_backend",
		"media_server_secondary_url":      "media_server.secondary_url",
		"media_server_secondary_token":    "media_server.secondary_token",
		"media_server_music_library_name": "media_server.music_library_name",

		// Remote playlist provider
		"remote_provider_base_url":      "remote_provider.base_url",
		"remote_provider_client_id":     "remote_provider.client_id",
		"remote_provider_client_secret": "remote_provider.client_secret",
		"remote_provider_timeout":       "remote_provider.timeout",

		// Soulseek / transfer daemon
		"soulseek_base_url":              "soulseek.base_url",
		"soulseek_search_timeout":        "soulseek.search_timeout",
		"soulseek_search_timeout_buffer": "soulseek.search_timeout_buffer",
		"soulseek_transfer_path":         "soulseek.transfer_path",
		"soulseek_rate_limit_max_starts": "soulseek.rate_limit_max_starts",
		"soulseek_rate_limit_window":     "soulseek.rate_limit_window",
		"soulseek_search_history_trigger": "soulseek.search_history_trigger",
		"soulseek_search_history_keep":    "soulseek.search_history_keep",
		"soulseek_ignored_users":          "soulseek.ignored_users",
		"soulseek_title_blacklist":        "soulseek.title_blacklist",

		// Playlist sync
		"playlist_sync_create_backup":    "playlist_sync.create_backup",
		"playlist_sync_download_missing": "playlist_sync.download_missing",
		"playlist_sync_enqueue_pause":    "playlist_sync.enqueue_pause",

		// Quality profile fallback flag (tier map is config-file only)
		"quality_profile_fallback_enabled": "quality_profile.fallback_enabled",

		// Server
		"http_port":           "server.port",
		"http_host":           "server.host",
		"http_timeout":        "server.timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
