/*
Package metrics defines the daemon's Prometheus collectors.

Every collector is registered with the default registry when the package
is loaded (promauto), and internal/api's router serves them at /metrics
through promhttp.Handler().

# Available Metrics

Sync orchestrator:
  - playlistbridge_sync_runs_total (counter), label result
  - playlistbridge_sync_duration_seconds (histogram), label playlist
  - playlistbridge_sync_tracks_total (counter), label outcome
  - playlistbridge_syncs_in_flight (gauge)

Three-tier track resolver:
  - playlistbridge_resolver_tier_hits_total (counter), label tier:
    api, filesystem, catalog, miss
  - playlistbridge_match_confidence (histogram), label kind

Transfer-daemon adapter:
  - playlistbridge_daemon_requests_total (counter), labels operation and
    outcome (success, retried, failed)
  - playlistbridge_daemon_request_duration_seconds (histogram), label operation
  - playlistbridge_daemon_rate_limit_wait_seconds (histogram)
  - playlistbridge_daemon_active_searches (gauge)

Circuit breaker:
  - playlistbridge_circuit_breaker_state (gauge), label name;
    0=closed, 1=half-open, 2=open (see StateToFloat)
  - playlistbridge_circuit_breaker_requests_total (counter), labels name
    and outcome (success, failure, rejected)
  - playlistbridge_circuit_breaker_transitions_total (counter), labels
    name, from, to

Catalog store:
  - playlistbridge_catalog_query_duration_seconds (histogram), label operation
  - playlistbridge_catalog_busy_retries_total (counter), label operation
  - playlistbridge_wishlist_size (gauge)

Media-server adapter:
  - playlistbridge_mediaserver_cache_populations_total (counter), labels
    backend and outcome (complete, partial)
  - playlistbridge_mediaserver_playlist_writes_total (counter), labels
    backend, operation, outcome

# Usage

The package has no recording helpers besides StateToFloat; callers use
the exported collectors directly:

	metrics.DaemonActiveSearches.Inc()
	metrics.ResolverTierHits.WithLabelValues("api").Inc()

# Thread Safety

The Prometheus client library synchronizes every collector, so the
exported variables are safe for concurrent use.
*/
package metrics
