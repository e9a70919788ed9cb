package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync orchestrator (C6) metrics.
var (
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_sync_runs_total",
			Help: "Total number of playlist sync attempts",
		},
		[]string{"result"}, // completed, cancelled, rejected, error
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlistbridge_sync_duration_seconds",
			Help:    "Duration of a full playlist sync pipeline",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"playlist"},
	)

	SyncTracksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_sync_tracks_total",
			Help: "Tracks processed by a sync, by outcome",
		},
		[]string{"outcome"}, // matched, downloaded, wishlisted, failed
	)

	SyncsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlistbridge_syncs_in_flight",
			Help: "Number of playlist syncs currently running",
		},
	)
)

// Three-tier track resolver (C2/C3/C6 §4.7) metrics.
var (
	ResolverTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_resolver_tier_hits_total",
			Help: "Track resolutions by the tier that produced the match",
		},
		[]string{"tier"}, // api, filesystem, catalog, miss
	)

	MatchConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlistbridge_match_confidence",
			Help:    "Confidence score distribution for catalog matches",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
		[]string{"kind"}, // track, album
	)
)

// Transfer-daemon adapter (C4) metrics.
var (
	DaemonRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_daemon_requests_total",
			Help: "Requests sent to the transfer daemon",
		},
		[]string{"operation", "outcome"}, // search, enqueue, status, cancel / success, retried, failed
	)

	DaemonRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlistbridge_daemon_request_duration_seconds",
			Help:    "Round-trip duration of transfer-daemon requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DaemonRateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlistbridge_daemon_rate_limit_wait_seconds",
			Help:    "Time a search spent waiting for the sliding-window rate limiter",
			Buckets: []float64{0, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	DaemonActiveSearches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlistbridge_daemon_active_searches",
			Help: "Number of searches currently being polled",
		},
	)
)

// Circuit breaker metrics, grounded on the teacher's internal/sync/circuit_breaker.go.
var (
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playlistbridge_circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_circuit_breaker_requests_total",
			Help: "Requests observed by a circuit breaker",
		},
		[]string{"name", "outcome"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// Catalog store (C2) metrics.
var (
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlistbridge_catalog_query_duration_seconds",
			Help:    "Duration of catalog store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogBusyRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_catalog_busy_retries_total",
			Help: "Retries performed after a database-busy error",
		},
		[]string{"operation"},
	)

	WishlistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlistbridge_wishlist_size",
			Help: "Current number of wishlist rows",
		},
	)
)

// Media-server adapter (C3) metrics.
var (
	MediaServerCachePopulations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_mediaserver_cache_populations_total",
			Help: "Aggressive cache population runs, by backend and outcome",
		},
		[]string{"backend", "outcome"}, // complete, partial
	)

	MediaServerPlaylistWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlistbridge_mediaserver_playlist_writes_total",
			Help: "Playlist create/update operations against the media server",
		},
		[]string{"backend", "operation", "outcome"},
	)
)

// StateToFloat converts a circuit breaker state string to the numeric value
// CircuitBreakerState expects. Centralized here so both the transfer adapter
// and its tests agree on the mapping.
func StateToFloat(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
