// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "megaflix"

var (
	// CacheOperationsTotal tracks response cache operations.
	// Labels:
	//   - operation: get, set, sweep
	//   - status: hit, miss, success, error, expired
	//   - cache_type: memory
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// UpstreamRequestsTotal tracks outbound calls to third-party providers.
	// Labels:
	//   - upstream: tmdb, embed
	//   - outcome: ok, status_error, transport_error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream requests",
		},
		[]string{"upstream", "outcome"},
	)

	// RelayBytesTotal counts bytes copied from the embed provider to clients.
	RelayBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_bytes_total",
			Help:      "Total number of bytes relayed to clients",
		},
	)

	// RelaysTotal tracks stream relay results.
	// Labels:
	//   - result: completed, aborted, upstream_status, upstream_unreachable
	RelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relays_total",
			Help:      "Total number of stream relays by result",
		},
		[]string{"result"},
	)

	// DBQueriesTotal tracks database queries.
	// Labels:
	//   - query_type: select, insert, upsert, delete
	//   - table: users, watchlist, history
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
	CacheStatusExpired = "expired"
)

// Cache operation type constants.
const (
	CacheOpGet   = "get"
	CacheOpSet   = "set"
	CacheOpSweep = "sweep"
)

// Cache type constants.
const (
	CacheTypeMemory = "memory"
)

// Upstream label constants.
const (
	UpstreamTMDB  = "tmdb"
	UpstreamEmbed = "embed"

	UpstreamOK             = "ok"
	UpstreamStatusError    = "status_error"
	UpstreamTransportError = "transport_error"
)

// Relay result constants.
const (
	RelayCompleted           = "completed"
	RelayAborted             = "aborted"
	RelayUpstreamStatus      = "upstream_status"
	RelayUpstreamUnreachable = "upstream_unreachable"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpsert = "upsert"
	DBQueryDelete = "delete"
)

// Table name constants.
const (
	TableUsers     = "users"
	TableWatchlist = "watchlist"
	TableHistory   = "history"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
