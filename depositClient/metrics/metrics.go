package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdeposit_deposits_built_total",
			Help: "Total number of deposit transactions built",
		},
		[]string{"asset"},
	)

	DepositBuildFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdeposit_deposit_build_failures_total",
			Help: "Total number of deposit builds aborted, by error code",
		},
		[]string{"asset", "code"},
	)

	DepositBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdeposit_deposit_build_duration_seconds",
			Help:    "Time spent building a deposit transaction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"asset"},
	)

	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdeposit_rpc_requests_total",
			Help: "Solana RPC requests by operation and result",
		},
		[]string{"operation", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdeposit_http_requests_total",
			Help: "API requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
