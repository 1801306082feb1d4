package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InterestDeclaredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interest_declared_total",
		Help: "Total number of interest declarations recorded",
	})

	DealsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_confirmed_total",
		Help: "Total number of deals confirmed by the match resolver",
	})

	ResolutionFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolution_failed_total",
		Help: "Total number of failed match resolutions",
	}, []string{"reason"})

	CommissionParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commission_parse_failures_total",
		Help: "Total number of price strings that could not be parsed",
	})

	DealsBilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_billed_total",
		Help: "Total number of deals marked billed",
	})

	ResolutionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_resolution_latency_seconds",
		Help:    "Latency of interest-to-resolution processing",
		Buckets: prometheus.DefBuckets,
	})

	StorageReadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_read_failures_total",
		Help: "Total number of collection reads that degraded to empty",
	}, []string{"collection"})

	SuggestionCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_cache_hits_total",
		Help: "Suggestion source cache lookups by result",
	}, []string{"result"})
)
