// Package metrics exposes prometheus collectors for balance computations, plans,
// recorded settlements and the balance cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

const namespace = "splitsettle"

// Recorder implements portssvc.MetricsRecorder on a prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	BalanceComputations   *prometheus.CounterVec
	BalanceComputationDur prometheus.Histogram
	PlanTransactions      prometheus.Histogram
	PlannerResiduals      prometheus.Counter
	SettlementsRecorded   *prometheus.CounterVec
	CacheRequests         *prometheus.CounterVec
}

// NewRecorder registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		BalanceComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_computations_total",
			Help:      "Group balance computations by outcome.",
		}, []string{"outcome"}),
		BalanceComputationDur: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_computation_seconds",
			Help:      "Time spent loading a group's ledger and aggregating balances.",
			Buckets:   prometheus.DefBuckets,
		}),
		PlanTransactions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_transactions",
			Help:      "Number of transfers in generated settlement plans.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		PlannerResiduals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planner_residual_total",
			Help:      "Plans that left unmatched residual balances.",
		}),
		SettlementsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settlement write attempts by outcome.",
		}, []string{"outcome"}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Balance cache lookups by result.",
		}, []string{"result"}),
	}
}

var _ portssvc.MetricsRecorder = (*Recorder)(nil)

func (r *Recorder) ObserveBalanceComputation(outcome string, elapsed time.Duration) {
	r.BalanceComputations.WithLabelValues(outcome).Inc()
	r.BalanceComputationDur.Observe(elapsed.Seconds())
}

func (r *Recorder) ObservePlan(entries int, hasResidual bool) {
	r.PlanTransactions.Observe(float64(entries))
	if hasResidual {
		r.PlannerResiduals.Inc()
	}
}

func (r *Recorder) ObserveSettlementRecorded(outcome string) {
	r.SettlementsRecorded.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheRequests.WithLabelValues(result).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
