package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var oneTimeRegister sync.Once

type prometheusSink struct {
	shardCount *prometheus.GaugeVec
	requests   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	failovers  *prometheus.CounterVec
}

var promMetrics *prometheusSink

// NewPrometheusSink creates a metrics sink for Prometheus. All sinks created
// by this function will write to the same collectors; the router ID used for
// the first call is the one that is used for the const label.
func NewPrometheusSink(routerID string) Sink {
	oneTimeRegister.Do(func() {
		labels := prometheus.Labels{
			"router": routerID,
		}
		promMetrics = &prometheusSink{
			shardCount: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace:   "sf",
					Subsystem:   "router",
					Name:        "shardCount",
					Help:        "Number of shards in the shard table",
					ConstLabels: labels,
				},
				[]string{}),
			requests: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace:   "sf",
					Subsystem:   "router",
					Name:        "requests",
					Help:        "Calls dispatched to backend connections",
					ConstLabels: labels,
				},
				[]string{"address", "command"}),
			failures: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace:   "sf",
					Subsystem:   "router",
					Name:        "failures",
					Help:        "Failed calls per backend connection",
					ConstLabels: labels,
				},
				[]string{"address", "command", "reason"}),
			failovers: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace:   "sf",
					Subsystem:   "router",
					Name:        "failovers",
					Help:        "Cascade steps away from a failed connection",
					ConstLabels: labels,
				},
				[]string{"address"}),
		}
		prometheus.MustRegister(promMetrics.shardCount)
		prometheus.MustRegister(promMetrics.requests)
		prometheus.MustRegister(promMetrics.failures)
		prometheus.MustRegister(promMetrics.failovers)
	})
	return promMetrics
}

func (p *prometheusSink) SetShardCount(shards int) {
	p.shardCount.With(prometheus.Labels{}).Set(float64(shards))
}

func (p *prometheusSink) LogRequest(address, command string) {
	p.requests.With(prometheus.Labels{
		"address": address,
		"command": command,
	}).Inc()
}

func (p *prometheusSink) LogFailure(address, command, reason string) {
	p.failures.With(prometheus.Labels{
		"address": address,
		"command": command,
		"reason":  reason,
	}).Inc()
}

func (p *prometheusSink) LogFailover(address string) {
	p.failovers.With(prometheus.Labels{
		"address": address,
	}).Inc()
}
