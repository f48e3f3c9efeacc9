// Package metrics publishes the clock tree's state to Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var registerMetrics sync.Once

// Namespace prefixes every metric this daemon exposes.
const Namespace = "clocktree"

// NodeName is attached to every sample; set on startup.
var NodeName string

var (
	// ConfiguredFrequency is the cached configured rate per clock domain.
	ConfiguredFrequency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "configured_frequency_hertz",
			Help:      "Last successfully configured frequency per clock domain",
		}, []string{"clock", "node"})

	// Divisor is the integer divisor per clock domain.
	Divisor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "divisor",
			Help:      "Integer clock divisor per clock domain",
		}, []string{"clock", "node"})

	// SwitchTotal counts source-switch attempts by outcome.
	SwitchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "switch_total",
			Help:      "Clock source switch attempts, by outcome",
		}, []string{"clock", "result"})

	// WatchdogFeeds counts watchdog re-arms.
	WatchdogFeeds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "watchdog_feeds_total",
			Help:      "Watchdog re-arm count",
		})

	// TickCount mirrors the free-running counter.
	TickCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "tick_count",
			Help:      "Free-running counter value in microseconds",
		})
)

// RegisterMetrics registers all collectors exactly once.
func RegisterMetrics(nodeName string) {
	registerMetrics.Do(func() {
		NodeName = nodeName
		prometheus.MustRegister(ConfiguredFrequency)
		prometheus.MustRegister(Divisor)
		prometheus.MustRegister(SwitchTotal)
		prometheus.MustRegister(WatchdogFeeds)
		prometheus.MustRegister(TickCount)

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prometheus.MustRegister(collectors.NewGoCollector())
	})
}

// UpdateClockMetrics records the post-configure state of one domain.
func UpdateClockMetrics(clock string, frequency, divisor float64) {
	ConfiguredFrequency.With(prometheus.Labels{"clock": clock, "node": NodeName}).Set(frequency)
	Divisor.With(prometheus.Labels{"clock": clock, "node": NodeName}).Set(divisor)
}

// CountSwitch records one switch attempt outcome ("success" or "failure").
func CountSwitch(clock, result string) {
	SwitchTotal.With(prometheus.Labels{"clock": clock, "result": result}).Inc()
}
