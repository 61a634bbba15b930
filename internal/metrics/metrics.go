package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	listeners = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portpatrol",
		Name:      "listeners",
		Help:      "Number of listening TCP sockets in the monitored ranges.",
	})

	scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portpatrol",
		Name:      "scan_duration_seconds",
		Help:      "Latency of port scans in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	scanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portpatrol",
		Name:      "scan_errors_total",
		Help:      "Total number of failed port scans.",
	})

	killOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portpatrol",
		Name:      "kill_outcomes_total",
		Help:      "Terminal outcomes of kill attempts, by verdict.",
	}, []string{"verdict"})

	configReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portpatrol",
		Name:      "config_reloads_total",
		Help:      "Configuration reload attempts, by result.",
	}, []string{"result"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portpatrol",
		Name:      "build_info",
		Help:      "Build metadata for the running portpatrol binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(listeners, scanDuration, scanErrors, killOutcomes, configReloads, buildInfo)
}

// Registry returns the Prometheus registry containing all portpatrol
// metrics.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveScan records the latency of a successful scan and the listener
// count it produced.
func ObserveScan(d time.Duration, count int) {
	scanDuration.Observe(d.Seconds())
	listeners.Set(float64(count))
}

// IncrementScanError counts a failed scan.
func IncrementScanError() {
	scanErrors.Inc()
}

// IncrementKillOutcome counts one terminal kill verdict.
func IncrementKillOutcome(verdict string) {
	if verdict == "" {
		verdict = "unknown"
	}
	killOutcomes.WithLabelValues(verdict).Inc()
}

// IncrementConfigReload counts a reload attempt.
func IncrementConfigReload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	configReloads.WithLabelValues(result).Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
