package build

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records build activity. A nil *Metrics records nothing.
type Metrics struct {
	files    *prom.CounterVec
	duration prom.Histogram
	failures prom.Counter
}

// NewMetrics constructs the build metrics and registers them with reg.
// A nil reg uses a private registry.
func NewMetrics(reg prom.Registerer) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		files: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "quire",
			Name:      "build_files_total",
			Help:      "Files written to the output directory by kind",
		}, []string{"kind"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "quire",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		failures: prom.NewCounter(prom.CounterOpts{
			Namespace: "quire",
			Name:      "build_errors_total",
			Help:      "Builds that ended with an error",
		}),
	}
	reg.MustRegister(m.files, m.duration, m.failures)
	return m
}

func (m *Metrics) file(kind string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(kind).Inc()
}

func (m *Metrics) done(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.failures.Inc()
	}
}
