// Package metrics exposes run counters through a dedicated Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/cctv-weather/internal/weather"
)

const namespace = "cctv_weather"

// Collector implements weather.Metrics.
type Collector struct {
	Registry *prometheus.Registry

	cameras         *prometheus.CounterVec
	classifications *prometheus.CounterVec
	mismatches      prometheus.Counter
	runDuration     prometheus.Gauge
	lastRun         prometheus.Gauge
	cacheHits       prometheus.GaugeFunc
	cacheMisses     prometheus.GaugeFunc
}

// CacheStats is satisfied by store.ForecastCache.
type CacheStats interface {
	Stats() (hits, misses int)
}

// New registers every collector on a fresh registry. cache may be nil.
func New(cache CacheStats) *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		cameras: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cameras_total",
			Help:      "Cameras processed, by outcome (recorded or dropped).",
		}, []string{"outcome"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Visual classifications, by condition.",
		}, []string{"condition"}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_mismatches_total",
			Help:      "Records whose visual classification differs from the forecast.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	c.Registry.MustRegister(c.cameras, c.classifications, c.mismatches, c.runDuration, c.lastRun)

	if cache != nil {
		c.cacheHits = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_cache_hits",
			Help:      "Forecast lookups served from the per-run cache.",
		}, func() float64 {
			hits, _ := cache.Stats()
			return float64(hits)
		})
		c.cacheMisses = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_requests",
			Help:      "Forecast lookups that went to the forecast service.",
		}, func() float64 {
			_, misses := cache.Stats()
			return float64(misses)
		})
		c.Registry.MustRegister(c.cacheHits, c.cacheMisses)
	}

	return c
}

func (c *Collector) CameraRecorded(visual weather.Condition) {
	c.cameras.WithLabelValues("recorded").Inc()
	c.classifications.WithLabelValues(string(visual)).Inc()
}

func (c *Collector) CameraDropped() {
	c.cameras.WithLabelValues("dropped").Inc()
}

func (c *Collector) RunCompleted(report weather.Report) {
	for _, r := range report.Records {
		if r.Mismatch() {
			c.mismatches.Inc()
		}
	}
	c.runDuration.Set(report.Finished.Sub(report.Started).Seconds())
	c.lastRun.Set(float64(report.Finished.Unix()))
}

// WriteTextfile writes the current metrics in the text exposition format,
// for pickup by a node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Registry)
}
