// Package metrics writes a finished report in the Prometheus text format so
// a node_exporter textfile collector can pick it up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/doeshing/sky-health/internal/domain"
)

const namespace = "sky_health"

// Collectors holds the gauges describing one run.
type Collectors struct {
	registry *prometheus.Registry
	checkUp  *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	up       prometheus.Gauge
}

// NewCollectors registers the run gauges on a fresh registry.
func NewCollectors() (*Collectors, error) {
	reg := prometheus.NewRegistry()
	checkUp := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_up",
			Help:      "Whether the check passed in the last run (1) or not (0).",
		},
		[]string{"check"},
	)
	duration := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "How long the check took in the last run.",
		},
		[]string{"check"},
	)
	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "up",
		Help:      "Whether every check passed in the last run.",
	})

	for _, c := range []prometheus.Collector{checkUp, duration, up} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return &Collectors{registry: reg, checkUp: checkUp, duration: duration, up: up}, nil
}

// Observe records report, replacing any previous values.
func (c *Collectors) Observe(report domain.HealthReport) {
	c.checkUp.Reset()
	c.duration.Reset()
	for _, res := range report.Results {
		c.checkUp.WithLabelValues(res.Name).Set(boolToFloat(res.OK))
		c.duration.WithLabelValues(res.Name).Set(res.Duration.Seconds())
	}
	c.up.Set(boolToFloat(report.OverallOK))
}

// WriteTextfile writes report to path atomically, creating the parent
// directory if needed. The file is left world-readable for the collector.
func WriteTextfile(path string, report domain.HealthReport) error {
	c, err := NewCollectors()
	if err != nil {
		return err
	}
	c.Observe(report)

	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	if err := os.Chmod(path, domain.PublicFilePermissions); err != nil {
		return fmt.Errorf("chmod metrics textfile: %w", err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
