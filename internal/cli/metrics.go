package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/regulumdb/regulumdb/internal/metric"
)

// commandMetrics registers a fresh set of collectors for one command run.
// The registry is private so repeated runs in one process do not collide.
type commandMetrics struct {
	reg     *prometheus.Registry
	metrics *metric.Metrics
}

func newCommandMetrics() (*commandMetrics, error) {
	reg := prometheus.NewRegistry()
	m, err := metric.Register(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return &commandMetrics{reg: reg, metrics: m}, nil
}

// write dumps the collected samples in the Prometheus text format.
func (c *commandMetrics) write(w io.Writer) error {
	families, err := c.reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
