package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := Register(reg)
	require.NoError(t, err)

	m.ObserveQuery(OutcomeOK, 10*time.Millisecond, 3)
	m.ObserveQuery(OutcomeInvalid, 0, 0)
	m.CandidateExcluded()
	m.DocumentMaterialized(ModeParallel)
	m.DocumentMaterialized(ModeParallel)
	m.SetReorderPeak(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CandidatesExcluded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsMaterialized.WithLabelValues(ModeParallel)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ReorderBufferPeak))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := Register(reg)
	require.NoError(t, err)
	_, err = Register(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery(OutcomeOK, time.Second, 1)
		m.CandidateExcluded()
		m.DocumentMaterialized(ModeSingle)
		m.SetReorderPeak(1)
	})
}
