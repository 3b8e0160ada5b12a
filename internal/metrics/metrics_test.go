package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Tick()
	m.Tick()
	m.Born(1)
	m.Evolved("baby")
	m.Died("old_age")
	m.Saved("ok")
	m.Saved("restored")
	m.Loaded("backup")
	m.ActiveGeneration(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Births))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evolutions.WithLabelValues("baby")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deaths.WithLabelValues("old_age")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("restored")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Saves.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("backup")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Generation))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Tick()
		m.Born(1)
		m.Evolved("egg")
		m.Died("old_age")
		m.Saved("ok")
		m.Loaded("fresh")
		m.ActiveGeneration(2)
	})
}
