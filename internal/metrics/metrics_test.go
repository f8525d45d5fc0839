package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Move("ok")
	m.Move("ok")
	m.Move("not_your_turn")
	m.Finished("won")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.moves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.moves.WithLabelValues("not_your_turn")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.finished.WithLabelValues("won")))
}

func TestActiveSessionsGauge(t *testing.T) {
	m := New()
	m.ActiveSessions(func() float64 { return 3 })

	expected := `
# HELP xo_active_sessions Sessions currently held by the registry.
# TYPE xo_active_sessions gauge
xo_active_sessions 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "xo_active_sessions"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Move("ok")
		m.Invitation(true)
		m.ActiveSessions(func() float64 { return 1 })
	})
}
