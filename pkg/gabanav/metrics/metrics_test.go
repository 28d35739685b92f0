package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "test")
	require.NoError(t, err)

	p.EntryCreated(false)
	p.EntryCreated(false)
	p.EntryCreated(true)
	p.EntryDestroyed(false)
	p.TransitionStarted("interrupt")
	p.TransitionSettled()
	p.TransitionSuperseded()

	assert.Equal(t, 2.0, testutil.ToFloat64(p.entriesCreated.WithLabelValues("entry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.liveEntries.WithLabelValues("entry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.liveEntries.WithLabelValues("scoped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transitions.WithLabelValues("interrupt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.settled))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.superseded))
}

func TestPrometheusReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheus(reg, "")
	require.NoError(t, err)
	second, err := NewPrometheus(reg, "")
	require.NoError(t, err)

	first.TransitionSettled()
	second.TransitionSettled()
	assert.Equal(t, 2.0, testutil.ToFloat64(first.settled))
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop{}, OrNop(nil))
	p, err := NewPrometheus(nil, "")
	require.NoError(t, err)
	assert.Same(t, p, OrNop(p))
}
