package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveResolution("schema", "ok", time.Now())
	m.ObserveResolution("schema", "notFound", time.Now())
	m.ObserveResolution("schema", "ok", time.Now())
	m.IncrementRegistration("revStatus", "finished")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("schema", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("schema", "notFound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("revStatus", "finished")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ResolutionDuration))
}
