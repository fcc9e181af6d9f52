package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.IncrementPublished("schema")
	m.IncrementPublished("schema")
	m.IncrementRejected("revStatus", "conflict")
	m.ObserveLookup("credDef", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Published.WithLabelValues("schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishRejects.WithLabelValues("revStatus", "conflict")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupDuration))
}
