package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/id"
	"sitebook/internal/domain/audit"
)

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, id.ID, string, any) error {
	return errors.New("db down")
}

func TestCountingRecorder(t *testing.T) {
	c := New(prometheus.NewRegistry())

	rec := c.WrapRecorder(audit.Nop{})
	require.NoError(t, rec.Record(context.Background(), "expense", id.New(), audit.ActionCreate, nil))
	require.NoError(t, rec.Record(context.Background(), "expense", id.New(), audit.ActionCreate, nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("expense", audit.ActionCreate)))

	failing := c.WrapRecorder(failingRecorder{})
	assert.Error(t, failing.Record(context.Background(), "expense", id.New(), audit.ActionDelete, nil))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.mutations.WithLabelValues("expense", audit.ActionDelete)))
}

func TestObserveRequest(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveRequest("/api/v1/admin/expenses", "POST", 201, 15*time.Millisecond)
	c.ObserveRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("/api/v1/admin/expenses", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("unmatched", "GET", "404")))
}
