package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "sitebook/internal/core/numerator"
)

type row struct {
	val int64
}

func (r row) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.val
	return nil
}

// fakeSequences emulates the sys_sequences upserts.
type fakeSequences struct {
	mu    sync.Mutex
	vals  map[string]int64
	calls int
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{vals: make(map[string]int64)}
}

func (f *fakeSequences) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := args[0].(string)
	n := args[1].(int64)
	if strings.Contains(sql, "current_val + $2") {
		f.vals[key] += n
	} else {
		f.vals[key] = n
	}
	return row{val: f.vals[key]}
}

var period = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newFakeSequences()
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("EXP")

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newFakeSequences()
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("EXP")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
		assert.Equal(t, int64(i), corenumerator.ParseNumber(num))
	}
	assert.Equal(t, 1, q.calls, "one range covers ten numbers")
	assert.Equal(t, int64(10), q.vals["EXP_2026"])

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestSetNextNumber_DropsCachedRange(t *testing.T) {
	q := newFakeSequences()
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("EXP")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-00101", num)
}
