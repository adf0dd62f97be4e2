package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_KeyAndFormat(t *testing.T) {
	period := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	cfg := DefaultConfig("EXP")
	assert.Equal(t, "EXP_2026", cfg.Key(period))
	assert.Equal(t, "EXP-2026-00042", cfg.Format(period, 42))

	cfg.ResetPeriod = ResetMonth
	assert.Equal(t, "EXP_2026_03", cfg.Key(period))

	plain := Config{Prefix: "TR", PadWidth: 3, ResetPeriod: ResetNever}
	assert.Equal(t, "TR", plain.Key(period))
	assert.Equal(t, "TR-007", plain.Format(period, 7))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("EXP-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("TR-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestMemoryGenerator(t *testing.T) {
	g := NewMemoryGenerator()
	ctx := context.Background()
	cfg := DefaultConfig("EXP")
	y26 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	y27 := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := g.GetNextNumber(ctx, cfg, nil, y26)
	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-00001", n)

	n, _ = g.GetNextNumber(ctx, cfg, nil, y27)
	assert.Equal(t, "EXP-2027-00001", n, "yearly series restart")

	require.NoError(t, g.SetNextNumber(ctx, cfg, y26, 99))
	n, _ = g.GetNextNumber(ctx, cfg, nil, y26)
	assert.Equal(t, "EXP-2026-00100", n)
}
