package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func TestBalance_ApplyPayment(t *testing.T) {
	tests := []struct {
		name        string
		start       Balance
		amount      string
		wantPending string
		wantAdvance string
	}{
		{"partial payment", Balance{money("1000"), money("0")}, "400", "600", "0"},
		{"exact payment", Balance{money("1000"), money("0")}, "1000", "0", "0"},
		{"overpayment becomes advance", Balance{money("1000"), money("0")}, "1500", "0", "500"},
		{"nothing pending", Balance{money("0"), money("200")}, "300", "0", "500"},
		{"fractional", Balance{money("10.50"), money("0")}, "10.75", "0", "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.ApplyPayment(money(tt.amount))
			require.NoError(t, err)
			assert.True(t, got.Pending.Equal(money(tt.wantPending)), "pending %s", got.Pending)
			assert.True(t, got.Advance.Equal(money(tt.wantAdvance)), "advance %s", got.Advance)
		})
	}
}

func TestBalance_RejectsNonPositive(t *testing.T) {
	_, err := Balance{}.ApplyPayment(money("0"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = Balance{}.ReversePayment(money("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestBalance_NeverNegative(t *testing.T) {
	b := Balance{Pending: money("250"), Advance: money("0")}
	payments := []string{"100", "300", "0.01", "75", "1000", "3"}

	for _, p := range payments {
		var err error
		b, err = b.ApplyPayment(money(p))
		require.NoError(t, err)
		assert.False(t, b.Pending.IsNegative())
		assert.False(t, b.Advance.IsNegative())
		b = b.AddDue(money("40"))
	}
}

func TestBalance_ReverseRestoresState(t *testing.T) {
	starts := []Balance{
		{money("1000"), money("0")},
		{money("100"), money("0")},
		{money("0"), money("0")},
	}
	amounts := []string{"1", "100", "1000", "1500"}

	for _, start := range starts {
		for _, a := range amounts {
			paid, err := start.ApplyPayment(money(a))
			require.NoError(t, err)
			back, err := paid.ReversePayment(money(a))
			require.NoError(t, err)
			assert.True(t, back.Pending.Equal(start.Pending), "pending after %s from %v", a, start)
			assert.True(t, back.Advance.Equal(start.Advance), "advance after %s from %v", a, start)
		}
	}
}

// With a pre-existing advance the reversal consumes that advance first, so the
// pair is not restored. This is the documented boundary of the rule.
func TestBalance_ReverseWithPriorAdvance(t *testing.T) {
	start := Balance{Pending: money("100"), Advance: money("50")}
	paid, err := start.ApplyPayment(money("30"))
	require.NoError(t, err)
	back, err := paid.ReversePayment(money("30"))
	require.NoError(t, err)

	assert.True(t, back.Pending.Equal(money("70")))
	assert.True(t, back.Advance.Equal(money("20")))
	assert.True(t, back.Pending.Add(back.Advance).Equal(money("90")))
}

func TestBalance_AddDueIgnoresNonPositive(t *testing.T) {
	b := Balance{Pending: money("5"), Advance: money("0")}
	assert.True(t, b.AddDue(money("-3")).Pending.Equal(money("5")))
	assert.True(t, b.AddDue(money("3")).Pending.Equal(money("8")))
}
