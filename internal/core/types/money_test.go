package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"-3.335", "-3.34"},
		{"1500", "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, MustMoney(tt.want).Equal(Round2(MustMoney(tt.in))), "got %s", Round2(MustMoney(tt.in)))
		})
	}
}

func TestMaxZeroAndMin(t *testing.T) {
	assert.True(t, MaxZero(MustMoney("-5")).IsZero())
	assert.True(t, MaxZero(MustMoney("5")).Equal(MustMoney("5")))
	assert.True(t, Min(MustMoney("3"), MustMoney("7")).Equal(MustMoney("3")))
	assert.True(t, Sum(MustMoney("1.10"), MustMoney("2.20"), MustMoney("3.30")).Equal(MustMoney("6.6")))
}
