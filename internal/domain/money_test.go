package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCentsFromAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole", 100, 10000},
		{"two decimals", 19.99, 1999},
		{"one decimal", 0.1, 10},
		{"sub-cent rounds half-up", 0.005, 1},
		{"drift-prone value", 29.07, 2907},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CentsFromAmount(tt.amount))
		})
	}
}

func TestAmountFromCents(t *testing.T) {
	assert.Equal(t, 19.99, AmountFromCents(1999))
	assert.Equal(t, 100.0, AmountFromCents(10000))
	assert.Equal(t, 0.01, AmountFromCents(1))
}

func TestAmountRoundTrip(t *testing.T) {
	for _, amount := range []float64{0.01, 0.1, 1.15, 19.99, 29.07, 100, 9999.99} {
		assert.Equal(t, amount, AmountFromCents(CentsFromAmount(amount)))
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
