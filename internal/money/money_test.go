package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"25.98":  "25.98",
		"5":      "5.00",
		"3.2":    "3.20",
		"1.0392": "1.04",
		"1.005":  "1.01",
		"0":      "0.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$5.99", FormatUSD(decimal.RequireFromString("5.99")))
	assert.Equal(t, "-$0.50", FormatUSD(decimal.RequireFromString("-0.5")))
}

func TestHasCents(t *testing.T) {
	assert.True(t, HasCents(decimal.RequireFromString("12.99")))
	assert.True(t, HasCents(decimal.RequireFromString("12")))
	assert.False(t, HasCents(decimal.RequireFromString("12.999")))
}

func TestRound(t *testing.T) {
	assert.Equal(t, "3.20", Round(decimal.RequireFromString("3.1992")).StringFixed(2))
}
