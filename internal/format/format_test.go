package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestPrice(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, Missing},
		{ptr(math.NaN()), Missing},
		{ptr(math.Inf(1)), Missing},
		{ptr(0), "0"},
		{ptr(0.5), "0.5"},
		{ptr(0.00012345), "0.00012345"},
		{ptr(0.000000001), "0"},
		{ptr(1), "1"},
		{ptr(153263.48), "153,263.48"},
		{ptr(1234567.125), "1,234,567.125"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Price(tc.in))
	}
}

func TestPct(t *testing.T) {
	assert.Equal(t, "+3.87%", Pct(ptr(3.87)))
	assert.Equal(t, "-3.87%", Pct(ptr(-3.87)))
	assert.Equal(t, "0.00%", Pct(ptr(0)))
	assert.Equal(t, "0.00%", Pct(ptr(-0.001)))
	assert.Equal(t, "+12.35%", Pct(ptr(12.345)))
	assert.Equal(t, Missing, Pct(nil))
}

func TestVol(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, Missing},
		{ptr(2.5e9), "2.50B"},
		{ptr(1234567), "1.23M"},
		{ptr(-2e6), "-2.00M"},
		{ptr(1500), "1.50K"},
		{ptr(999.5), "999.5"},
		{ptr(0.25), "0.25"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Vol(tc.in))
	}
}
