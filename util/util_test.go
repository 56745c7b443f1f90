package util_test

import (
	"fmt"
	"testing"

	"github.com/nasa-jpl/steplab/util"
)

func ExampleClamp() {
	fmt.Println(util.Clamp(11., 0., 10.))
	// Output: 10
}

func TestClampHigh(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = 20.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampLow(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = -1.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampIntTruncates(t *testing.T) {
	cases := []struct {
		input, low, high, expected int
	}{
		{9999999, 1, 5000, 5000},
		{0, 1, 5000, 1},
		{2500, 1, 5000, 2500},
		{-9000000, -8388607, 8388607, -8388607},
	}
	for _, tc := range cases {
		out := util.ClampInt(tc.input, tc.low, tc.high)
		if out != tc.expected {
			t.Errorf("ClampInt(%d, %d, %d) = %d, expected %d", tc.input, tc.low, tc.high, out, tc.expected)
		}
	}
}
