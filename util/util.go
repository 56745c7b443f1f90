// Package util contains misc internal utilities.
package util

// Clamp restricts a value to the range of [low, high]
func Clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// ClampInt restricts a value to the range of [low, high]
func ClampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
