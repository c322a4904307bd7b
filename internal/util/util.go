package util

import (
	"math"
	"strconv"
)

// Round Method to round to 2 decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Clamp bounds v to [lo, hi].
func Clamp[T ~int | ~int64 | ~uint64](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// AtoiOr parses s as an int, falling back to def when s is empty or invalid.
func AtoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Percent returns part as a percentage of total, rounded to 2 decimals.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part) * 100 / float64(total))
}
