package utils

import "math"

// CreateRankList returns the ranks 1..count of an already sorted list.
// Ranks saturate at math.MaxUint16.
func CreateRankList(count int) []uint16 {
	ranks := make([]uint16, max(count, 0))
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}

// ClampLimit resolves a requested result count: non-positive requests take
// fallback, and the result never exceeds ceiling. A non-positive fallback
// means ceiling.
func ClampLimit(requested, fallback, ceiling int) int {
	limit := requested
	if limit < 1 {
		limit = fallback
	}
	if limit < 1 || limit > ceiling {
		limit = ceiling
	}
	return limit
}
