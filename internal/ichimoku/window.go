package ichimoku

import (
	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// rollingExtreme computes the trailing-window extremum at every position
// using a monotonic index deque, O(n) total. keep reports whether cand
// displaces cur as the window extremum. Positions before window-1 are
// undefined.
func rollingExtreme(vals []float64, window int, keep func(cur, cand float64) bool) []models.Value {
	out := make([]models.Value, len(vals))
	deque := make([]int, 0, window)
	for i, v := range vals {
		for len(deque) > 0 && keep(vals[deque[len(deque)-1]], v) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		if deque[0] <= i-window {
			deque = deque[1:]
		}
		if i >= window-1 {
			out[i] = models.Defined(vals[deque[0]])
		}
	}
	return out
}

func rollingMax(vals []float64, window int) []models.Value {
	return rollingExtreme(vals, window, func(cur, cand float64) bool { return cand >= cur })
}

func rollingMin(vals []float64, window int) []models.Value {
	return rollingExtreme(vals, window, func(cur, cand float64) bool { return cand <= cur })
}

// midline is (rolling max(high) + rolling min(low)) / 2, the midpoint
// shared by Tenkan-sen, Kijun-sen and Senkou Span B.
func midline(high, low []float64, window int) []models.Value {
	hi := rollingMax(high, window)
	lo := rollingMin(low, window)
	out := make([]models.Value, len(hi))
	for i := range hi {
		if hi[i].Valid && lo[i].Valid {
			out[i] = models.Defined((hi[i].Float64 + lo[i].Float64) / 2)
		}
	}
	return out
}
