package fit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"neuroslope/domain/core"
)

// RANSAC fits by robust consensus: candidate lines through random
// minimal subsets are scored by inlier count under a residual
// threshold, and the line with the largest consensus is refit by least
// squares on its inliers. Localized deviations from pure 1/f behavior
// (alpha leakage, line noise) land outside the consensus set instead of
// biasing the fit.
type RANSAC struct {
	MaxIters int
	rng      *rand.Rand
}

// NewRANSAC creates a RANSAC fitter seeded for reproducible runs.
func NewRANSAC(seed int64) *RANSAC {
	return &RANSAC{
		MaxIters: 100,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Name returns the configuration selector for this strategy.
func (r *RANSAC) Name() string { return "ransac" }

// Fit returns the consensus line through (x, y).
func (r *RANSAC) Fit(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("sample length mismatch: %d != %d", len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: %d samples", core.ErrInsufficientSamples, n)
	}

	// Residual threshold: median absolute deviation of y, the scale of
	// the response when no model is assumed.
	threshold := medianAbsDeviation(y)
	if threshold == 0 {
		// Constant response; any two distinct-x points define the line.
		return OLS{}.Fit(x, y)
	}

	bestCount := 0
	bestResid := math.Inf(1)
	var bestInliers []int

	for iter := 0; iter < r.MaxIters; iter++ {
		i := r.rng.Intn(n)
		j := r.rng.Intn(n)
		if i == j || x[i] == x[j] {
			continue
		}
		candSlope := (y[j] - y[i]) / (x[j] - x[i])
		candIntercept := y[i] - candSlope*x[i]

		count := 0
		resid := 0.0
		var inliers []int
		for k := 0; k < n; k++ {
			d := math.Abs(y[k] - (candIntercept + candSlope*x[k]))
			if d <= threshold {
				count++
				resid += d * d
				inliers = append(inliers, k)
			}
		}
		if count > bestCount || (count == bestCount && resid < bestResid) {
			bestCount = count
			bestResid = resid
			bestInliers = inliers
		}
	}

	if bestCount < 2 {
		return 0, 0, fmt.Errorf("%w: best consensus has %d inliers", core.ErrNoConsensus, bestCount)
	}

	// Refit on the consensus set.
	ix := make([]float64, len(bestInliers))
	iy := make([]float64, len(bestInliers))
	for k, idx := range bestInliers {
		ix[k] = x[idx]
		iy[k] = y[idx]
	}
	return OLS{}.Fit(ix, iy)
}

func medianAbsDeviation(v []float64) float64 {
	med := median(v)
	dev := make([]float64, len(v))
	for i, x := range v {
		dev[i] = math.Abs(x - med)
	}
	return median(dev)
}

func median(v []float64) float64 {
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
