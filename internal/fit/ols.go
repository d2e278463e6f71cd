package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"neuroslope/domain/core"
)

// OLS fits by ordinary least squares, minimizing total squared vertical
// residual. Sensitive to outliers such as residual line-noise artifacts
// or unremoved oscillatory peaks.
type OLS struct{}

// Name returns the configuration selector for this strategy.
func (OLS) Name() string { return "linreg" }

// Fit returns the least-squares line through (x, y).
func (OLS) Fit(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("sample length mismatch: %d != %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, 0, fmt.Errorf("%w: %d samples", core.ErrInsufficientSamples, len(x))
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, 0, fmt.Errorf("%w: degenerate sample set (zero x variance)", core.ErrInsufficientSamples)
	}
	return beta, alpha, nil
}
