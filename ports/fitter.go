package ports

// LineFitter fits a line y = intercept + slope*x to a prepared sample
// set. For PSD slope fitting both axes are already log-transformed, so
// the returned slope is the 1/f exponent. Implementations must fail
// with an explicit error on fewer than two samples or when no fit can
// be established, never return a degenerate line.
type LineFitter interface {
	Name() string
	Fit(x, y []float64) (slope, intercept float64, err error)
}
