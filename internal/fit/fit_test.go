package fit

import (
	"errors"
	"math"
	"testing"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
	"neuroslope/domain/run"
)

// powerLawPSD builds a PSD that is exactly linear in log-log space:
// log10(power) = intercept + slope*log10(freq).
func powerLawPSD(maxFreq int, slope, intercept float64) eeg.PSD {
	freqs := make([]float64, maxFreq+1)
	power := make([]float64, maxFreq+1)
	for i := range freqs {
		freqs[i] = float64(i)
		if i > 0 {
			power[i] = math.Pow(10, intercept+slope*math.Log10(freqs[i]))
		}
	}
	return eeg.PSD{Freqs: freqs, Power: power}
}

func logLogLine(n int, slope, intercept float64) (x, y []float64) {
	for i := 0; i < n; i++ {
		xi := math.Log10(2 + float64(i))
		x = append(x, xi)
		y = append(y, intercept+slope*xi)
	}
	return x, y
}

// TestSelectSamplesBufferExclusion tests that the fitting range is
// closed at both ends while the buffer band is open: 7 and 14 Hz stay,
// everything strictly between them goes.
func TestSelectSamplesBufferExclusion(t *testing.T) {
	psd := powerLawPSD(30, -2, 1)

	x, _, err := SelectSamples(psd, 2, 24, 7, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kept := make(map[float64]bool)
	for _, xi := range x {
		kept[math.Round(math.Pow(10, xi))] = true
	}
	for _, f := range []float64{2, 7, 14, 24} {
		if !kept[f] {
			t.Errorf("expected %v Hz to survive selection", f)
		}
	}
	for _, f := range []float64{1, 8, 10, 13, 25, 30} {
		if kept[f] {
			t.Errorf("expected %v Hz to be excluded", f)
		}
	}
	// [2, 7] and [14, 24] at 1 Hz spacing.
	if len(x) != 17 {
		t.Errorf("expected 17 samples, got %d", len(x))
	}
}

// TestSelectSamplesNonPositivePower tests that zero-power bins are
// dropped rather than producing -Inf in log space.
func TestSelectSamplesNonPositivePower(t *testing.T) {
	psd := powerLawPSD(30, -2, 1)
	psd.Power[5] = 0

	x, y, err := SelectSamples(psd, 2, 24, 7, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(x) != 16 || len(y) != 16 {
		t.Errorf("expected 16 samples after dropping the zero bin, got %d", len(x))
	}
	for _, yi := range y {
		if math.IsInf(yi, 0) || math.IsNaN(yi) {
			t.Fatalf("log power contains non-finite value %v", yi)
		}
	}
}

func TestSelectSamplesInsufficient(t *testing.T) {
	psd := eeg.PSD{Freqs: []float64{0, 1, 2}, Power: []float64{0, 1, 1}}

	_, _, err := SelectSamples(psd, 10, 20, 12, 14)
	if !errors.Is(err, core.ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples, got %v", err)
	}
}

// TestOLSExactLine tests that OLS recovers a noiseless line exactly.
func TestOLSExactLine(t *testing.T) {
	x, y := logLogLine(20, -2, 1.5)

	slope, intercept, err := OLS{}.Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(slope-(-2)) > 1e-9 {
		t.Errorf("expected slope -2, got %v", slope)
	}
	if math.Abs(intercept-1.5) > 1e-9 {
		t.Errorf("expected intercept 1.5, got %v", intercept)
	}
}

func TestOLSDegenerate(t *testing.T) {
	if _, _, err := (OLS{}).Fit([]float64{1, 1, 1}, []float64{1, 2, 3}); !errors.Is(err, core.ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples for zero x variance, got %v", err)
	}
	if _, _, err := (OLS{}).Fit([]float64{1}, []float64{1}); !errors.Is(err, core.ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples for a single point, got %v", err)
	}
}

// TestRANSACCleanLine tests that RANSAC on outlier-free data agrees
// with OLS.
func TestRANSACCleanLine(t *testing.T) {
	x, y := logLogLine(20, -2, 1.5)

	slope, intercept, err := NewRANSAC(42).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(slope-(-2)) > 1e-9 {
		t.Errorf("expected slope -2, got %v", slope)
	}
	if math.Abs(intercept-1.5) > 1e-9 {
		t.Errorf("expected intercept 1.5, got %v", intercept)
	}
}

// TestRANSACRejectsOutlier tests the point of the strategy: a single
// large spike shifts the OLS slope but not the consensus slope.
func TestRANSACRejectsOutlier(t *testing.T) {
	x, y := logLogLine(30, -2, 1.5)
	y[25] += 3 // well outside the natural spread of the line

	olsSlope, _, err := OLS{}.Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(olsSlope-(-2)) < 0.01 {
		t.Fatalf("outlier did not move the OLS slope (got %v); test is vacuous", olsSlope)
	}

	slope, intercept, err := NewRANSAC(42).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(slope-(-2)) > 1e-9 {
		t.Errorf("expected consensus slope -2, got %v", slope)
	}
	if math.Abs(intercept-1.5) > 1e-9 {
		t.Errorf("expected consensus intercept 1.5, got %v", intercept)
	}
}

// TestRANSACDeterminism tests that equal seeds produce identical fits.
func TestRANSACDeterminism(t *testing.T) {
	x, y := logLogLine(30, -1.7, 0.4)
	for i := range y {
		y[i] += 0.01 * math.Sin(float64(i)) // deterministic jitter
	}

	s1, i1, err := NewRANSAC(7).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, i2, err := NewRANSAC(7).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1 != s2 || i1 != i2 {
		t.Errorf("same seed produced different fits: (%v, %v) vs (%v, %v)", s1, i1, s2, i2)
	}
}

func TestNewFitter(t *testing.T) {
	tests := []struct {
		fn       run.FittingFunc
		wantName string
		wantErr  bool
	}{
		{run.FitLinreg, "linreg", false},
		{run.FitRANSAC, "ransac", false},
		{"robust", "", true},
	}

	for _, test := range tests {
		fitter, err := NewFitter(test.fn, 1)
		if test.wantErr {
			if !errors.Is(err, core.ErrUnknownFitter) {
				t.Errorf("expected ErrUnknownFitter for %q, got %v", test.fn, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error for %q: %v", test.fn, err)
			continue
		}
		if fitter.Name() != test.wantName {
			t.Errorf("expected fitter %q, got %q", test.wantName, fitter.Name())
		}
	}
}

// TestFitPSDBufferInvariance tests that power inside the buffer band
// cannot influence the fit at all: a huge alpha-band spike leaves the
// result bit-identical.
func TestFitPSDBufferInvariance(t *testing.T) {
	params := run.DefaultParams()
	params.FittingFunc = run.FitLinreg

	clean := powerLawPSD(30, -2, 1)
	spiked := powerLawPSD(30, -2, 1)
	spiked.Power[10] *= 1e6 // 10 Hz, inside the (7, 14) buffer

	cleanFit, err := FitPSD(clean, params, OLS{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spikedFit, err := FitPSD(spiked, params, OLS{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cleanFit != spikedFit {
		t.Errorf("buffer-band spike changed the fit: %+v vs %+v", cleanFit, spikedFit)
	}
	if math.Abs(cleanFit.Slope-(-2)) > 1e-9 {
		t.Errorf("expected slope -2, got %v", cleanFit.Slope)
	}
	if !cleanFit.Valid {
		t.Error("expected a valid fit")
	}
	if cleanFit.RSquared < 0.999 {
		t.Errorf("expected R^2 near 1 on a perfect line, got %v", cleanFit.RSquared)
	}
}
