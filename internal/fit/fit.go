// Package fit fits lines to log-log PSDs. The 1/f slope of neural
// background noise is linear in log-frequency vs log-power, so the
// fitted slope is the neural-noise exponent.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
	"neuroslope/domain/run"
	"neuroslope/ports"
)

// NewFitter returns the line-fitting strategy for a validated selector.
// The seed only affects the RANSAC strategy; runs with equal seeds and
// inputs produce identical fits.
func NewFitter(fn run.FittingFunc, seed int64) (ports.LineFitter, error) {
	switch fn {
	case run.FitLinreg:
		return OLS{}, nil
	case run.FitRANSAC:
		return NewRANSAC(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownFitter, fn)
	}
}

// SelectSamples filters a PSD to the fitting range [loFreq, hiFreq]
// with the open buffer band (bufLo, bufHi) excluded, and returns both
// axes log10-transformed. Bins with non-positive power carry no
// information in log space and are dropped. Fewer than two surviving
// samples is an explicit insufficient-samples error.
func SelectSamples(psd eeg.PSD, loFreq, hiFreq, bufLo, bufHi float64) (x, y []float64, err error) {
	for i, f := range psd.Freqs {
		if f < loFreq || f > hiFreq {
			continue
		}
		if f > bufLo && f < bufHi {
			continue
		}
		p := psd.Power[i]
		if p <= 0 {
			continue
		}
		x = append(x, math.Log10(f))
		y = append(y, math.Log10(p))
	}
	if len(x) < 2 {
		return nil, nil, fmt.Errorf("%w: %d samples in [%v, %v] Hz minus buffer (%v, %v)",
			core.ErrInsufficientSamples, len(x), loFreq, hiFreq, bufLo, bufHi)
	}
	return x, y, nil
}

// FitPSD selects the fitting band of one PSD record and fits a line
// with the given strategy, returning the slope fit with its quality.
func FitPSD(psd eeg.PSD, params run.Params, fitter ports.LineFitter) (cohort.SlopeFit, error) {
	x, y, err := SelectSamples(psd, params.FittingLoFreq, params.FittingHiFreq,
		params.PSDBufferLoFreq, params.PSDBufferHiFreq)
	if err != nil {
		return cohort.SlopeFit{}, err
	}

	slope, intercept, err := fitter.Fit(x, y)
	if err != nil {
		return cohort.SlopeFit{}, err
	}

	return cohort.SlopeFit{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(x, y, nil, intercept, slope),
		NumPoints: len(x),
		Valid:     true,
	}, nil
}
