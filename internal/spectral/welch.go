package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// Estimator computes Welch-style averaged power spectral densities:
// a Hann-tapered periodogram per analysis window, arithmetic mean of
// power across windows at each frequency bin. Power is averaged in
// linear space, not log space, to preserve the expected-power meaning.
//
// The frequency grid is fully determined by (window length, sample
// rate), so one Estimator yields an identical grid for every channel
// and subject in a run.
type Estimator struct {
	sampleRate float64
	winLen     int
	fft        *fourier.FFT
	taper      []float64
	taperPower float64 // sum of squared taper coefficients
	freqs      []float64
}

// NewEstimator creates an estimator for the given sample rate and
// window length in samples.
func NewEstimator(sampleRate float64, winLen int) (*Estimator, error) {
	if sampleRate <= 0 {
		return nil, core.NewValidationError("sample_rate", "must be positive")
	}
	if winLen < 2 {
		return nil, core.NewValidationError("window_length", "must be at least 2 samples")
	}

	taper := make([]float64, winLen)
	for i := range taper {
		taper[i] = 1
	}
	window.Hann(taper)

	taperPower := 0.0
	for _, w := range taper {
		taperPower += w * w
	}

	fft := fourier.NewFFT(winLen)
	freqs := make([]float64, winLen/2+1)
	for i := range freqs {
		freqs[i] = fft.Freq(i) * sampleRate
	}

	return &Estimator{
		sampleRate: sampleRate,
		winLen:     winLen,
		fft:        fft,
		taper:      taper,
		taperPower: taperPower,
		freqs:      freqs,
	}, nil
}

// WindowLength returns the analysis window length in samples.
func (e *Estimator) WindowLength() int {
	return e.winLen
}

// Freqs returns the run-global frequency grid in Hz, monotonically
// increasing from DC to Nyquist.
func (e *Estimator) Freqs() []float64 {
	out := make([]float64, len(e.freqs))
	copy(out, e.freqs)
	return out
}

// AveragePSD computes the averaged one-sided PSD over a window
// sequence. An empty sequence is an explicit insufficient-data error;
// returning an all-zero spectrum would silently corrupt downstream
// fits.
func (e *Estimator) AveragePSD(windows [][]float64) (eeg.PSD, error) {
	if len(windows) == 0 {
		return eeg.PSD{}, fmt.Errorf("%w: no windows to average", core.ErrNoWindows)
	}

	power := make([]float64, len(e.freqs))
	tapered := make([]float64, e.winLen)
	for wi, win := range windows {
		if len(win) != e.winLen {
			return eeg.PSD{}, fmt.Errorf("window %d has %d samples, estimator expects %d", wi, len(win), e.winLen)
		}
		for i, v := range win {
			tapered[i] = v * e.taper[i]
		}
		coeffs := e.fft.Coefficients(nil, tapered)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			p := (re*re + im*im) / (e.sampleRate * e.taperPower)
			// One-sided density: double everything except DC and Nyquist.
			if k != 0 && !(e.winLen%2 == 0 && k == len(coeffs)-1) {
				p *= 2
			}
			power[k] += p
		}
	}

	inv := 1 / float64(len(windows))
	for k := range power {
		power[k] *= inv
	}

	return eeg.PSD{Freqs: e.Freqs(), Power: power}, nil
}
