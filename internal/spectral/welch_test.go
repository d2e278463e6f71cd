package spectral

import (
	"errors"
	"math"
	"testing"

	"neuroslope/domain/core"
)

func sineWindow(n int, freq, sampleRate float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return s
}

// TestEstimatorFreqs tests that the frequency grid runs from DC to
// Nyquist with spacing sampleRate/winLen.
func TestEstimatorFreqs(t *testing.T) {
	est, err := NewEstimator(500, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	freqs := est.Freqs()
	if len(freqs) != 2501 {
		t.Fatalf("expected 2501 bins, got %d", len(freqs))
	}
	if freqs[0] != 0 {
		t.Errorf("expected DC bin at 0 Hz, got %v", freqs[0])
	}
	if math.Abs(freqs[len(freqs)-1]-250) > 1e-9 {
		t.Errorf("expected Nyquist bin at 250 Hz, got %v", freqs[len(freqs)-1])
	}
	for i := 1; i < len(freqs); i++ {
		if math.Abs((freqs[i]-freqs[i-1])-0.1) > 1e-9 {
			t.Fatalf("expected 0.1 Hz spacing, got %v at bin %d", freqs[i]-freqs[i-1], i)
		}
	}
}

// TestAveragePSDSinePeak tests that a bin-aligned sinusoid concentrates
// its power at its own frequency bin.
func TestAveragePSDSinePeak(t *testing.T) {
	const (
		sampleRate = 500.0
		winLen     = 500 // 1 Hz bins
		sineFreq   = 10.0
	)

	est, err := NewEstimator(sampleRate, winLen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	psd, err := est.AveragePSD([][]float64{sineWindow(winLen, sineFreq, sampleRate)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	peak := 1
	for i := 2; i < len(psd.Power); i++ {
		if psd.Power[i] > psd.Power[peak] {
			peak = i
		}
	}
	if psd.Freqs[peak] != sineFreq {
		t.Errorf("expected peak at %v Hz, got %v Hz", sineFreq, psd.Freqs[peak])
	}
	// Away from the peak the Hann-tapered spectrum decays fast.
	if psd.Power[100] > psd.Power[peak]*1e-6 {
		t.Errorf("expected negligible power at 100 Hz, got %v (peak %v)", psd.Power[100], psd.Power[peak])
	}
}

// TestAveragePSDMean tests that averaging is an arithmetic mean in
// linear power: adding an all-zero window halves every bin.
func TestAveragePSDMean(t *testing.T) {
	const (
		sampleRate = 500.0
		winLen     = 500
	)

	est, err := NewEstimator(sampleRate, winLen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sine := sineWindow(winLen, 10, sampleRate)
	zeros := make([]float64, winLen)

	single, err := est.AveragePSD([][]float64{sine})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	averaged, err := est.AveragePSD([][]float64{sine, zeros})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !single.SameGrid(averaged) {
		t.Fatal("expected identical frequency grids")
	}
	for k := range single.Power {
		if math.Abs(averaged.Power[k]-single.Power[k]/2) > 1e-12*math.Max(1, single.Power[k]) {
			t.Fatalf("bin %d: expected %v, got %v", k, single.Power[k]/2, averaged.Power[k])
		}
	}
}

func TestAveragePSDNoWindows(t *testing.T) {
	est, err := NewEstimator(500, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = est.AveragePSD(nil)
	if !errors.Is(err, core.ErrNoWindows) {
		t.Errorf("expected ErrNoWindows, got %v", err)
	}
}

func TestAveragePSDLengthMismatch(t *testing.T) {
	est, err := NewEstimator(500, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := est.AveragePSD([][]float64{make([]float64, 400)}); err == nil {
		t.Error("expected error for mismatched window length")
	}
}

func TestNewEstimatorValidation(t *testing.T) {
	if _, err := NewEstimator(0, 500); err == nil {
		t.Error("expected error for non-positive sample rate")
	}
	if _, err := NewEstimator(500, 1); err == nil {
		t.Error("expected error for window shorter than 2 samples")
	}
}
