package spectral

import (
	"errors"
	"testing"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

func rampSignal(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}

// TestWindowsCounts tests that each interval yields floor(len/winLen)
// non-overlapping windows and trailing partials are dropped.
func TestWindowsCounts(t *testing.T) {
	signal := rampSignal(1000)

	tests := []struct {
		name      string
		intervals []eeg.Interval
		winLen    int
		want      int
	}{
		{"exact fit", []eeg.Interval{{Start: 0, End: 1000}}, 100, 10},
		{"trailing partial dropped", []eeg.Interval{{Start: 0, End: 950}}, 100, 9},
		{"two intervals", []eeg.Interval{{Start: 0, End: 250}, {Start: 300, End: 550}}, 100, 4},
		{"interval shorter than window contributes nothing", []eeg.Interval{{Start: 0, End: 400}, {Start: 500, End: 550}}, 100, 4},
		{"end clamped to signal", []eeg.Interval{{Start: 800, End: 2000}}, 100, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wins, err := Windows(signal, test.intervals, test.winLen, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(wins) != test.want {
				t.Errorf("expected %d windows, got %d", test.want, len(wins))
			}
			for _, w := range wins {
				if len(w) != test.winLen {
					t.Errorf("expected window length %d, got %d", test.winLen, len(w))
				}
			}
		})
	}
}

// TestWindowsNoStraddle tests that windows never cross interval
// boundaries: the second interval's first window starts at its start.
func TestWindowsNoStraddle(t *testing.T) {
	signal := rampSignal(1000)
	intervals := []eeg.Interval{{Start: 0, End: 250}, {Start: 300, End: 550}}

	wins, err := Windows(signal, intervals, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wins) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(wins))
	}
	if wins[2][0] != 300 {
		t.Errorf("expected third window to start at sample 300, got %v", wins[2][0])
	}
	if wins[1][0] != 100 {
		t.Errorf("expected second window to start at sample 100, got %v", wins[1][0])
	}
}

// TestWindowsCap tests that a positive cap keeps the earliest windows.
func TestWindowsCap(t *testing.T) {
	signal := rampSignal(1000)
	intervals := []eeg.Interval{{Start: 0, End: 1000}}

	wins, err := Windows(signal, intervals, 100, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wins) != 3 {
		t.Fatalf("expected 3 windows under cap, got %d", len(wins))
	}
	for k, w := range wins {
		if w[0] != float64(k*100) {
			t.Errorf("window %d starts at sample %v, expected %d", k, w[0], k*100)
		}
	}
}

// TestWindowsInsufficient tests that a condition whose usable signal
// cannot host a single window is an explicit error, not zero windows.
func TestWindowsInsufficient(t *testing.T) {
	signal := rampSignal(1000)

	_, err := Windows(signal, []eeg.Interval{{Start: 0, End: 50}}, 100, 0)
	if !errors.Is(err, core.ErrNoWindows) {
		t.Errorf("expected ErrNoWindows, got %v", err)
	}
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected error to classify as insufficient data, got %v", err)
	}
}

func TestWindowsInvalidArguments(t *testing.T) {
	signal := rampSignal(100)
	intervals := []eeg.Interval{{Start: 0, End: 100}}

	if _, err := Windows(signal, intervals, 0, 0); err == nil {
		t.Error("expected error for zero window length")
	}
	if _, err := Windows(signal, intervals, 10, -1); err == nil {
		t.Error("expected error for negative cap")
	}
}

// TestRestrictEvents tests the trial-length modification: a 60-second
// condition at 10-second windows keeps its first three sub-epochs when
// restricted to [0, 3).
func TestRestrictEvents(t *testing.T) {
	const winLen = 5000 // 10 s at 500 Hz

	events := eeg.Events{
		eeg.EyesClosed: {{Start: 0, End: 30000}},
	}

	got := RestrictEvents(events, 0, 3, winLen)
	want := []eeg.Interval{{Start: 0, End: 15000}}
	if len(got[eeg.EyesClosed]) != 1 || got[eeg.EyesClosed][0] != want[0] {
		t.Errorf("expected %v, got %v", want, got[eeg.EyesClosed])
	}
}

// TestRestrictEventsAcrossIntervals tests that sub-epochs are counted
// across a condition's intervals in temporal order and contiguous
// segments merge.
func TestRestrictEventsAcrossIntervals(t *testing.T) {
	const winLen = 5000

	events := eeg.Events{
		eeg.EyesOpen: {
			{Start: 0, End: 12000},     // 2 sub-epochs, 2000 trailing samples unused
			{Start: 20000, End: 32000}, // 2 more sub-epochs
		},
	}

	t.Run("range spans intervals", func(t *testing.T) {
		got := RestrictEvents(events, 1, 3, winLen)[eeg.EyesOpen]
		want := []eeg.Interval{{Start: 5000, End: 10000}, {Start: 20000, End: 25000}}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("contiguous sub-epochs merge", func(t *testing.T) {
		got := RestrictEvents(events, 0, 2, winLen)[eeg.EyesOpen]
		want := []eeg.Interval{{Start: 0, End: 10000}}
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("range beyond available sub-epochs", func(t *testing.T) {
		got := RestrictEvents(events, 10, 20, winLen)[eeg.EyesOpen]
		if len(got) != 0 {
			t.Errorf("expected no intervals, got %v", got)
		}
	})
}
