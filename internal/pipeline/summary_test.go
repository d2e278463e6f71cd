package pipeline

import (
	"math"
	"testing"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

func summaryRow(subject, group string, closed, open float64) cohort.Row {
	return cohort.Row{
		Subject: core.SubjectID(subject),
		Group:   group,
		NWindows: map[eeg.Condition]int{
			eeg.EyesClosed: 6,
			eeg.EyesOpen:   6,
		},
		Slopes: map[cohort.ChannelCondition]float64{
			{Channel: "Fz", Condition: eeg.EyesClosed}: closed,
			{Channel: "Fz", Condition: eeg.EyesOpen}:   open,
		},
	}
}

// TestSummarize tests pooling, ordering and missing-value counting.
func TestSummarize(t *testing.T) {
	table := &cohort.Table{
		Channels: []string{"Fz"},
		Rows: []cohort.Row{
			summaryRow("s01", "YA", -2.0, -1.6),
			summaryRow("s02", "YA", -2.4, math.NaN()),
			summaryRow("s03", "OA", -1.5, -1.1),
		},
	}

	got := Summarize(table)
	if len(got) != 4 {
		t.Fatalf("expected 4 summaries (2 groups x 2 conditions), got %d", len(got))
	}

	// Groups sorted, conditions in canonical order within each group.
	wantOrder := []struct {
		group string
		cond  eeg.Condition
	}{
		{"OA", eeg.EyesClosed}, {"OA", eeg.EyesOpen},
		{"YA", eeg.EyesClosed}, {"YA", eeg.EyesOpen},
	}
	for i, w := range wantOrder {
		if got[i].Group != w.group || got[i].Condition != w.cond {
			t.Fatalf("summary %d: expected %s/%s, got %s/%s",
				i, w.group, w.cond, got[i].Group, got[i].Condition)
		}
	}

	yaClosed := got[2]
	if yaClosed.NumSubjects != 2 || yaClosed.NumSlopes != 2 || yaClosed.NumMissing != 0 {
		t.Errorf("unexpected YA/EYESC counts: %+v", yaClosed)
	}
	if math.Abs(yaClosed.Mean-(-2.2)) > 1e-9 {
		t.Errorf("expected YA/EYESC mean -2.2, got %v", yaClosed.Mean)
	}
	if math.Abs(yaClosed.Median-(-2.2)) > 1e-9 {
		t.Errorf("expected YA/EYESC median -2.2, got %v", yaClosed.Median)
	}

	yaOpen := got[3]
	if yaOpen.NumSlopes != 1 || yaOpen.NumMissing != 1 {
		t.Errorf("expected one missing YA/EYESO slope, got %+v", yaOpen)
	}
	if math.Abs(yaOpen.Mean-(-1.6)) > 1e-9 {
		t.Errorf("expected YA/EYESO mean -1.6, got %v", yaOpen.Mean)
	}
}
