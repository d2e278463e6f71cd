package cohort

import (
	"fmt"
	"math"
	"strconv"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// FitKey identifies one fitted slope in the flattened result mapping.
type FitKey struct {
	Subject   core.SubjectID
	Channel   string
	Condition eeg.Condition
}

// Row is one subject's line in the result table.
type Row struct {
	Subject  core.SubjectID
	Group    string
	Age      int
	Sex      string
	NWindows map[eeg.Condition]int
	Slopes   map[ChannelCondition]float64 // NaN marks a missing value
}

// Table is the cohort result: one row per subject, one slope column
// per (channel, condition). Column order is deterministic: identity and
// metadata columns first, then eyes-closed slopes in channel order,
// then eyes-open slopes.
type Table struct {
	Channels []string
	Rows     []Row
}

// BuildTable assembles the result table from fitted subjects, in the
// given subject order. Every subject's channel list must match the
// fixed channel order exactly; a mismatch is a fatal error, not a
// silently tolerated reordering.
func BuildTable(subjects []*Subject, channels []string) (*Table, error) {
	t := &Table{Channels: channels}
	for _, s := range subjects {
		if s.Stage() != StageSlopesFitted {
			return nil, fmt.Errorf("%w: subject %s at stage %s, want %s",
				core.ErrInvalidState, s.ID, s.Stage(), StageSlopesFitted)
		}
		if err := checkChannels(s, channels); err != nil {
			return nil, err
		}

		row := Row{
			Subject:  s.ID,
			Group:    s.Group,
			Age:      s.Age,
			Sex:      s.Sex,
			NWindows: make(map[eeg.Condition]int, len(eeg.Conditions())),
			Slopes:   make(map[ChannelCondition]float64, len(channels)*len(eeg.Conditions())),
		}
		for _, cond := range eeg.Conditions() {
			row.NWindows[cond] = s.WindowCounts[cond]
			for _, ch := range channels {
				key := ChannelCondition{Channel: ch, Condition: cond}
				fit, ok := s.Fits[key]
				if !ok || !fit.Valid {
					row.Slopes[key] = math.NaN()
					continue
				}
				row.Slopes[key] = fit.Slope
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func checkChannels(s *Subject, channels []string) error {
	got := s.Recording.Channels
	if len(got) != len(channels) {
		return fmt.Errorf("%w: subject %s has %d channels, run has %d",
			core.ErrChannelMismatch, s.ID, len(got), len(channels))
	}
	for i := range channels {
		if got[i] != channels[i] {
			return fmt.Errorf("%w: subject %s channel %d is %q, run has %q",
				core.ErrChannelMismatch, s.ID, i, got[i], channels[i])
		}
	}
	return nil
}

// Header returns the column names in export order.
func (t *Table) Header() []string {
	cols := []string{"SUBJECT", "CLASS", "AGE", "SEX", "NWINDOWS_EYESC", "NWINDOWS_EYESO"}
	for _, cond := range eeg.Conditions() {
		for _, ch := range t.Channels {
			cols = append(cols, ch+"_"+string(cond))
		}
	}
	return cols
}

// Records renders all rows as strings in header order, suitable for
// CSV export. Missing slopes render as empty cells.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := []string{
			string(row.Subject),
			row.Group,
			strconv.Itoa(row.Age),
			row.Sex,
			strconv.Itoa(row.NWindows[eeg.EyesClosed]),
			strconv.Itoa(row.NWindows[eeg.EyesOpen]),
		}
		for _, cond := range eeg.Conditions() {
			for _, ch := range t.Channels {
				v := row.Slopes[ChannelCondition{Channel: ch, Condition: cond}]
				if math.IsNaN(v) {
					rec = append(rec, "")
					continue
				}
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		out = append(out, rec)
	}
	return out
}

// Flatten re-keys the table by (subject, channel, condition). Missing
// values are omitted. Tabulating then flattening reproduces the
// original fit mapping exactly.
func (t *Table) Flatten() map[FitKey]float64 {
	out := make(map[FitKey]float64)
	for _, row := range t.Rows {
		for key, v := range row.Slopes {
			if math.IsNaN(v) {
				continue
			}
			out[FitKey{Subject: row.Subject, Channel: key.Channel, Condition: key.Condition}] = v
		}
	}
	return out
}
