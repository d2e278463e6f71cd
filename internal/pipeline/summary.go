package pipeline

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"neuroslope/domain/cohort"
	"neuroslope/domain/eeg"
)

// GroupSummary is a QA digest of fitted slopes for one group and
// condition, pooled across channels and subjects.
type GroupSummary struct {
	Group       string        `json:"group"`
	Condition   eeg.Condition `json:"condition"`
	NumSubjects int           `json:"num_subjects"`
	NumSlopes   int           `json:"num_slopes"`
	NumMissing  int           `json:"num_missing"`
	Mean        float64       `json:"mean"`
	Median      float64       `json:"median"`
	StdDev      float64       `json:"std_dev"`
}

// Summarize computes per-group per-condition slope summaries from the
// result table, in deterministic (group, condition) order. Intended for
// the run report and eyeball QA, not for inference.
func Summarize(t *cohort.Table) []GroupSummary {
	type key struct {
		group string
		cond  eeg.Condition
	}
	slopes := make(map[key][]float64)
	subjects := make(map[key]int)
	missing := make(map[key]int)

	for _, row := range t.Rows {
		for _, cond := range eeg.Conditions() {
			k := key{group: row.Group, cond: cond}
			subjects[k]++
			for _, ch := range t.Channels {
				v := row.Slopes[cohort.ChannelCondition{Channel: ch, Condition: cond}]
				if math.IsNaN(v) {
					missing[k]++
					continue
				}
				slopes[k] = append(slopes[k], v)
			}
		}
	}

	groups := make([]string, 0, len(subjects))
	seen := make(map[string]bool)
	for k := range subjects {
		if !seen[k.group] {
			seen[k.group] = true
			groups = append(groups, k.group)
		}
	}
	sort.Strings(groups)

	var out []GroupSummary
	for _, g := range groups {
		for _, cond := range eeg.Conditions() {
			k := key{group: g, cond: cond}
			vs := slopes[k]
			gs := GroupSummary{
				Group:       g,
				Condition:   cond,
				NumSubjects: subjects[k],
				NumSlopes:   len(vs),
				NumMissing:  missing[k],
			}
			if len(vs) > 0 {
				gs.Mean, _ = stats.Mean(vs)
				gs.Median, _ = stats.Median(vs)
				gs.StdDev, _ = stats.StandardDeviation(vs)
			}
			out = append(out, gs)
		}
	}
	return out
}
