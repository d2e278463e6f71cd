package cohort

import (
	"sort"

	"neuroslope/domain/core"
)

// Demographics is the cohort metadata for one subject.
type Demographics struct {
	Group string
	Age   int
	Sex   string
}

// Roster maps subject identities to their cohort metadata.
type Roster map[core.SubjectID]Demographics

// MissingFrom returns, sorted, every discovered subject the roster does
// not cover. A non-empty result is a hard error for the whole run:
// silently dropping a subject would corrupt the cohort composition.
func (r Roster) MissingFrom(ids []core.SubjectID) []core.SubjectID {
	var missing []core.SubjectID
	for _, id := range ids {
		if _, ok := r[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
