package kb

import "sort"

var severityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// breakingChanges returns the descriptor's breaking changes applicable when
// upgrading from fromVersion, ordered by severity (high first) and then by
// whether the step is auto-migratable, so the typeversion-upgrade autofix
// generator can present the most consequential change first (spec §4.A,
// §4.D typeversion-upgrade).
func (s *Store) breakingChanges(nodeType string, fromVersion float64) ([]BreakingChangeEntry, error) {
	d, err := s.lookupByType(nodeType)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	applicable := make([]BreakingChangeEntry, 0, len(d.BreakingChanges))
	for _, bc := range d.BreakingChanges {
		if bc.FromVersion >= fromVersion {
			applicable = append(applicable, bc)
		}
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		si, sj := severityRank[applicable[i].Severity], severityRank[applicable[j].Severity]
		if si != sj {
			return si < sj
		}
		if applicable[i].AutoMigratable != applicable[j].AutoMigratable {
			return applicable[i].AutoMigratable
		}
		return applicable[i].FromVersion < applicable[j].FromVersion
	})

	return applicable, nil
}
