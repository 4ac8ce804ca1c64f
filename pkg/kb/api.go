package kb

// SimilarTypes is the exported entry point for fuzzy node-type correction
// (spec §4.A similarTypes), used directly by command-line "did you mean"
// output and by pkg/validate's per-node schema stage.
func (s *Store) SimilarTypes(badType string, limit int) ([]SimilarType, error) {
	return s.similarTypes(badType, limit)
}

// BreakingChanges is the exported entry point for version-currency checks
// and the typeversion-upgrade autofix generator (spec §4.A breakingChanges).
func (s *Store) BreakingChanges(nodeType string, fromVersion float64) ([]BreakingChangeEntry, error) {
	return s.breakingChanges(nodeType, fromVersion)
}

// SearchProperties is the exported entry point for property search (spec
// §4.A searchProperties).
func (s *Store) SearchProperties(query, nodeType string) ([]PropertyMatch, error) {
	return s.searchProperties(query, nodeType)
}
