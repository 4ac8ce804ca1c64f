package kb

import (
	"sort"
	"strings"
)

// Search ranks node types against a free-text query using the selected
// mode (spec §4.A): OR matches any term, AND requires all terms, FUZZY
// falls back to similarity scoring for queries that look like a single
// misspelled type name. Short queries (under 6 characters) get a modest
// visibility boost since FTS5's BM25 otherwise buries them under longer,
// more term-dense descriptions.
func (s *Store) Search(query string, mode SearchMode, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if mode == "" {
		mode = SearchModeOR
	}

	if mode == SearchModeFuzzy {
		similar, err := s.similarTypes(query, limit)
		if err != nil {
			return nil, err
		}
		out := make([]SearchResult, 0, len(similar))
		for _, sim := range similar {
			d, err := s.lookupByType(sim.Type)
			if err != nil || d == nil {
				continue
			}
			out = append(out, SearchResult{Type: d.Type, DisplayName: d.DisplayName, Category: d.Category, Score: sim.Score})
		}
		return out, nil
	}

	if s.ftsAvailable() {
		results, err := s.searchFTS(query, mode, limit)
		if err == nil {
			return results, nil
		}
		storeLog.Printf("FTS search failed, falling back to LIKE: %v", err)
	}
	return s.searchLike(query, mode, limit)
}

func (s *Store) searchFTS(query string, mode SearchMode, limit int) ([]SearchResult, error) {
	match := ftsMatchExpr(query, mode)

	var rows []struct {
		Type        string  `db:"type"`
		DisplayName string  `db:"display_name"`
		Category    string  `db:"category"`
		Rank        float64 `db:"rank"`
	}
	err := s.db.Select(&rows, `
		SELECT type, display_name, category, bm25(node_fts) AS rank
		FROM node_fts WHERE node_fts MATCH ?
		ORDER BY rank LIMIT ?`, match, searchLimit(limit))
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		// bm25 returns lower-is-better (stronger matches are more negative);
		// map its magnitude onto a rough 0..1 band, higher is better, so
		// callers don't need to know the ranking function.
		score := negOrZero(r.Rank) / (1 + negOrZero(r.Rank))
		if len(query) < 6 {
			score = boostShortQuery(score)
		}
		out = append(out, SearchResult{Type: r.Type, DisplayName: r.DisplayName, Category: r.Category, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *Store) searchLike(query string, mode SearchMode, limit int) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var rows []struct {
		Type        string `db:"type"`
		DisplayName string `db:"display_name"`
		Category    string `db:"category"`
		Description string `db:"description"`
		Alias       string `db:"alias"`
	}
	if err := s.db.Select(&rows, `SELECT type, display_name, category, description, alias FROM nodes`); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0)
	for _, r := range rows {
		haystack := strings.ToLower(r.Type + " " + r.DisplayName + " " + r.Category + " " + r.Description + " " + r.Alias)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		if mode == SearchModeAND && matched != len(terms) {
			continue
		}
		score := float64(matched) / float64(len(terms))
		if len(query) < 6 {
			score = boostShortQuery(score)
		}
		out = append(out, SearchResult{Type: r.Type, DisplayName: r.DisplayName, Category: r.Category, Score: score})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func ftsMatchExpr(query string, mode SearchMode) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = strings.ReplaceAll(t, `"`, "")
	}
	sep := " OR "
	if mode == SearchModeAND {
		sep = " AND "
	}
	return strings.Join(terms, sep)
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return 25
	}
	return limit
}

func negOrZero(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// boostShortQuery nudges scores for queries under 6 characters upward,
// since terse queries ("if", "set") are usually exact alias lookups that
// BM25 would otherwise rank below longer fuzzy description matches.
func boostShortQuery(score float64) float64 {
	boosted := score*0.8 + 0.2
	if boosted > 1 {
		return 1
	}
	return boosted
}
