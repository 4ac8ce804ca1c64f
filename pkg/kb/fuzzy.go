package kb

import (
	"sort"
	"strings"
)

// knownAliasShortcuts maps common misspellings and legacy names directly to
// their current type, bypassing distance scoring entirely. Grown from
// observed correction requests; not exhaustive.
var knownAliasShortcuts = map[string]string{
	"httprequest":  "vendor-base.httpRequest",
	"http_request": "vendor-base.httpRequest",
	"postgresql":   "vendor-db.postgres",
	"mongo":        "vendor-db.mongoDb",
	"mysql":        "vendor-db.mySql",
	"googlesheet":  "vendor-google.sheets",
	"chatgpt":      "vendor-ai.lmChatOpenAi",
}

// similarTypes returns, best match first, up to limit candidate node types
// similar to the unrecognized input, using normalized Levenshtein distance
// with a shared-prefix bonus. Candidates scoring below SuggestionFloor are
// dropped entirely (spec §4.A).
func (s *Store) similarTypes(input string, limit int) ([]SimilarType, error) {
	if direct, ok := knownAliasShortcuts[strings.ToLower(input)]; ok {
		return []SimilarType{{Type: direct, Score: 1.0, Reason: "known alias"}}, nil
	}

	var rows []struct {
		Type        string `db:"type"`
		Alias       string `db:"alias"`
		DisplayName string `db:"display_name"`
	}
	if err := s.db.Select(&rows, `SELECT type, alias, display_name FROM nodes`); err != nil {
		return nil, err
	}

	candidates := make([]SimilarType, 0, len(rows))
	for _, r := range rows {
		best := scoreCandidate(input, r.Type)
		if s := scoreCandidate(input, r.Alias); s > best {
			best = s
		}
		if s := scoreCandidate(input, r.DisplayName); s > best {
			best = s
		}
		if best < SuggestionFloor {
			continue
		}
		reason := "similar name"
		if best >= AutoFixableThreshold {
			reason = "high-confidence match"
		}
		candidates = append(candidates, SimilarType{Type: r.Type, Score: best, Reason: reason})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// scoreCandidate returns a 0..1 similarity score between input and
// candidate: normalized Levenshtein distance with a bonus for a shared
// case-insensitive prefix of length >= 3.
func scoreCandidate(input, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	a := strings.ToLower(input)
	b := strings.ToLower(candidate)

	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	score := 1 - float64(dist)/float64(maxLen)

	prefix := sharedPrefixLen(a, b)
	if prefix >= 3 {
		score += 0.05 * float64(prefix) / float64(maxLen)
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func sharedPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// levenshtein computes the classic single-row edit distance between two
// strings, operating on bytes (node type identifiers are ASCII).
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
