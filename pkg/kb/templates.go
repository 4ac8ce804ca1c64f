package kb

import (
	"sort"
	"strings"
)

// GetTemplate looks up a single bundled template by id.
func (s *Store) GetTemplate(id string) (*TemplateRecord, error) {
	var row templateRow
	err := s.db.Get(&row, `
		SELECT id, name, description, workflow_json, node_count, views,
			complexity, category, tasks, services, setup_minutes
		FROM templates WHERE id = ?`, id)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		return nil, err
	}
	return row.toRecord()
}

// SearchTemplates ranks the bundled template catalog against a free-text
// query (spec §4.A templates_fts), following the same auto-detect-FTS,
// fall back to substring search approach as Search for node types.
func (s *Store) SearchTemplates(query string, limit int) ([]TemplateRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if s.ftsAvailable() {
		results, err := s.searchTemplatesFTS(query, limit)
		if err == nil {
			return results, nil
		}
		storeLog.Printf("template FTS search failed, falling back to LIKE: %v", err)
	}
	return s.searchTemplatesLike(query, limit)
}

func (s *Store) searchTemplatesFTS(query string, limit int) ([]TemplateRecord, error) {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = strings.ReplaceAll(t, `"`, "")
	}
	match := strings.Join(terms, " OR ")

	var ids []string
	err := s.db.Select(&ids, `
		SELECT id FROM templates_fts WHERE templates_fts MATCH ?
		ORDER BY rank LIMIT ?`, match, searchLimit(limit))
	if err != nil {
		return nil, err
	}

	out := make([]TemplateRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetTemplate(id)
		if err != nil || rec == nil {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *Store) searchTemplatesLike(query string, limit int) ([]TemplateRecord, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var rows []templateRow
	if err := s.db.Select(&rows, `
		SELECT id, name, description, workflow_json, node_count, views,
			complexity, category, tasks, services, setup_minutes
		FROM templates`); err != nil {
		return nil, err
	}

	type scored struct {
		rec   TemplateRecord
		score int
	}
	out := make([]scored, 0)
	for _, r := range rows {
		rec, err := r.toRecord()
		if err != nil {
			continue
		}
		haystack := strings.ToLower(rec.Name + " " + rec.Description + " " + strings.Join(rec.Tasks, " ") + " " + strings.Join(rec.Services, " "))
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, scored{rec: *rec, score: matched})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	records := make([]TemplateRecord, len(out))
	for i, s := range out {
		records[i] = s.rec
	}
	return records, nil
}

type templateRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	WorkflowJSON string `db:"workflow_json"`
	NodeCount    int    `db:"node_count"`
	Views        int    `db:"views"`
	Complexity   string `db:"complexity"`
	Category     string `db:"category"`
	Tasks        string `db:"tasks"`
	Services     string `db:"services"`
	SetupMinutes int    `db:"setup_minutes"`
}

func (r templateRow) toRecord() (*TemplateRecord, error) {
	var tasks, services []string
	if err := unmarshalIfSet(r.Tasks, &tasks); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(r.Services, &services); err != nil {
		return nil, err
	}
	return &TemplateRecord{
		ID: r.ID, Name: r.Name, Description: r.Description, WorkflowJSON: r.WorkflowJSON,
		NodeCount: r.NodeCount, Views: r.Views, Complexity: r.Complexity, Category: r.Category,
		Tasks: tasks, Services: services, SetupMinutes: r.SetupMinutes,
	}, nil
}
