package kb

import "strings"

// PropertyMatch is one hit from searchProperties: a property belonging to
// a specific node type.
type PropertyMatch struct {
	NodeType string `json:"nodeType"`
	Property PropertyDescriptor `json:"property"`
}

// searchProperties finds properties across the catalog whose name, path,
// or description match query, optionally narrowed to a single node type
// (spec §4.A property search, used by the AI-friendly profile to explain
// "what parameters does this node take").
func (s *Store) searchProperties(query, nodeType string) ([]PropertyMatch, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	var rows []struct {
		NodeType    string `db:"node_type"`
		Path        string `db:"path"`
		Name        string `db:"name"`
		Description string `db:"description"`
		TypeTag     string `db:"type_tag"`
	}

	sqlQuery := `SELECT node_type, path, name, description, type_tag FROM property_fts`
	var args []any
	if nodeType != "" {
		sqlQuery += ` WHERE node_type = ?`
		args = append(args, nodeType)
	}
	if err := s.db.Select(&rows, sqlQuery, args...); err != nil {
		return nil, err
	}

	out := make([]PropertyMatch, 0)
	for _, r := range rows {
		if query != "" && !strings.Contains(strings.ToLower(r.Name+" "+r.Path+" "+r.Description), query) {
			continue
		}
		out = append(out, PropertyMatch{
			NodeType: r.NodeType,
			Property: PropertyDescriptor{
				Name:        r.Name,
				Path:        r.Path,
				TypeTag:     r.TypeTag,
				Description: r.Description,
			},
		})
	}
	return out, nil
}
