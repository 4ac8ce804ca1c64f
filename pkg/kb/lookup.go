package kb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Lookup retrieves the full descriptor for a fully qualified node type.
// Callers needing alias expansion first should use ExpandAlias.
func (s *Store) Lookup(nodeType string) (*NodeTypeDescriptor, error) {
	return s.lookupByType(nodeType)
}

func (s *Store) lookupByType(nodeType string) (*NodeTypeDescriptor, error) {
	var row nodeRow
	err := s.db.Get(&row, `SELECT * FROM nodes WHERE type = ?`, nodeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kb: lookup %s: %w", nodeType, err)
	}
	return row.toDescriptor()
}

// ExpandAlias resolves a short-form alias (e.g. "webhook") or an already
// fully qualified type to its canonical KB type string. It implements
// workflow.TypeResolver (spec §4.A "resolves short-form aliases").
func (s *Store) ExpandAlias(aliasOrType string) (string, bool) {
	var full string
	err := s.db.Get(&full, `SELECT type FROM nodes WHERE type = ? OR alias = ? LIMIT 1`, aliasOrType, aliasOrType)
	if err != nil {
		return "", false
	}
	return full, true
}

// nodeRow mirrors the nodes table's column layout for scanning via sqlx.
type nodeRow struct {
	Type                string  `db:"type"`
	Alias               string  `db:"alias"`
	DisplayName         string  `db:"display_name"`
	Category            string  `db:"category"`
	Subcategory         string  `db:"subcategory"`
	Description         string  `db:"description"`
	PropertiesJSON      string  `db:"properties_json"`
	CredentialsJSON     string  `db:"credentials_json"`
	OperationsJSON      string  `db:"operations_json"`
	LatestVersion       float64 `db:"latest_version"`
	SupportedVersionsJS string  `db:"supported_versions"`
	Docs                string  `db:"docs"`
	BreakingChangesJSON string  `db:"breaking_changes_json"`
	SupportsOnError     int     `db:"supports_on_error"`
	SupportsRetry       int     `db:"supports_retry"`
}

func (r *nodeRow) toDescriptor() (*NodeTypeDescriptor, error) {
	d := &NodeTypeDescriptor{
		Type:            r.Type,
		Alias:           r.Alias,
		DisplayName:     r.DisplayName,
		Category:        r.Category,
		Subcategory:     r.Subcategory,
		Description:     r.Description,
		LatestVersion:   r.LatestVersion,
		Docs:            r.Docs,
		SupportsOnError: r.SupportsOnError != 0,
		SupportsRetry:   r.SupportsRetry != 0,
	}
	if err := unmarshalIfSet(r.PropertiesJSON, &d.Properties); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(r.CredentialsJSON, &d.Credentials); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(r.OperationsJSON, &d.Operations); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(r.SupportedVersionsJS, &d.SupportedVersions); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(r.BreakingChangesJSON, &d.BreakingChanges); err != nil {
		return nil, err
	}
	return d, nil
}

func unmarshalIfSet(raw string, dst any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
