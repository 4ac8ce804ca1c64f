package kb

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flowctl/flowctl/pkg/logger"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var storeLog = logger.New("kb:store")

// Store is the process-wide, read-only handle over the bundled node and
// template catalog (spec §4.A, §5 "process-wide read-only handle created
// once and shared").
type Store struct {
	db         *sqlx.DB
	ftsOnce    sync.Once
	ftsEnabled bool
}

// Open opens (and, if empty, seeds) the knowledge base at path. Pass ":memory:"
// for an ephemeral, test-only store. The database is opened read-write and
// written only to seed an empty store; later queries never mutate it.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kb: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite is single-writer; one conn keeps FTS probing deterministic

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("kb: schema init: %w", err)
	}

	empty, err := s.isEmpty()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kb: empty check: %w", err)
	}
	if empty {
		if err := s.seed(); err != nil {
			db.Close()
			return nil, fmt.Errorf("kb: seed: %w", err)
		}
	}

	s.probeFTS()
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	type TEXT PRIMARY KEY,
	alias TEXT,
	display_name TEXT,
	category TEXT,
	subcategory TEXT,
	description TEXT,
	properties_json TEXT,
	credentials_json TEXT,
	operations_json TEXT,
	latest_version REAL,
	supported_versions TEXT,
	docs TEXT,
	breaking_changes_json TEXT,
	supports_on_error INTEGER,
	supports_retry INTEGER
);

CREATE TABLE IF NOT EXISTS templates (
	id TEXT PRIMARY KEY,
	name TEXT,
	description TEXT,
	workflow_json TEXT,
	node_count INTEGER,
	views INTEGER,
	complexity TEXT,
	category TEXT,
	tasks TEXT,
	services TEXT,
	setup_minutes INTEGER
);
`

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return err
	}
	// FTS5 virtual tables are created separately so a failure here (older
	// sqlite build without FTS5) degrades gracefully instead of aborting
	// schema setup for the base tables.
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS node_fts USING fts5(
			type, display_name, description, category, alias,
			content='nodes', content_rowid='rowid'
		);
		CREATE VIRTUAL TABLE IF NOT EXISTS property_fts USING fts5(
			node_type, path, name, description, type_tag
		);
		CREATE VIRTUAL TABLE IF NOT EXISTS templates_fts USING fts5(
			id, name, description, tasks, services
		);
	`)
	if err != nil {
		storeLog.Printf("FTS5 virtual table creation failed, will fall back to substring search: %v", err)
	}
	return nil
}

func (s *Store) isEmpty() (bool, error) {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM nodes`); err != nil {
		return false, err
	}
	return count == 0, nil
}

// probeFTS auto-detects FTS5 availability once per process (spec §4.A) by
// attempting a trivial MATCH query against node_fts.
func (s *Store) probeFTS() {
	s.ftsOnce.Do(func() {
		_, err := s.db.Exec(`SELECT rowid FROM node_fts WHERE node_fts MATCH 'probe' LIMIT 1`)
		s.ftsEnabled = err == nil
		if !s.ftsEnabled {
			storeLog.Printf("FTS unavailable, search falls back to LIKE: %v", err)
		}
	})
}

func (s *Store) ftsAvailable() bool {
	s.probeFTS()
	return s.ftsEnabled
}

func insertDescriptor(db sqlx.Ext, d *NodeTypeDescriptor) error {
	propsJSON, err := json.Marshal(d.Properties)
	if err != nil {
		return err
	}
	credsJSON, err := json.Marshal(d.Credentials)
	if err != nil {
		return err
	}
	opsJSON, err := json.Marshal(d.Operations)
	if err != nil {
		return err
	}
	versionsJSON, err := json.Marshal(d.SupportedVersions)
	if err != nil {
		return err
	}
	breakingJSON, err := json.Marshal(d.BreakingChanges)
	if err != nil {
		return err
	}

	query, args, err := sqlx.Named(`
		INSERT OR REPLACE INTO nodes (
			type, alias, display_name, category, subcategory, description,
			properties_json, credentials_json, operations_json, latest_version,
			supported_versions, docs, breaking_changes_json, supports_on_error, supports_retry
		) VALUES (
			:type, :alias, :display_name, :category, :subcategory, :description,
			:properties_json, :credentials_json, :operations_json, :latest_version,
			:supported_versions, :docs, :breaking_changes_json, :supports_on_error, :supports_retry
		)`, map[string]any{
		"type": d.Type, "alias": d.Alias, "display_name": d.DisplayName,
		"category": d.Category, "subcategory": d.Subcategory, "description": d.Description,
		"properties_json": string(propsJSON), "credentials_json": string(credsJSON),
		"operations_json": string(opsJSON), "latest_version": d.LatestVersion,
		"supported_versions": string(versionsJSON), "docs": d.Docs,
		"breaking_changes_json": string(breakingJSON),
		"supports_on_error":     boolToInt(d.SupportsOnError),
		"supports_retry":        boolToInt(d.SupportsRetry),
	})
	if err != nil {
		return err
	}
	query = db.Rebind(query)
	if _, err := db.Exec(query, args...); err != nil {
		return err
	}

	_, _ = db.Exec(`
		INSERT INTO node_fts(rowid, type, display_name, description, category, alias)
		SELECT rowid, type, display_name, description, category, alias FROM nodes WHERE type = ?`, d.Type)

	for _, p := range d.Properties {
		_, _ = db.Exec(`INSERT INTO property_fts(node_type, path, name, description, type_tag) VALUES (?, ?, ?, ?, ?)`,
			d.Type, p.Path, p.Name, p.Description, p.TypeTag)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
