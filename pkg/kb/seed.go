package kb

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed seed/nodes.json seed/templates.json
var seedFS embed.FS

// seed loads the bundled node and template catalog into an empty store. It
// is a representative slice of the full catalog (spec §4.A references an
// ~800 node type / ~2700 template corpus in production); the set bundled
// here spans every category the validation and autofix engines dispatch on
// (triggers, core data nodes, database clients, messaging, and the AI
// node family) so every downstream check has something real to exercise.
func (s *Store) seed() error {
	var nodes []NodeTypeDescriptor
	raw, err := seedFS.ReadFile("seed/nodes.json")
	if err != nil {
		return fmt.Errorf("read seed nodes: %w", err)
	}
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return fmt.Errorf("decode seed nodes: %w", err)
	}

	var templates []TemplateRecord
	raw, err = seedFS.ReadFile("seed/templates.json")
	if err != nil {
		return fmt.Errorf("read seed templates: %w", err)
	}
	if err := json.Unmarshal(raw, &templates); err != nil {
		return fmt.Errorf("decode seed templates: %w", err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range nodes {
		if err := insertDescriptor(tx, &nodes[i]); err != nil {
			return fmt.Errorf("insert node %s: %w", nodes[i].Type, err)
		}
	}
	for i := range templates {
		if err := insertTemplate(tx, &templates[i]); err != nil {
			return fmt.Errorf("insert template %s: %w", templates[i].ID, err)
		}
	}

	storeLog.Printf("seeded %d node types, %d templates", len(nodes), len(templates))
	return tx.Commit()
}

func insertTemplate(db sqlx.Ext, t *TemplateRecord) error {
	tasksJSON, err := json.Marshal(t.Tasks)
	if err != nil {
		return err
	}
	servicesJSON, err := json.Marshal(t.Services)
	if err != nil {
		return err
	}

	query, args, err := sqlx.Named(`
		INSERT OR REPLACE INTO templates (
			id, name, description, workflow_json, node_count, views,
			complexity, category, tasks, services, setup_minutes
		) VALUES (
			:id, :name, :description, :workflow_json, :node_count, :views,
			:complexity, :category, :tasks, :services, :setup_minutes
		)`, map[string]any{
		"id": t.ID, "name": t.Name, "description": t.Description,
		"workflow_json": t.WorkflowJSON, "node_count": t.NodeCount, "views": t.Views,
		"complexity": t.Complexity, "category": t.Category,
		"tasks": string(tasksJSON), "services": string(servicesJSON),
		"setup_minutes": t.SetupMinutes,
	})
	if err != nil {
		return err
	}
	query = db.Rebind(query)
	if _, err := db.Exec(query, args...); err != nil {
		return err
	}

	_, _ = db.Exec(`INSERT INTO templates_fts(id, name, description, tasks, services) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, string(tasksJSON), string(servicesJSON))

	return nil
}
