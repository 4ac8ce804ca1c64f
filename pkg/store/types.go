// Package store implements the Local Version Store (spec §4.F): durable,
// user-scoped history of workflow snapshots keyed by workflow id, with
// ordered version numbers, comparison, rollback, and pruning. The store is
// an embedded SQLite database under a user-writable 0700 directory,
// guarded by a gofrs/flock advisory lock so only one writer touches it at
// a time (spec §5 "single writer at a time guarded by a file lock").
package store

import "time"

// Trigger names what caused a snapshot to be created.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerAutofix   Trigger = "autofix"
	TriggerDiff      Trigger = "diff"
	TriggerRollback  Trigger = "rollback"
	TriggerImport    Trigger = "import"
)

// VersionMeta is the list-view record for one stored snapshot: everything
// but the workflow payload itself.
type VersionMeta struct {
	WorkflowID    string    `json:"workflowId"`
	VersionNumber int       `json:"versionNumber"`
	Trigger       Trigger   `json:"trigger"`
	NodeCount     int       `json:"nodeCount"`
	CreatedAt     time.Time `json:"createdAt" console:"header:Age,format:age"`
}

// Snapshot is a full stored version: metadata plus the workflow JSON blob
// captured at that point, stored exactly as serialized so a rollback
// restores byte-identical content.
type Snapshot struct {
	VersionMeta
	WorkflowJSON string `json:"workflowJson"`
}

// NodeChange describes one node-level difference between two snapshots.
type NodeChange struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"` // added | removed | changed
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// ConnectionChange describes one connection-set difference between two
// snapshots, keyed by source node.
type ConnectionChange struct {
	Source string `json:"source"`
	Kind   string `json:"kind"` // added | removed | changed
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// MetadataChange describes a change to a workflow-level (non-node,
// non-connection) field: name, active, settings, tags.
type MetadataChange struct {
	Field  string `json:"field"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// CompareResult is the structured diff between two stored versions (spec
// §4.F "compare(workflowId, a, b)").
type CompareResult struct {
	WorkflowID  string             `json:"workflowId"`
	FromVersion int                `json:"fromVersion"`
	ToVersion   int                `json:"toVersion"`
	Nodes       []NodeChange       `json:"nodes,omitempty"`
	Connections []ConnectionChange `json:"connections,omitempty"`
	Metadata    []MetadataChange   `json:"metadata,omitempty"`
}

// RollbackOptions parameterizes Rollback.
type RollbackOptions struct {
	// ValidateBefore records that the caller validates the target snapshot
	// before restoring it; Rollback itself runs no check and stays decoupled from pkg/validate and leaves the check to the caller
	// (pkg/cli), which is what actually has a KnowledgeBase handle.
	ValidateBefore bool
	// Backup, when true (the default), snapshots the current state under
	// TriggerRollback before overwriting it, so a rollback is itself
	// reversible. Set false to skip that snapshot.
	Backup bool
}

// RollbackResult reports what Rollback did.
type RollbackResult struct {
	WorkflowID      string `json:"workflowId"`
	RestoredVersion int    `json:"restoredVersion"`
	// BackupVersion is the version number of the pre-rollback snapshot, or
	// 0 if Backup was false.
	BackupVersion int    `json:"backupVersion,omitempty"`
	WorkflowJSON  string `json:"workflowJson"`
}

// Stats summarizes the store as a whole (spec §4.F "stats()"). The db tags
// on the first two fields let sqlx scan the aggregate-count query directly
// into this struct; the remaining fields are filled in separately.
type Stats struct {
	WorkflowCount int       `json:"workflowCount" db:"workflow_count"`
	VersionCount  int       `json:"versionCount" db:"version_count"`
	OldestVersion time.Time `json:"oldestVersion,omitzero" db:"-" console:"header:Oldest,format:age,omitempty"`
	NewestVersion time.Time `json:"newestVersion,omitzero" db:"-" console:"header:Newest,format:age,omitempty"`
	SizeBytes     int64     `json:"sizeBytes" db:"-" console:"header:Size,format:filesize"`
}

// autoPruneKeep is the hardcoded auto-prune ceiling applied after every
// CreateSnapshot (spec §4.F, Open Question resolution: 10 is fixed, not
// configurable via pkg/config; `prune --keep N` is the only override).
const autoPruneKeep = 10
