package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// CreateSnapshot stores w as the next version of workflowId and returns the
// assigned version number, then auto-prunes older versions beyond
// autoPruneKeep (spec §4.F "auto-prune to <= 10 per workflow after
// insert, FIFO oldest-first").
func (s *Store) CreateSnapshot(workflowID string, w *workflow.Workflow, trigger Trigger) (int, error) {
	raw, err := workflow.Serialize(w, workflow.SerializeOptions{Full: true})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindData, apperr.CodeIOError, "serialize workflow for snapshot", err)
	}

	var version int
	err = s.withWriteLock(func() error {
		tx, err := s.db.Beginx()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var maxVersion sql.NullInt64
		if err := tx.Get(&maxVersion, `SELECT MAX(version_number) FROM snapshots WHERE workflow_id = ?`, workflowID); err != nil {
			return err
		}
		version = int(maxVersion.Int64) + 1

		_, err = tx.Exec(`
			INSERT INTO snapshots (workflow_id, version_number, trigger, node_count, created_at, workflow_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			workflowID, version, string(trigger), len(w.Nodes), nowRFC3339(), string(raw))
		if err != nil {
			return err
		}

		if err := pruneTx(tx, workflowID, autoPruneKeep); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "create snapshot", err)
	}
	return version, nil
}

// List returns the most-recent-first version metadata for workflowID,
// capped at limit (0 means unlimited).
func (s *Store) List(workflowID string, limit int) ([]VersionMeta, error) {
	query := `SELECT workflow_id, version_number, trigger, node_count, created_at
		FROM snapshots WHERE workflow_id = ? ORDER BY version_number DESC`
	args := []any{workflowID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []snapshotRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "list snapshots", err)
	}

	out := make([]VersionMeta, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.meta())
	}
	return out, nil
}

// Get returns the full snapshot at versionNumber, or nil if it does not
// exist.
func (s *Store) Get(workflowID string, versionNumber int) (*Snapshot, error) {
	var r snapshotRow
	err := s.db.Get(&r, `SELECT workflow_id, version_number, trigger, node_count, created_at, workflow_json
		FROM snapshots WHERE workflow_id = ? AND version_number = ?`, workflowID, versionNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "get snapshot", err)
	}
	return &Snapshot{VersionMeta: r.meta(), WorkflowJSON: r.WorkflowJSON}, nil
}

// Prune keeps only the keep most recent versions of workflowID, deleting
// the rest oldest-first, and returns how many were deleted.
func (s *Store) Prune(workflowID string, keep int) (int, error) {
	var deleted int
	err := s.withWriteLock(func() error {
		tx, err := s.db.Beginx()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		before, err := countVersions(tx, workflowID)
		if err != nil {
			return err
		}
		if err := pruneTx(tx, workflowID, keep); err != nil {
			return err
		}
		after, err := countVersions(tx, workflowID)
		if err != nil {
			return err
		}
		deleted = before - after
		return tx.Commit()
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "prune snapshots", err)
	}
	return deleted, nil
}

// DeleteAll removes every stored version of workflowID.
func (s *Store) DeleteAll(workflowID string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`DELETE FROM snapshots WHERE workflow_id = ?`, workflowID)
		if err != nil {
			return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "delete all snapshots", err)
		}
		return nil
	})
}

// Truncate wipes the entire store, across every workflow id.
func (s *Store) Truncate() error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`DELETE FROM snapshots`)
		if err != nil {
			return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "truncate version store", err)
		}
		return nil
	})
}

// Stats summarizes the store.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	err := s.db.Get(&stats, `SELECT COUNT(DISTINCT workflow_id) AS workflow_count, COUNT(*) AS version_count
		FROM snapshots`)
	if err != nil {
		return Stats{}, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "compute version store stats", err)
	}

	var bounds struct {
		Oldest sql.NullString `db:"oldest"`
		Newest sql.NullString `db:"newest"`
	}
	if err := s.db.Get(&bounds, `SELECT MIN(created_at) AS oldest, MAX(created_at) AS newest FROM snapshots`); err != nil {
		return Stats{}, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "compute version store stats", err)
	}
	if bounds.Oldest.Valid {
		stats.OldestVersion, _ = time.Parse(time.RFC3339, bounds.Oldest.String)
	}
	if bounds.Newest.Valid {
		stats.NewestVersion, _ = time.Parse(time.RFC3339, bounds.Newest.String)
	}

	if info, err := dbFileInfo(s.dir); err == nil {
		stats.SizeBytes = info
	}

	return stats, nil
}

// snapshotRow is the sqlx scan target for the snapshots table.
type snapshotRow struct {
	WorkflowID    string `db:"workflow_id"`
	VersionNumber int    `db:"version_number"`
	Trigger       string `db:"trigger"`
	NodeCount     int    `db:"node_count"`
	CreatedAt     string `db:"created_at"`
	WorkflowJSON  string `db:"workflow_json"`
}

func (r snapshotRow) meta() VersionMeta {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return VersionMeta{
		WorkflowID:    r.WorkflowID,
		VersionNumber: r.VersionNumber,
		Trigger:       Trigger(r.Trigger),
		NodeCount:     r.NodeCount,
		CreatedAt:     created,
	}
}

// pruneTx deletes every version of workflowId beyond the keep most recent,
// within tx. Caller holds the write lock.
func pruneTx(tx dbExt, workflowID string, keep int) error {
	if keep < 0 {
		return nil
	}
	_, err := tx.Exec(`
		DELETE FROM snapshots WHERE workflow_id = ? AND version_number NOT IN (
			SELECT version_number FROM snapshots WHERE workflow_id = ?
			ORDER BY version_number DESC LIMIT ?
		)`, workflowID, workflowID, keep)
	return err
}

func countVersions(tx dbExt, workflowID string) (int, error) {
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM snapshots WHERE workflow_id = ?`, workflowID); err != nil {
		return 0, err
	}
	return n, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
