package store

import (
	"encoding/json"
	"fmt"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// Rollback restores workflowId to targetVersion (spec §4.F
// "rollback(workflowId, targetVersion, {validateBefore, backup?: bool})").
// Unless opts.Backup is false, the current state is snapshotted under
// TriggerRollback before being overwritten, so the rollback itself can be
// undone. current is the workflow's live state as the caller holds it
// (pkg/cli reads it from the remote platform or a local working copy); the
// version store never assumes ownership of that live state.
//
// Rollback does not look at opts.ValidateBefore: pkg/cli runs the actual
// check against its KnowledgeBase handle before calling Rollback with
// ValidateBefore already satisfied, since this package takes no dependency
// on pkg/validate/pkg/kb. Passing ValidateBefore without having validated
// is a caller bug, not something Rollback can detect.
func (s *Store) Rollback(workflowID string, current *workflow.Workflow, targetVersion int, opts RollbackOptions) (*RollbackResult, error) {
	target, err := s.Get(workflowID, targetVersion)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.New(apperr.KindNotFound, apperr.CodeENOENT, fmt.Sprintf("version %d not found for workflow %q", targetVersion, workflowID))
	}

	result := &RollbackResult{WorkflowID: workflowID, RestoredVersion: targetVersion, WorkflowJSON: target.WorkflowJSON}

	if opts.Backup && current != nil {
		backupVersion, err := s.CreateSnapshot(workflowID, current, TriggerRollback)
		if err != nil {
			return nil, err
		}
		result.BackupVersion = backupVersion
	}

	return result, nil
}

// RestoredWorkflow decodes a RollbackResult's stored JSON back into a
// Workflow, for the caller to push onward (apply locally, or push to the
// remote platform).
func (r *RollbackResult) RestoredWorkflow() (*workflow.Workflow, error) {
	var w workflow.Workflow
	if err := json.Unmarshal([]byte(r.WorkflowJSON), &w); err != nil {
		return nil, apperr.Wrap(apperr.KindData, apperr.CodeIOError, "decode restored workflow", err)
	}
	return &w, nil
}
