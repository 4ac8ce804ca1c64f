package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/diffengine"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// LoadWorkflowSource resolves a workflow from whichever of the three input
// shapes spec §3's lifecycle names applies to arg: a path to a local JSON
// file, a remote workflow id, or an inline JSON document. File paths are
// tried first (an existing file always wins); a leading '{' identifies
// inline JSON; anything else is treated as a remote id fetched through
// app.Remote.
func LoadWorkflowSource(ctx context.Context, app *App, arg string, repair bool) (*workflow.Workflow, error) {
	trimmed := strings.TrimSpace(arg)

	if data, ok := readLocalFile(arg); ok {
		return parseWorkflowBytes(data, repair)
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseWorkflowBytes([]byte(trimmed), repair)
	}

	doc, err := app.Remote.GetWorkflow(ctx, arg)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "re-encode remote workflow document", err)
	}
	return parseWorkflowBytes(raw, repair)
}

func readLocalFile(path string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func parseWorkflowBytes(data []byte, repair bool) (*workflow.Workflow, error) {
	result, err := workflow.Parse(data, workflow.ParseOptions{Repair: repair})
	if err != nil {
		return nil, err
	}
	return result.Workflow, nil
}

// ParseOpsArg resolves a diff operation list from a file path or inline
// JSON array, the same two shapes §4.E's operation sequence is fed
// through (a remote id makes no sense as an operation list).
func ParseOpsArg(arg string) ([]diffengine.Op, error) {
	var data []byte
	if raw, ok := readLocalFile(arg); ok {
		data = raw
	} else {
		data = []byte(arg)
	}
	var ops []diffengine.Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, apperr.Wrap(apperr.KindData, apperr.CodeIOError, "parse diff operations", err)
	}
	return ops, nil
}

// WriteWorkflowFile serializes w and writes it to path, used by commands
// that mutate a local file in place (spec §3 "persisted either to the
// remote platform (G) or a local file").
func WriteWorkflowFile(path string, w *workflow.Workflow) error {
	data, err := workflow.Serialize(w, workflow.SerializeOptions{Full: false})
	if err != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "serialize workflow", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "write workflow file", err)
	}
	return nil
}

// workflowCurrentState wraps the live workflow a command resolved a
// target id/file to, so callers that need both the parsed value and the
// fact that lookup didn't error can pass a single handle around.
type workflowCurrentState struct {
	workflow *workflow.Workflow
}

// loadCurrentState resolves target's current state (local file or remote
// id) for operations, like rollback, that need the live workflow purely
// to snapshot it before overwriting it; a not-found remote id is treated
// as "no current state" rather than an error, since a rollback target
// that never existed remotely can still be restored as a fresh document.
func loadCurrentState(ctx context.Context, app *App, target string) (*workflowCurrentState, error) {
	if IsLocalFile(target) {
		w, err := LoadWorkflowSource(context.Background(), app, target, false)
		if err != nil {
			return nil, err
		}
		return &workflowCurrentState{workflow: w}, nil
	}
	doc, err := app.Remote.GetWorkflow(ctx, target)
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
			return &workflowCurrentState{}, nil
		}
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "re-encode remote workflow document", err)
	}
	w, err := parseWorkflowBytes(raw, false)
	if err != nil {
		return nil, err
	}
	return &workflowCurrentState{workflow: w}, nil
}

// IsLocalFile reports whether arg resolves to an existing local file,
// letting mutating commands decide whether "--apply" should also rewrite
// the source file in place.
func IsLocalFile(arg string) bool {
	_, ok := readLocalFile(arg)
	return ok
}
