package diffengine

import (
	"fmt"

	"github.com/flowctl/flowctl/pkg/workflow"
)

// Apply runs ops against w (spec §4.E). In atomic mode (the default) every
// operation is attempted against a deep clone; if any fails, the returned
// Result reports Applied:0 and the original workflow, untouched, is
// returned unchanged — the clone is discarded. In continueOnError mode
// each operation is attempted independently; failures are recorded and
// skipped, successes kept.
//
// resolver expands short-form node types on addNode the same way
// workflow.Normalize does; pass nil to require fully qualified types.
func Apply(w *workflow.Workflow, ops []Op, opts Options, resolver workflow.TypeResolver) *Result {
	working := w.Clone()
	renames := map[string]string{}
	result := &Result{}
	atomic := opts.Mode != ModeContinueOnError
	anyFailed := false

	for i, raw := range ops {
		op := resolveOpRenames(raw, renames)
		warn, err := applyOne(working, op, renames, resolver)

		opRes := OpResult{Index: i, Type: op.Type}
		if err != nil {
			opRes.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("op %d (%s): %v", i, op.Type, err))
			result.Ops = append(result.Ops, opRes)
			anyFailed = true
			if atomic {
				break
			}
			result.Failed++
			continue
		}

		opRes.Applied = true
		if warn != "" {
			opRes.Warning = warn
			result.Warnings = append(result.Warnings, warn)
		}
		result.Ops = append(result.Ops, opRes)
		result.Applied++
	}

	if atomic && anyFailed {
		return &Result{
			Workflow: w,
			Applied:  0,
			Failed:   1,
			Errors:   result.Errors,
			Warnings: result.Warnings,
			Ops:      result.Ops,
		}
	}

	result.Workflow = working
	return result
}

// applyOne dispatches a single, already rename-resolved Op against working,
// returning a warning string (if any) and an error on failure.
func applyOne(w *workflow.Workflow, op Op, renames map[string]string, resolver workflow.TypeResolver) (string, error) {
	switch op.Type {
	case OpAddNode:
		return "", applyAddNode(w, op, resolver)
	case OpRemoveNode:
		return "", applyRemoveNode(w, op)
	case OpUpdateNode:
		return applyUpdateNode(w, op, renames, resolver)
	case OpMoveNode:
		return "", applyMoveNode(w, op)
	case OpEnableNode:
		return "", setDisabled(w, op.Name, false)
	case OpDisableNode:
		return "", setDisabled(w, op.Name, true)
	case OpAddConnection:
		return "", applyAddConnection(w, op)
	case OpRemoveConnection:
		return "", applyRemoveConnection(w, op)
	case OpRewireConnection:
		return applyRewireConnection(w, op)
	case OpCleanStaleConnections:
		return applyCleanStaleConnections(w)
	case OpReplaceConnections:
		return "", applyReplaceConnections(w, op)
	case OpUpdateSettings:
		return "", applyUpdateSettings(w, op)
	case OpUpdateName:
		w.Name = op.NewName
		return "", nil
	case OpAddTag:
		return "", applyAddTag(w, op)
	case OpRemoveTag:
		return "", applyRemoveTag(w, op)
	case OpActivateWorkflow:
		w.Active = true
		return "", nil
	case OpDeactivateWorkflow:
		w.Active = false
		return "", nil
	default:
		return "", fmt.Errorf("unknown operation type %q", op.Type)
	}
}

// resolveOpRenames rewrites every node-name-referencing field of op through
// the rename chain accumulated so far, so an addConnection following a
// rename in the same batch refers to the node under its current name
// (spec §8 "rename consistency").
func resolveOpRenames(op Op, renames map[string]string) Op {
	op.Name = resolveName(op.Name, renames)
	op.Source = resolveName(op.Source, renames)
	op.Target = resolveName(op.Target, renames)
	op.NewTarget = resolveName(op.NewTarget, renames)
	return op
}

func resolveName(name string, renames map[string]string) string {
	if name == "" {
		return name
	}
	seen := map[string]bool{}
	for {
		next, ok := renames[name]
		if !ok || seen[next] {
			return name
		}
		seen[name] = true
		name = next
	}
}
