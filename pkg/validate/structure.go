package validate

import (
	"strings"

	"github.com/flowctl/flowctl/pkg/workflow"
)

// stageStructure is pipeline stage 1: the workflow's own shape, independent
// of any node type knowledge. Returns false only when w itself is nil,
// which leaves later stages nothing to run on; a missing workflow name and
// per-node problems are reported and the pipeline continues.
func stageStructure(w *workflow.Workflow, opts Options, result *Result) bool {
	if w == nil {
		result.addError(Finding{Code: "EMPTY_WORKFLOW", Message: "workflow is nil"})
		return false
	}
	if w.Name == "" {
		result.addError(Finding{Code: "MISSING_NAME", Message: "workflow name must not be empty"})
	}

	seen := make(map[string]bool, len(w.Nodes))
	hasTrigger := false
	for _, n := range w.Nodes {
		if n.Name == "" {
			result.addError(Finding{Code: "MISSING_NODE_NAME", Message: "node has an empty name"})
			continue
		}
		if seen[n.Name] {
			result.addError(Finding{Code: "DUPLICATE_NODE_NAME", Message: "duplicate node name", NodeName: n.Name})
		}
		seen[n.Name] = true

		if n.Type == "" {
			result.addError(Finding{Code: "MISSING_NODE_TYPE", Message: "node has no type", NodeName: n.Name})
		}
		if isTriggerLikeType(n.Type) {
			hasTrigger = true
		}
	}

	if !hasTrigger && opts.Profile != ProfileMinimal {
		result.addWarning(Finding{Code: "NO_TRIGGER_NODE", Message: "workflow has no trigger node"})
	}

	return true
}

// isTriggerLikeType recognizes the KB's trigger-shaped type names. The KB
// schema (spec §3) has no first-class "is a trigger" flag, so this is a
// naming heuristic over the type's final segment, consistent with every
// trigger type seeded in pkg/kb (webhook, chatTrigger, and so on).
func isTriggerLikeType(nodeType string) bool {
	segment := nodeType
	if i := strings.LastIndex(nodeType, "."); i >= 0 {
		segment = nodeType[i+1:]
	}
	lower := strings.ToLower(segment)
	return strings.Contains(lower, "trigger") || lower == "webhook"
}
