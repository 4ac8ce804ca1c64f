package validate

import "github.com/flowctl/flowctl/pkg/workflow"

// Validate runs the fixed seven-stage pipeline (spec §4.C) against w and
// returns a deterministic Result. Stages are pure functions over (w, kb,
// opts, result) that each accumulate findings; none of them short-circuit
// the pipeline except stage 1, whose structural errors make later stages
// meaningless (there is no node list to dispatch on).
func Validate(w *workflow.Workflow, catalog KnowledgeBase, opts Options) *Result {
	if opts.Profile == "" {
		opts = DefaultOptions()
	}

	result := &Result{}

	if !stageStructure(w, opts, result) {
		finishResult(w, result)
		return result
	}

	stagePerNodeSchema(w, catalog, opts, result)
	stageNodeSpecific(w, catalog, opts, result)
	stageAITopology(w, catalog, opts, result)
	stageConnections(w, opts, result)
	if opts.CheckExpressions {
		stageExpressions(w, opts, result)
	}
	if opts.CheckVersionCurrency {
		stageVersionCurrency(w, catalog, opts, result)
	}

	finishResult(w, result)
	return result
}

func finishResult(w *workflow.Workflow, result *Result) {
	result.Valid = len(result.Errors) == 0
	result.Statistics = Statistics{
		NodeCount:    len(w.Nodes),
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
	}
	for _, outlets := range w.Connections {
		for _, slots := range outlets {
			for _, slot := range slots {
				result.Statistics.ConnectionCount += len(slot)
			}
		}
	}
}

// severityRank orders low < medium < high (and the matching finding kinds
// info < warning < error, which is how the floor is named), used by the
// version-currency stage's configurable severity gate.
func severityRank(sev string) int {
	switch sev {
	case "low", "info":
		return 0
	case "medium", "warning":
		return 1
	case "high", "error":
		return 2
	default:
		return 0
	}
}
