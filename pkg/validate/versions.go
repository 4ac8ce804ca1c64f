package validate

import (
	"fmt"

	"github.com/flowctl/flowctl/pkg/workflow"
)

// stageVersionCurrency is pipeline stage 7: for each node behind the
// catalog's latest typeVersion, consult the KB's breaking-change entries
// and map their severity to a finding kind through opts.VersionSeverityFloor.
func stageVersionCurrency(w *workflow.Workflow, catalog KnowledgeBase, opts Options, result *Result) {
	floor := severityRank(opts.VersionSeverityFloor)

	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.Type == "" {
			continue
		}
		descriptor, err := catalog.Lookup(n.Type)
		if err != nil || descriptor == nil || n.TypeVersion >= descriptor.LatestVersion {
			continue
		}

		changes, err := catalog.BreakingChanges(n.Type, n.TypeVersion)
		if err != nil || len(changes) == 0 {
			result.addInfo(Finding{Code: "TYPEVERSION_BEHIND_LATEST", NodeName: n.Name,
				Message: fmt.Sprintf("typeVersion %v is behind latest %v", n.TypeVersion, descriptor.LatestVersion)})
			continue
		}

		for _, bc := range changes {
			if severityRank(bc.Severity) < floor {
				continue
			}
			f := Finding{Code: "BREAKING_CHANGE_PENDING", NodeName: n.Name,
				Message: bc.Description,
				Context: map[string]any{
					"fromVersion":    bc.FromVersion,
					"toVersion":      bc.ToVersion,
					"severity":       bc.Severity,
					"autoMigratable": bc.AutoMigratable,
				}}
			switch severityRank(bc.Severity) {
			case 2:
				result.addError(f)
			case 1:
				result.addWarning(f)
			default:
				result.addInfo(f)
			}
		}
	}
}
