package autofix

import (
	"github.com/flowctl/flowctl/pkg/diffengine"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// Result is the outcome of Apply: the fixes that were applied (each
// carrying its diffengine.OpResult outcome folded in via Applied), the
// ones skipped and why, and the resulting workflow.
type Result struct {
	Workflow *workflow.Workflow
	Applied  []Fix
	Skipped  []Skipped
}

// Apply filters candidates by opts (confidence floor, fix-type enablement,
// already applied by Generate's fixTypeEnabled gate; max-fixes cap applied
// here in fixed generator order) and applies the survivors to w through
// pkg/diffengine in best-effort mode: fixes are independent corrections,
// so one failing to apply (e.g. a node removed between Generate and Apply)
// must not block the rest (spec §4.D "Applying an updateNode-shaped fix
// yields a diff operation passed through [the diff engine]").
func Apply(w *workflow.Workflow, candidates []Fix, opts Options, resolver workflow.TypeResolver) *Result {
	result := &Result{}

	var toApply []Fix
	for _, fix := range candidates {
		if !opts.meetsConfidence(fix.Confidence) {
			result.Skipped = append(result.Skipped, Skipped{Fix: fix, Reason: SkipBelowConfidence})
			continue
		}
		if opts.MaxFixes > 0 && len(toApply) >= opts.MaxFixes {
			result.Skipped = append(result.Skipped, Skipped{Fix: fix, Reason: SkipMaxFixesReached})
			continue
		}
		toApply = append(toApply, fix)
	}

	var ops []diffengine.Op
	for _, fix := range toApply {
		if fix.op == nil {
			continue // guidance-only (version-migration): nothing to apply
		}
		ops = append(ops, *fix.op)
	}

	diffResult := diffengine.Apply(w, ops, diffengine.Options{Mode: diffengine.ModeContinueOnError}, resolver)

	opIdx := 0
	for _, fix := range toApply {
		if fix.op == nil {
			// Guidance-only fixes always "apply" since they never touch the workflow.
			result.Applied = append(result.Applied, fix)
			continue
		}
		opRes := diffResult.Ops[opIdx]
		opIdx++
		if opRes.Applied {
			result.Applied = append(result.Applied, fix)
		} else {
			result.Skipped = append(result.Skipped, Skipped{Fix: fix, Reason: SkipApplyFailed, Detail: opRes.Error})
		}
	}

	result.Workflow = diffResult.Workflow
	return result
}
