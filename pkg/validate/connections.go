package validate

import "github.com/flowctl/flowctl/pkg/workflow"

// stageConnections is pipeline stage 5: every connection endpoint must
// resolve to a node that exists, main outlets must not self-loop, and
// conditional/switch outlet indices must lie within the node's declared
// outlet count.
func stageConnections(w *workflow.Workflow, opts Options, result *Result) {
	for source, outlets := range w.Connections {
		if !w.HasNode(source) {
			result.addError(Finding{Code: "CONNECTION_UNKNOWN_SOURCE", Message: "connection source node does not exist", NodeName: source})
			continue
		}
		sourceNode := w.NodeByName(source)

		for kind, slots := range outlets {
			if kind == workflow.OutletMain && isConditionalType(sourceNode.Type) {
				maxOutlets := expectedOutletCount(sourceNode)
				if maxOutlets > 0 && len(slots) > maxOutlets {
					result.addWarning(Finding{Code: "CONNECTION_OUTLET_INDEX_OUT_OF_RANGE", NodeName: source,
						Message: "more outlet slots declared than the node's configured branch/case count"})
				}
			}

			for _, slot := range slots {
				for _, ep := range slot {
					if !w.HasNode(ep.Node) {
						result.addError(Finding{Code: "CONNECTION_UNKNOWN_TARGET", NodeName: source,
							Message: "connection target node does not exist", Context: map[string]any{"target": ep.Node}})
						continue
					}
					if kind == workflow.OutletMain && ep.Node == source {
						result.addError(Finding{Code: "CONNECTION_SELF_LOOP", NodeName: source, Message: "main outlet connects a node to itself"})
					}
				}
			}
		}
	}
}

func isConditionalType(nodeType string) bool {
	return isType(nodeType, "if") || isType(nodeType, "switch")
}

// expectedOutletCount returns the node's declared number of main outlets:
// 2 for "if" (true/false), the configured rule count for "switch", 0 when
// it cannot be determined (no warning emitted in that case).
func expectedOutletCount(n *workflow.Node) int {
	if isType(n.Type, "if") {
		return 2
	}
	if isType(n.Type, "switch") {
		rules, _ := n.Parameters["rules"].(map[string]any)
		if rules == nil {
			return 0
		}
		values, ok := rules["values"].([]any)
		if !ok {
			return 0
		}
		return len(values)
	}
	return 0
}
