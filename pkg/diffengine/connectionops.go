package diffengine

import (
	"fmt"
	"strings"

	"github.com/flowctl/flowctl/pkg/workflow"
)

var aiConnectionTypes = map[string]bool{
	"ai_languageModel": true, "ai_tool": true, "ai_memory": true,
	"ai_outputParser": true, "ai_embedding": true, "ai_textSplitter": true, "ai_vectorStore": true,
}

// resolvedEndpoint is the fully resolved shape of an addConnection /
// removeConnection / rewireConnection operation after smart parameter
// resolution (spec §4.E).
type resolvedEndpoint struct {
	outletKind  workflow.OutletKind
	outletIndex int
	inletKind   workflow.OutletKind
	inletIndex  int
}

// resolveConnectionParams implements the branch/case/aiConnectionType
// smart-resolution rules: branch only valid on a conditional ("if") source,
// case only valid on a switch source, aiConnectionType selects a non-main
// outlet/inlet pair, and it is an error to combine branch with case or to
// use either against an unsupported source type.
func resolveConnectionParams(sourceType string, op Op) (resolvedEndpoint, error) {
	if op.Branch != "" && op.Case != nil {
		return resolvedEndpoint{}, fmt.Errorf("cannot specify both branch and case")
	}

	sourceIndex := 0
	if op.SourceIndex != nil {
		sourceIndex = *op.SourceIndex
	}
	targetIndex := 0
	if op.TargetIndex != nil {
		targetIndex = *op.TargetIndex
	}

	switch {
	case op.Branch != "":
		if !isConditionalType(sourceType) {
			return resolvedEndpoint{}, fmt.Errorf("branch is only valid when the source node is a conditional (if) node")
		}
		switch op.Branch {
		case "true":
			sourceIndex = 0
		case "false":
			sourceIndex = 1
		default:
			return resolvedEndpoint{}, fmt.Errorf(`branch must be "true" or "false", got %q`, op.Branch)
		}
		return resolvedEndpoint{outletKind: workflow.OutletMain, outletIndex: sourceIndex, inletKind: workflow.OutletMain, inletIndex: targetIndex}, nil

	case op.Case != nil:
		if !isSwitchType(sourceType) {
			return resolvedEndpoint{}, fmt.Errorf("case is only valid when the source node is a switch node")
		}
		return resolvedEndpoint{outletKind: workflow.OutletMain, outletIndex: *op.Case, inletKind: workflow.OutletMain, inletIndex: targetIndex}, nil

	case op.AIConnectionType != "":
		if !aiConnectionTypes[op.AIConnectionType] {
			return resolvedEndpoint{}, fmt.Errorf("unrecognized aiConnectionType %q", op.AIConnectionType)
		}
		kind := workflow.OutletKind(op.AIConnectionType)
		return resolvedEndpoint{outletKind: kind, outletIndex: sourceIndex, inletKind: kind, inletIndex: targetIndex}, nil

	default:
		return resolvedEndpoint{outletKind: workflow.OutletMain, outletIndex: sourceIndex, inletKind: workflow.OutletMain, inletIndex: targetIndex}, nil
	}
}

func isConditionalType(nodeType string) bool {
	return strings.HasSuffix(strings.ToLower(nodeType), ".if")
}

func isSwitchType(nodeType string) bool {
	return strings.HasSuffix(strings.ToLower(nodeType), ".switch")
}

func applyAddConnection(w *workflow.Workflow, op Op) error {
	source := w.NodeByName(op.Source)
	if source == nil {
		return fmt.Errorf("source node %q does not exist", op.Source)
	}
	if w.NodeByName(op.Target) == nil {
		return fmt.Errorf("target node %q does not exist", op.Target)
	}

	resolved, err := resolveConnectionParams(source.Type, op)
	if err != nil {
		return err
	}

	if w.Connections == nil {
		w.Connections = workflow.ConnectionMap{}
	}
	outlets, ok := w.Connections[op.Source]
	if !ok {
		outlets = workflow.OutletMap{}
		w.Connections[op.Source] = outlets
	}
	slots := outlets[resolved.outletKind]
	for len(slots) <= resolved.outletIndex {
		slots = append(slots, workflow.Slot{})
	}
	slots[resolved.outletIndex] = append(slots[resolved.outletIndex], workflow.Endpoint{
		Node: op.Target, Type: resolved.inletKind, Index: resolved.inletIndex,
	})
	outlets[resolved.outletKind] = slots
	w.Connections[op.Source] = outlets
	return nil
}

func applyRemoveConnection(w *workflow.Workflow, op Op) error {
	source := w.NodeByName(op.Source)
	if source == nil {
		return fmt.Errorf("source node %q does not exist", op.Source)
	}
	resolved, err := resolveConnectionParams(source.Type, op)
	if err != nil {
		return err
	}
	return removeEndpoint(w, op.Source, op.Target, resolved)
}

func removeEndpoint(w *workflow.Workflow, source, target string, resolved resolvedEndpoint) error {
	outlets, ok := w.Connections[source]
	if !ok {
		return fmt.Errorf("no connections from %q", source)
	}
	slots := outlets[resolved.outletKind]
	if resolved.outletIndex >= len(slots) {
		return fmt.Errorf("no outlet slot %d on %q", resolved.outletIndex, source)
	}
	slot := slots[resolved.outletIndex]
	newSlot := slot[:0]
	removed := false
	for _, ep := range slot {
		if ep.Node == target && ep.Type == resolved.inletKind && ep.Index == resolved.inletIndex {
			removed = true
			continue
		}
		newSlot = append(newSlot, ep)
	}
	if !removed {
		return fmt.Errorf("connection %s -> %s not found", source, target)
	}
	slots[resolved.outletIndex] = newSlot
	outlets[resolved.outletKind] = slots
	w.Connections[source] = outlets
	return nil
}

// applyRewireConnection is an atomic remove-then-add: detach the existing
// target and attach NewTarget at the same outlet/inlet coordinates. If the
// original connection is already gone (e.g. the target was renamed away in
// an earlier op and the caller didn't track it), the add still proceeds
// and a warning is surfaced rather than failing outright.
func applyRewireConnection(w *workflow.Workflow, op Op) (string, error) {
	source := w.NodeByName(op.Source)
	if source == nil {
		return "", fmt.Errorf("source node %q does not exist", op.Source)
	}
	if w.NodeByName(op.NewTarget) == nil {
		return "", fmt.Errorf("new target node %q does not exist", op.NewTarget)
	}
	resolved, err := resolveConnectionParams(source.Type, op)
	if err != nil {
		return "", err
	}

	var warning string
	if removeErr := removeEndpoint(w, op.Source, op.Target, resolved); removeErr != nil {
		warning = fmt.Sprintf("rewireConnection: original connection %s -> %s not found, adding %s -> %s anyway", op.Source, op.Target, op.Source, op.NewTarget)
	}

	if w.Connections == nil {
		w.Connections = workflow.ConnectionMap{}
	}
	outlets, ok := w.Connections[op.Source]
	if !ok {
		outlets = workflow.OutletMap{}
	}
	slots := outlets[resolved.outletKind]
	for len(slots) <= resolved.outletIndex {
		slots = append(slots, workflow.Slot{})
	}
	slots[resolved.outletIndex] = append(slots[resolved.outletIndex], workflow.Endpoint{
		Node: op.NewTarget, Type: resolved.inletKind, Index: resolved.inletIndex,
	})
	outlets[resolved.outletKind] = slots
	w.Connections[op.Source] = outlets
	return warning, nil
}

func applyCleanStaleConnections(w *workflow.Workflow) (string, error) {
	removed := 0
	for src, outlets := range w.Connections {
		if !w.HasNode(src) {
			delete(w.Connections, src)
			continue
		}
		for kind, slots := range outlets {
			for i, slot := range slots {
				filtered := slot[:0]
				for _, ep := range slot {
					if w.HasNode(ep.Node) {
						filtered = append(filtered, ep)
					} else {
						removed++
					}
				}
				slots[i] = filtered
			}
			outlets[kind] = slots
		}
		w.Connections[src] = outlets
	}
	if removed > 0 {
		return fmt.Sprintf("removed %d stale connection endpoint(s)", removed), nil
	}
	return "", nil
}

func applyReplaceConnections(w *workflow.Workflow, op Op) error {
	w.Connections = op.Connections.Clone()
	return nil
}
