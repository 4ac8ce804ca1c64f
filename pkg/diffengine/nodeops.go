package diffengine

import (
	"fmt"

	"github.com/flowctl/flowctl/pkg/workflow"
)

func applyAddNode(w *workflow.Workflow, op Op, resolver workflow.TypeResolver) error {
	if op.Name == "" {
		return fmt.Errorf("addNode requires a name")
	}
	if w.HasNode(op.Name) {
		return fmt.Errorf("node %q already exists", op.Name)
	}
	if op.Position == nil {
		return fmt.Errorf("addNode requires a position")
	}
	if op.NodeType == "" {
		return fmt.Errorf("addNode requires a nodeType")
	}

	nodeType := op.NodeType
	if resolver != nil {
		if full, ok := resolver.ExpandAlias(nodeType); ok {
			nodeType = full
		}
	}

	params := op.Parameters
	if params == nil {
		params = map[string]any{}
	}

	w.Nodes = append(w.Nodes, workflow.Node{
		Name:       op.Name,
		Type:       nodeType,
		Position:   *op.Position,
		Parameters: params,
	})
	return nil
}

func applyRemoveNode(w *workflow.Workflow, op Op) error {
	idx := w.NodeIndex(op.Name)
	if idx < 0 {
		return fmt.Errorf("node %q does not exist", op.Name)
	}
	w.Nodes = append(w.Nodes[:idx], w.Nodes[idx+1:]...)

	delete(w.Connections, op.Name)
	for src, outlets := range w.Connections {
		for kind, slots := range outlets {
			for si, slot := range slots {
				filtered := slot[:0]
				for _, ep := range slot {
					if ep.Node != op.Name {
						filtered = append(filtered, ep)
					}
				}
				slots[si] = filtered
			}
			outlets[kind] = slots
		}
		w.Connections[src] = outlets
	}
	return nil
}

// applyUpdateNode deep-merges ParametersPatch into the node's existing
// Parameters, replaces any provided scalar fields, and — if Rename is set —
// renames the node and every connection endpoint referencing it, recording
// the rename so later operations in the same batch see the new name
// (spec §4.E, §8 rename consistency). A non-empty NodeType (reused from the
// addNode field, since Op is a union struct) rewrites the node's type in
// place — the autofix node-type-correction and typeversion-upgrade
// generators are the only producers of this field on an updateNode op.
func applyUpdateNode(w *workflow.Workflow, op Op, renames map[string]string, resolver workflow.TypeResolver) (string, error) {
	idx := w.NodeIndex(op.Name)
	if idx < 0 {
		return "", fmt.Errorf("node %q does not exist", op.Name)
	}
	n := &w.Nodes[idx]

	if op.ParametersPatch != nil {
		if n.Parameters == nil {
			n.Parameters = map[string]any{}
		}
		deepMerge(n.Parameters, op.ParametersPatch)
	}
	if op.NodeType != "" {
		newType := op.NodeType
		if resolver != nil {
			if full, ok := resolver.ExpandAlias(newType); ok {
				newType = full
			}
		}
		n.Type = newType
	}
	if op.TypeVersion != nil {
		n.TypeVersion = *op.TypeVersion
	}
	if op.Disabled != nil {
		n.Disabled = *op.Disabled
	}
	if op.OnError != nil {
		n.OnError = *op.OnError
	}

	var warning string
	if op.Rename != "" && op.Rename != n.Name {
		if w.HasNode(op.Rename) {
			return "", fmt.Errorf("cannot rename %q to %q: a node with that name already exists", n.Name, op.Rename)
		}
		old := n.Name
		n.Name = op.Rename
		renameConnections(w, old, op.Rename)
		renames[old] = op.Rename
		warning = fmt.Sprintf("node %q renamed to %q; subsequent operations referencing %q now apply to %q", old, op.Rename, old, op.Rename)
	}

	return warning, nil
}

func renameConnections(w *workflow.Workflow, oldName, newName string) {
	if outlets, ok := w.Connections[oldName]; ok {
		delete(w.Connections, oldName)
		w.Connections[newName] = outlets
	}
	for _, outlets := range w.Connections {
		for kind, slots := range outlets {
			for _, slot := range slots {
				for i := range slot {
					if slot[i].Node == oldName {
						slot[i].Node = newName
					}
				}
			}
			outlets[kind] = slots
		}
	}
}

// deepMerge merges src into dst in place: maps merge recursively, every
// other value (including slices) replaces the destination wholesale.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

func applyMoveNode(w *workflow.Workflow, op Op) error {
	idx := w.NodeIndex(op.Name)
	if idx < 0 {
		return fmt.Errorf("node %q does not exist", op.Name)
	}
	n := &w.Nodes[idx]
	if op.Relative {
		n.Position[0] += op.DeltaX
		n.Position[1] += op.DeltaY
		return nil
	}
	if op.Position == nil {
		return fmt.Errorf("moveNode requires a position when not relative")
	}
	n.Position = *op.Position
	return nil
}

func setDisabled(w *workflow.Workflow, name string, disabled bool) error {
	idx := w.NodeIndex(name)
	if idx < 0 {
		return fmt.Errorf("node %q does not exist", name)
	}
	w.Nodes[idx].Disabled = disabled
	return nil
}
