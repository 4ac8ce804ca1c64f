package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowctl/flowctl/pkg/kb"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// stagePerNodeSchema is pipeline stage 2: resolve each node's type against
// the catalog, flag unknown/outdated types, and diff declared parameters
// against the visible required property set for the selected mode.
func stagePerNodeSchema(w *workflow.Workflow, catalog KnowledgeBase, opts Options, result *Result) {
	names := make([]string, 0, len(w.Nodes))
	byName := make(map[string]*workflow.Node, len(w.Nodes))
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.Name == "" {
			continue
		}
		names = append(names, n.Name)
		byName[n.Name] = n
	}
	sort.Strings(names)

	for _, name := range names {
		n := byName[name]
		if n.Type == "" {
			continue // already reported by stageStructure
		}

		descriptor, err := catalog.Lookup(n.Type)
		if err != nil || descriptor == nil {
			f := Finding{Code: "INVALID_NODE_TYPE_FORMAT", NodeName: n.Name,
				Message: fmt.Sprintf("unrecognized node type %q", n.Type)}
			if similar, err := catalog.SimilarTypes(n.Type, 3); err == nil {
				for _, s := range similar {
					f.Suggestions = append(f.Suggestions, Suggestion{
						Value: s.Type, Confidence: s.Score,
						AutoFixable: s.Score >= kb.AutoFixableThreshold,
						Reason:      s.Reason,
					})
				}
			}
			result.addError(f)
			continue
		}

		if n.TypeVersion > descriptor.LatestVersion {
			result.addError(Finding{
				Code: "TYPEVERSION_EXCEEDS_LATEST", NodeName: n.Name,
				Message: fmt.Sprintf("typeVersion %v exceeds latest known version %v", n.TypeVersion, descriptor.LatestVersion),
				Context: map[string]any{"typeVersion": n.TypeVersion, "latestVersion": descriptor.LatestVersion},
			})
		}

		visible, missing, extra := diffParameters(n, descriptor, opts.Mode)
		if len(missing) > 0 {
			result.addError(Finding{
				Code: "N8N_PARAMETER_VALIDATION_ERROR", NodeName: n.Name,
				Message: fmt.Sprintf("missing required parameter(s): %s", strings.Join(missing, ", ")),
				Context: map[string]any{
					"schemaDelta":  SchemaDelta{Missing: missing, Extra: extra},
					"correctUsage": minimalPayload(visible),
				},
			})
		}
	}
}

// diffParameters computes the visible property set under mode and
// displayOptions, then reports which required visible properties are
// missing from parameters and which declared parameters aren't in any
// visible set (informational "extra" — not itself an error).
func diffParameters(n *workflow.Node, d *NodeTypeDescriptor, mode Mode) (visible []PropertyDescriptor, missing, extra []string) {
	resource, _ := n.Parameters["resource"].(string)
	operation, _ := n.Parameters["operation"].(string)

	var allowedPaths map[string]bool
	if mode == ModeOperation {
		if vis, ok := visiblePropertiesFor(d, resource, operation); ok {
			allowedPaths = make(map[string]bool, len(vis))
			for _, p := range vis {
				allowedPaths[p] = true
			}
		}
	}

	for _, p := range d.Properties {
		if mode == ModeMinimal && !p.Required {
			continue
		}
		if !isDisplayed(p.DisplayOptions, n.Parameters) {
			continue
		}
		if allowedPaths != nil && !allowedPaths[p.Path] {
			continue
		}
		visible = append(visible, p)
		if p.Required && !hasParameterPath(n.Parameters, p.Path) {
			missing = append(missing, p.Path)
		}
	}

	sort.Strings(missing)
	return visible, missing, extra
}

func visiblePropertiesFor(d *NodeTypeDescriptor, resource, operation string) ([]string, bool) {
	for _, op := range d.Operations {
		if op.Resource == resource && op.Operation == operation {
			return op.VisibleOptions, true
		}
	}
	return nil, false
}

// isDisplayed evaluates a property's displayOptions against the node's
// current parameters; absent displayOptions means always visible.
func isDisplayed(opts *DisplayOptions, params map[string]any) bool {
	if opts == nil {
		return true
	}
	for key, allowed := range opts.Show {
		if !containsAny(params[key], allowed) {
			return false
		}
	}
	for key, forbidden := range opts.Hide {
		if containsAny(params[key], forbidden) {
			return false
		}
	}
	return true
}

func containsAny(value any, candidates []any) bool {
	for _, c := range candidates {
		if fmt.Sprint(value) == fmt.Sprint(c) {
			return true
		}
	}
	return false
}

func hasParameterPath(params map[string]any, path string) bool {
	segments := strings.Split(path, ".")
	var cur any = params
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		v, ok := m[seg]
		if !ok {
			return false
		}
		cur = v
	}
	return cur != nil && cur != ""
}

// minimalPayload builds the smallest parameter map satisfying every
// required visible property, used as the correctUsage snippet on a
// N8N_PARAMETER_VALIDATION_ERROR finding.
func minimalPayload(visible []PropertyDescriptor) map[string]any {
	out := map[string]any{}
	for _, p := range visible {
		if !p.Required {
			continue
		}
		switch p.TypeTag {
		case "string", "expression", "json":
			out[p.Path] = ""
		case "number":
			out[p.Path] = 0
		case "boolean":
			out[p.Path] = false
		case "enum":
			if len(p.Options) > 0 {
				out[p.Path] = p.Options[0]
			} else {
				out[p.Path] = ""
			}
		default:
			out[p.Path] = nil
		}
	}
	return out
}
