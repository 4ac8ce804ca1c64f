package autofix

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flowctl/flowctl/pkg/diffengine"
	"github.com/flowctl/flowctl/pkg/validate"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// Generate runs the eight fix generators, in the fixed order spec §4.D
// lists them, against w and the validation result that was just produced
// for it. Each generator only ever reads w and result; none of them mutate
// the workflow themselves, so Generate is safe to call repeatedly (and,
// called again after Apply, will — spec §8 autofix idempotence — return
// nothing for every fix that already landed).
func Generate(w *workflow.Workflow, catalog validate.KnowledgeBase, result *validate.Result, opts Options) []Fix {
	var fixes []Fix
	for _, ft := range allFixTypes {
		if !opts.fixTypeEnabled(ft) {
			continue
		}
		switch ft {
		case FixExpressionFormat:
			fixes = append(fixes, generateExpressionFormat(w, result)...)
		case FixNodeTypeCorrection:
			fixes = append(fixes, generateNodeTypeCorrection(result)...)
		case FixWebhookMissingPath:
			fixes = append(fixes, generateWebhookMissingPath(w)...)
		case FixSwitchOptions:
			fixes = append(fixes, generateSwitchOptions(w, catalog)...)
		case FixTypeVersionCorrection:
			fixes = append(fixes, generateTypeVersionCorrection(w, catalog)...)
		case FixErrorOutputConfig:
			fixes = append(fixes, generateErrorOutputConfig(w, catalog)...)
		case FixTypeVersionUpgrade:
			fixes = append(fixes, generateTypeVersionUpgrade(w, catalog)...)
		case FixVersionMigration:
			fixes = append(fixes, generateVersionMigration(w, catalog)...)
		}
	}
	return fixes
}

// generateExpressionFormat implements spec §4.D.1: wrap every flagged
// {{...}} string leaf with a leading "=". Base score 95 (high), lowered to
// 65 (medium) when the unprefixed value also parses as valid JSON — it
// might be an intentional literal rather than a forgotten expression.
func generateExpressionFormat(w *workflow.Workflow, result *validate.Result) []Fix {
	var fixes []Fix
	for _, f := range result.Errors {
		if f.Code != "EXPRESSION_MISSING_PREFIX" {
			continue
		}
		value, _ := f.Context["value"].(string)
		expected, _ := f.Context["expected"].(string)
		if value == "" || expected == "" {
			continue
		}
		n := w.NodeByName(f.NodeName)
		if n == nil {
			continue
		}
		patch, ok := buildParametersPatch(n.Parameters, f.Path, expected)
		if !ok {
			continue
		}

		score := 95.0
		var probe any
		if json.Unmarshal([]byte(value), &probe) == nil {
			score = 65.0
		}

		fixes = append(fixes, Fix{
			FixType:    FixExpressionFormat,
			Confidence: ResolveConfidence(score),
			Score:      score,
			NodeName:   f.NodeName,
			Path:       f.Path,
			Before:     value,
			After:      expected,
			op: &diffengine.Op{
				Type:            diffengine.OpUpdateNode,
				Name:            f.NodeName,
				ParametersPatch: patch,
			},
		})
	}
	return fixes
}

// generateNodeTypeCorrection implements spec §4.D.2: replace an
// unrecognized type with the KB's top similarity suggestion. Offered only
// at sim >= 0.75 (spec's literal per-generator cutoff, not the generic
// score formula); sim >= 0.9 resolves to high confidence, 0.75-0.9 to
// medium, matching the HIGH/MEDIUM bands spec gives for this generator
// specifically.
func generateNodeTypeCorrection(result *validate.Result) []Fix {
	var fixes []Fix
	for _, f := range result.Errors {
		if f.Code != "INVALID_NODE_TYPE_FORMAT" || len(f.Suggestions) == 0 {
			continue
		}
		top := f.Suggestions[0]
		if top.Confidence < 0.75 {
			continue
		}
		confidence := ConfidenceMedium
		if top.Confidence >= 0.9 {
			confidence = ConfidenceHigh
		}
		fixes = append(fixes, Fix{
			FixType:    FixNodeTypeCorrection,
			Confidence: confidence,
			Score:      top.Confidence * 100,
			NodeName:   f.NodeName,
			Before:     f.Message,
			After:      top.Value,
			op: &diffengine.Op{
				Type:     diffengine.OpUpdateNode,
				Name:     f.NodeName,
				NodeType: top.Value,
			},
		})
	}
	return fixes
}

// generateWebhookMissingPath implements spec §4.D.3: synthesize a
// UUID-based path for every webhook node missing one.
func generateWebhookMissingPath(w *workflow.Workflow) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if !isWebhookType(n.Type) {
			continue
		}
		path, _ := n.Parameters["path"].(string)
		if strings.TrimSpace(path) != "" {
			continue
		}
		newPath := uuid.NewString()
		fixes = append(fixes, Fix{
			FixType:    FixWebhookMissingPath,
			Confidence: ConfidenceHigh,
			Score:      75,
			NodeName:   n.Name,
			Path:       "path",
			Before:     nil,
			After:      newPath,
			op: &diffengine.Op{
				Type:            diffengine.OpUpdateNode,
				Name:            n.Name,
				ParametersPatch: map[string]any{"path": newPath},
			},
		})
	}
	return fixes
}

func isWebhookType(nodeType string) bool {
	i := strings.LastIndex(nodeType, ".")
	seg := nodeType
	if i >= 0 {
		seg = nodeType[i+1:]
	}
	return strings.EqualFold(seg, "webhook")
}

// generateSwitchOptions implements spec §4.D.4: upgrade a legacy switch
// node's top-level fallbackOutput/renameFallbackOutput keys to the nested
// rules.options shape versions >= 3 require, grounded on the breaking-
// change entry pkg/kb seeds for vendor-base.switch 2->3. Only the nested
// keys are added (ParametersPatch deep-merges and never deletes); the
// legacy top-level keys are left in place as harmless extras, which keeps
// the fix idempotent without needing a delete-key diff primitive.
func generateSwitchOptions(w *workflow.Workflow, catalog validate.KnowledgeBase) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if !isSwitchTypeName(n.Type) {
			continue
		}
		fallback, hasFallback := n.Parameters["fallbackOutput"]
		rename, hasRename := n.Parameters["renameFallbackOutput"]
		if !hasFallback && !hasRename {
			continue
		}
		rules, _ := n.Parameters["rules"].(map[string]any)
		if rules != nil {
			if existingOpts, ok := rules["options"].(map[string]any); ok {
				if _, already := existingOpts["fallbackOutput"]; already {
					continue // already migrated
				}
			}
		}

		newOptions := map[string]any{}
		if hasFallback {
			newOptions["fallbackOutput"] = fallback
		}
		if hasRename {
			newOptions["renameFallbackOutput"] = rename
		}

		fixes = append(fixes, Fix{
			FixType:    FixSwitchOptions,
			Confidence: ConfidenceHigh,
			Score:      80,
			NodeName:   n.Name,
			Path:       "rules.options",
			Before:     map[string]any{"fallbackOutput": fallback, "renameFallbackOutput": rename},
			After:      newOptions,
			op: &diffengine.Op{
				Type: diffengine.OpUpdateNode,
				Name: n.Name,
				ParametersPatch: map[string]any{
					"rules": map[string]any{"options": newOptions},
				},
			},
		})
	}
	return fixes
}

func isSwitchTypeName(nodeType string) bool {
	return strings.HasSuffix(nodeType, ".switch")
}

// generateTypeVersionCorrection implements spec §4.D.5: clamp typeVersion
// down to latestVersion when it exceeds what the catalog recognizes.
func generateTypeVersionCorrection(w *workflow.Workflow, catalog validate.KnowledgeBase) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		d, err := catalog.Lookup(n.Type)
		if err != nil || d == nil || n.TypeVersion <= d.LatestVersion {
			continue
		}
		latest := d.LatestVersion
		fixes = append(fixes, Fix{
			FixType:    FixTypeVersionCorrection,
			Confidence: ConfidenceMedium,
			Score:      70,
			NodeName:   n.Name,
			Path:       "typeVersion",
			Before:     n.TypeVersion,
			After:      latest,
			op: &diffengine.Op{
				Type:        diffengine.OpUpdateNode,
				Name:        n.Name,
				TypeVersion: &latest,
			},
		})
	}
	return fixes
}

// generateErrorOutputConfig implements spec §4.D.6: drop onError from a
// node whose descriptor doesn't declare onError support.
func generateErrorOutputConfig(w *workflow.Workflow, catalog validate.KnowledgeBase) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if n.OnError == "" {
			continue
		}
		d, err := catalog.Lookup(n.Type)
		if err != nil || d == nil || d.SupportsOnError {
			continue
		}
		cleared := ""
		fixes = append(fixes, Fix{
			FixType:    FixErrorOutputConfig,
			Confidence: ConfidenceMedium,
			Score:      65,
			NodeName:   n.Name,
			Path:       "onError",
			Before:     n.OnError,
			After:      nil,
			op: &diffengine.Op{
				Type:    diffengine.OpUpdateNode,
				Name:    n.Name,
				OnError: &cleared,
			},
		})
	}
	return fixes
}

// generateTypeVersionUpgrade implements spec §4.D.7: raise typeVersion to
// latestVersion. Confidence is medium when the registry reports no
// breaking changes on the path taken, low otherwise (a breaking change
// means the upgrade needs a human to review behavior, even though the
// mechanical version bump itself is safe to apply).
func generateTypeVersionUpgrade(w *workflow.Workflow, catalog validate.KnowledgeBase) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		d, err := catalog.Lookup(n.Type)
		if err != nil || d == nil || n.TypeVersion >= d.LatestVersion {
			continue
		}
		changes, _ := catalog.BreakingChanges(n.Type, n.TypeVersion)
		confidence := ConfidenceMedium
		score := 70.0
		if len(changes) > 0 {
			confidence = ConfidenceLow
			score = 40
		}
		latest := d.LatestVersion
		fixes = append(fixes, Fix{
			FixType:    FixTypeVersionUpgrade,
			Confidence: confidence,
			Score:      score,
			NodeName:   n.Name,
			Path:       "typeVersion",
			Before:     n.TypeVersion,
			After:      latest,
			Guidance:   guidanceFromBreakingChanges(n.Name, changes),
			op: &diffengine.Op{
				Type:        diffengine.OpUpdateNode,
				Name:        n.Name,
				TypeVersion: &latest,
			},
		})
	}
	return fixes
}

// generateVersionMigration implements spec §4.D.8: surface human-readable
// migration steps for non-automigratable breaking changes without
// mutating the workflow (low confidence, guidance only).
func generateVersionMigration(w *workflow.Workflow, catalog validate.KnowledgeBase) []Fix {
	var fixes []Fix
	for i := range w.Nodes {
		n := &w.Nodes[i]
		d, err := catalog.Lookup(n.Type)
		if err != nil || d == nil || n.TypeVersion >= d.LatestVersion {
			continue
		}
		changes, _ := catalog.BreakingChanges(n.Type, n.TypeVersion)
		var manual []validate.BreakingChange
		for _, c := range changes {
			if !c.AutoMigratable {
				manual = append(manual, c)
			}
		}
		if len(manual) == 0 {
			continue
		}
		fixes = append(fixes, Fix{
			FixType:    FixVersionMigration,
			Confidence: ConfidenceLow,
			Score:      30,
			NodeName:   n.Name,
			Guidance:   guidanceFromBreakingChanges(n.Name, manual),
			op:         nil,
		})
	}
	return fixes
}

func guidanceFromBreakingChanges(nodeName string, changes []validate.BreakingChange) *PostUpdateGuidance {
	if len(changes) == 0 {
		return &PostUpdateGuidance{Status: "complete", EstimatedMinutes: 0}
	}
	g := &PostUpdateGuidance{}
	allAuto := true
	for _, c := range changes {
		g.BehaviorChanges = append(g.BehaviorChanges, fmt.Sprintf("%s: %s", nodeName, c.Description))
		if !c.AutoMigratable {
			allAuto = false
			g.RequiredActions = append(g.RequiredActions,
				fmt.Sprintf("review %s after upgrading from v%v to v%v: %s", nodeName, c.FromVersion, c.ToVersion, c.Description))
			g.EstimatedMinutes += 10
		} else {
			g.EstimatedMinutes += 2
		}
	}
	switch {
	case allAuto:
		g.Status = "complete"
	case len(g.RequiredActions) == len(changes):
		g.Status = "manual-only"
	default:
		g.Status = "partial"
	}
	return g
}
