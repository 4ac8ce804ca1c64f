package workflow

import "strings"

// TypeResolver expands a short node-type alias to its fully qualified KB
// type. pkg/kb implements this; workflow takes it as an interface so the
// data model has no dependency on the knowledge base package.
type TypeResolver interface {
	ExpandAlias(aliasOrType string) (string, bool)
}

// Normalize applies the fixed cleanups spec.md §4.B requires after parsing:
// trimming node names, coercing typeVersion to a number (already true in
// our typed model, kept for parity with the contract), defaulting empty
// containers, expanding short-form types against the KB, and sanitizing
// legacy conditional-node options quirks.
//
// resolver may be nil, in which case short-type expansion is skipped (the
// caller is expected to validate unresolved short types downstream).
func Normalize(w *Workflow, resolver TypeResolver) *Workflow {
	if w.Connections == nil {
		w.Connections = ConnectionMap{}
	}
	if w.Settings == nil {
		w.Settings = map[string]any{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if w.Nodes == nil {
		w.Nodes = []Node{}
	}

	for i := range w.Nodes {
		n := &w.Nodes[i]
		n.Name = strings.TrimSpace(n.Name)
		if n.Parameters == nil {
			n.Parameters = map[string]any{}
		}
		if resolver != nil {
			if full, ok := resolver.ExpandAlias(n.Type); ok {
				n.Type = full
			}
		}
		sanitizeLegacyConditionalOptions(n)
	}

	return w
}

// sanitizeLegacyConditionalOptions fixes up the known legacy-key quirks in
// conditional/switch node `options`: older exports sometimes nest the
// case-sensitivity flag under `options.looseTypeValidation` as a string
// "true"/"false" instead of a bool, and nest `options.fallbackOutput` as the
// literal string "none" instead of being absent. Both are normalized to
// their current-schema shape so downstream validation sees one consistent
// representation regardless of which n8n export vintage produced the file.
func sanitizeLegacyConditionalOptions(n *Node) {
	if !isConditionalType(n.Type) {
		return
	}
	optsRaw, ok := n.Parameters["options"]
	if !ok {
		return
	}
	opts, ok := optsRaw.(map[string]any)
	if !ok {
		return
	}

	if loose, ok := opts["looseTypeValidation"].(string); ok {
		opts["looseTypeValidation"] = loose == "true"
	}
	if fallback, ok := opts["fallbackOutput"].(string); ok && fallback == "none" {
		delete(opts, "fallbackOutput")
	}
}

func isConditionalType(t string) bool {
	return strings.HasSuffix(t, ".if") || strings.HasSuffix(t, ".switch")
}
