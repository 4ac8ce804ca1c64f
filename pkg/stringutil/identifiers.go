package stringutil

import "strings"

// NormalizeWorkflowFileName removes .json and .workflow.json extensions from
// workflow file names. This is used to standardize workflow identifiers
// regardless of which file suffix a caller passed on the command line.
//
// The function checks for extensions in order of specificity:
// 1. Removes .workflow.json extension (the explicit long form)
// 2. Removes .json extension
// 3. Returns the name unchanged if no recognized extension is found
//
// This function performs normalization only - it assumes the input is already
// a valid identifier and does NOT perform character validation or sanitization.
//
// Examples:
//
//	NormalizeWorkflowFileName("invoice-sync")                 // returns "invoice-sync"
//	NormalizeWorkflowFileName("invoice-sync.json")             // returns "invoice-sync"
//	NormalizeWorkflowFileName("invoice-sync.workflow.json")    // returns "invoice-sync"
//	NormalizeWorkflowFileName("my.workflow.json")              // returns "my"
func NormalizeWorkflowFileName(name string) string {
	if strings.HasSuffix(name, ".workflow.json") {
		return strings.TrimSuffix(name, ".workflow.json")
	}
	if strings.HasSuffix(name, ".json") {
		return strings.TrimSuffix(name, ".json")
	}
	return name
}

// NormalizeNodeAlias converts dashes to camelCase-friendly form for node type
// aliases accepted on the command line (e.g. short aliases used against the
// node knowledge base). Both dash-separated and already-camel identifiers are
// valid inputs; this standardizes to the internal representation used as the
// KB lookup key suffix.
//
// Examples:
//
//	NormalizeNodeAlias("http-request")  // returns "httpRequest"
//	NormalizeNodeAlias("httpRequest")   // returns "httpRequest" (unchanged)
//	NormalizeNodeAlias("set-node")      // returns "setNode"
func NormalizeNodeAlias(identifier string) string {
	parts := strings.Split(identifier, "-")
	if len(parts) == 1 {
		return identifier
	}
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
