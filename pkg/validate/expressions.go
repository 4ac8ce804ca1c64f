package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flowctl/flowctl/pkg/constants"
	"github.com/flowctl/flowctl/pkg/workflow"
)

// expressionBodyRegex finds the literal {{ ... }} sequence spec §4.C.6
// defines as "an expression", anywhere in a string leaf.
var expressionBodyRegex = regexp.MustCompile(`\{\{(.*?)\}\}`)

// expressionRootRegex extracts the leading `$name` token of an expression
// body, e.g. "$json.foo.bar" -> "$json".
var expressionRootRegex = regexp.MustCompile(`^\s*(\$[A-Za-z_][A-Za-z0-9_]*)`)

// allowedExpressionRoots are the top-level references the platform exposes
// inside an expression body (spec §4.C.6), sourced from pkg/constants so
// the allowlist has one definition shared across this package.
var allowedExpressionRoots = buildAllowedExpressionRoots()

func buildAllowedExpressionRoots() map[string]bool {
	roots := make(map[string]bool, len(constants.ExpressionRoots))
	for _, r := range constants.ExpressionRoots {
		roots[r] = true
	}
	return roots
}

// stageExpressions is pipeline stage 6: scans every string leaf of every
// node's parameters for the workflow expression syntax, grounded in the
// same "regex-scan string leaves for a bracketed mini-language, flag
// anything not on an allowlist" approach the teacher used for GitHub
// Actions expression safety checking.
func stageExpressions(w *workflow.Workflow, opts Options, result *Result) {
	for i := range w.Nodes {
		n := &w.Nodes[i]
		walkStrings(n.Parameters, "", func(path, value string) {
			checkExpressionString(n.Name, path, value, result)
		})
	}
}

func checkExpressionString(nodeName, path, value string, result *Result) {
	if !strings.Contains(value, "{{") {
		return
	}

	if !strings.HasPrefix(value, "=") {
		result.addError(Finding{
			Code: "EXPRESSION_MISSING_PREFIX", NodeName: nodeName, Path: path,
			Message: "expression value is missing the leading '=' required for evaluation",
			Context: map[string]any{"value": value, "expected": "=" + value},
			Suggestions: []Suggestion{{Value: "=" + value, Confidence: 0.95, AutoFixable: true, Reason: "add leading ="}},
		})
	}

	if strings.Count(value, "{{") != strings.Count(value, "}}") {
		result.addError(Finding{Code: "EXPRESSION_UNBALANCED", NodeName: nodeName, Path: path,
			Message: "expression has mismatched {{ }} brace counts", Context: map[string]any{"value": value}})
		return
	}

	for _, match := range expressionBodyRegex.FindAllStringSubmatch(value, -1) {
		body := match[1]
		rootMatch := expressionRootRegex.FindStringSubmatch(body)
		if rootMatch == nil {
			continue // bare literal or function call with no $-rooted reference; not our concern here
		}
		root := rootMatch[1]
		if !allowedExpressionRoots[root] {
			result.addError(Finding{Code: "EXPRESSION_INVALID_REFERENCE", NodeName: nodeName, Path: path,
				Message: fmt.Sprintf("unknown top-level reference %q in expression", root),
				Context: map[string]any{"value": value, "reference": root}})
		}
	}
}

// walkStrings recursively visits every string leaf of an arbitrary
// JSON-shaped value tree, calling visit with a dot/bracket path.
func walkStrings(v any, path string, visit func(path, value string)) {
	switch t := v.(type) {
	case string:
		visit(path, t)
	case map[string]any:
		for k, sub := range t {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			walkStrings(sub, childPath, visit)
		}
	case []any:
		for i, sub := range t {
			walkStrings(sub, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	}
}
