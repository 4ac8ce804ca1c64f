package validate

import (
	"regexp"
	"strings"

	"github.com/flowctl/flowctl/pkg/workflow"
)

// stageNodeSpecific is pipeline stage 3: dispatch on node type for checks
// that only make sense for a particular family of node (HTTP, webhook,
// code, database clients, messaging, sheets, AI family). Each dispatcher
// only ever appends findings; none of them mutate the workflow.
func stageNodeSpecific(w *workflow.Workflow, catalog KnowledgeBase, opts Options, result *Result) {
	for i := range w.Nodes {
		n := &w.Nodes[i]
		switch {
		case isType(n.Type, "httpRequest"):
			dispatchHTTPRequest(n, result)
		case isType(n.Type, "webhook"):
			dispatchWebhook(n, result)
		case isType(n.Type, "code"):
			dispatchCode(n, opts, result)
		case isDatabaseType(n.Type):
			dispatchDatabase(n, result)
		case isType(n.Type, "slack"):
			dispatchMessaging(n, result)
		case isType(n.Type, "sheets"):
			dispatchSheets(n, result)
		case strings.HasPrefix(n.Type, "vendor-ai."):
			dispatchAINode(n, opts, result)
		}
	}
}

// isType reports whether nodeType's final dotted segment, case-insensitive,
// equals suffix (e.g. "vendor-base.httpRequest" matches "httpRequest").
func isType(nodeType, suffix string) bool {
	i := strings.LastIndex(nodeType, ".")
	segment := nodeType
	if i >= 0 {
		segment = nodeType[i+1:]
	}
	return strings.EqualFold(segment, suffix)
}

func isDatabaseType(nodeType string) bool {
	return isType(nodeType, "postgres") || isType(nodeType, "mySql") || isType(nodeType, "mongoDb")
}

func dispatchHTTPRequest(n *workflow.Node, result *Result) {
	url, _ := n.Parameters["url"].(string)
	if strings.TrimSpace(url) == "" {
		result.addError(Finding{Code: "HTTP_REQUEST_MISSING_URL", NodeName: n.Name, Path: "url", Message: "HTTP Request node has no url"})
	}
}

func dispatchWebhook(n *workflow.Node, result *Result) {
	path, _ := n.Parameters["path"].(string)
	if strings.TrimSpace(path) == "" {
		result.addWarning(Finding{Code: "WEBHOOK_MISSING_PATH", NodeName: n.Name, Path: "path",
			Message: "webhook node has no path; a random path will be generated by the platform", Hint: "autofix webhook-missing-path synthesizes a stable UUID path"})
	}
}

func dispatchCode(n *workflow.Node, opts Options, result *Result) {
	lang, _ := n.Parameters["language"].(string)
	codeKey := "jsCode"
	if lang == "python" {
		codeKey = "pythonCode"
	}
	code, _ := n.Parameters[codeKey].(string)
	if strings.TrimSpace(code) == "" && opts.aiTuned() {
		result.addWarning(Finding{Code: "CODE_NODE_EMPTY_BODY", NodeName: n.Name, Path: codeKey, Message: "code node has no code"})
	}
}

// sqlInjectionPatterns are the heuristic red flags spec §4.C.3 names for
// database-client node queries: raw interpolation, expression syntax
// embedded in SQL text, and classic injection shapes.
var sqlInjectionPatterns = []struct {
	code string
	re   *regexp.Regexp
	msg  string
}{
	{"SQL_BACKTICK_INTERPOLATION", regexp.MustCompile("`[^`]*\\$\\{[^}]+\\}[^`]*`"), "raw backtick interpolation in SQL text"},
	{"SQL_TEMPLATE_EXPRESSION", regexp.MustCompile(`\$\{[^}]+\}`), "template expression ${...} embedded directly in SQL"},
	{"SQL_EXPRESSION_SYNTAX", regexp.MustCompile(`\{\{[^}]+\}\}`), "workflow expression syntax embedded directly in SQL"},
	{"SQL_TAUTOLOGY", regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`), "tautology (OR 1=1) suggests unsanitized input"},
	{"SQL_UNION_SELECT", regexp.MustCompile(`(?i)\bunion\s+select\b`), "UNION SELECT suggests injection probing"},
	{"SQL_UNGUARDED_MUTATION", regexp.MustCompile(`(?i)\b(drop|delete)\s+(table|from)\b.*\{\{`), "DROP/DELETE combined with an unguarded expression"},
	{"SQL_MYSQL_CONCAT_VARIABLE", regexp.MustCompile(`(?i)concat\s*\([^)]*\{\{`), "MySQL CONCAT() with an interpolated variable"},
}

func dispatchDatabase(n *workflow.Node, result *Result) {
	query, _ := n.Parameters["query"].(string)
	if query == "" {
		return
	}
	for _, p := range sqlInjectionPatterns {
		if p.re.MatchString(query) {
			result.addWarning(Finding{Code: p.code, NodeName: n.Name, Path: "query", Message: p.msg,
				Context: map[string]any{"value": query}})
		}
	}
}

func dispatchMessaging(n *workflow.Node, result *Result) {
	resource, _ := n.Parameters["resource"].(string)
	if resource == "message" {
		if text, _ := n.Parameters["text"].(string); strings.TrimSpace(text) == "" {
			result.addWarning(Finding{Code: "MESSAGE_EMPTY_TEXT", NodeName: n.Name, Path: "text", Message: "message text is empty"})
		}
	}
}

func dispatchSheets(n *workflow.Node, result *Result) {
	op, _ := n.Parameters["operation"].(string)
	if op == "" {
		result.addError(Finding{Code: "SHEETS_MISSING_OPERATION", NodeName: n.Name, Path: "operation", Message: "Google Sheets node has no operation selected"})
	}
}
