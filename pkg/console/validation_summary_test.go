package console

import (
	"strings"
	"testing"

	"github.com/flowctl/flowctl/pkg/validate"
)

func TestFormatValidationSummary_NoFindings(t *testing.T) {
	result := &validate.Result{Valid: true}

	output := FormatValidationSummary(result, false)
	if output != "" {
		t.Errorf("expected empty output for a clean result, got: %s", output)
	}
}

func TestFormatValidationSummary_SingleError(t *testing.T) {
	result := &validate.Result{
		Errors: []validate.Finding{
			{Kind: validate.KindError, Code: "INVALID_NODE_TYPE_FORMAT", Message: "unknown node type \"webhok\"", NodeName: "Trigger"},
		},
	}

	output := FormatValidationSummary(result, false)

	if !strings.Contains(output, "1 error(s), 0 warning(s)") {
		t.Errorf("expected finding counts in output, got: %s", output)
	}
	if !strings.Contains(output, "By Category:") {
		t.Errorf("expected category section, got: %s", output)
	}
	if !strings.Contains(output, "Schema: 1 error(s)") {
		t.Errorf("expected schema category, got: %s", output)
	}
	if !strings.Contains(output, "Recommended Fix Order:") {
		t.Errorf("expected recommended fix order, got: %s", output)
	}
	if !strings.Contains(output, "Use --verbose") {
		t.Errorf("expected verbose flag hint, got: %s", output)
	}
}

func TestFormatValidationSummary_MultipleCategories(t *testing.T) {
	result := &validate.Result{
		Errors: []validate.Finding{
			{Kind: validate.KindError, Code: "INVALID_NODE_TYPE_FORMAT", Message: "unknown node type", NodeName: "A"},
			{Kind: validate.KindError, Code: "CONNECTION_UNKNOWN_TARGET", Message: "dangling connection", NodeName: "B"},
			{Kind: validate.KindError, Code: "N8N_PARAMETER_VALIDATION_ERROR", Message: "missing required parameter", NodeName: "A"},
		},
		Warnings: []validate.Finding{
			{Kind: validate.KindWarning, Code: "SQL_UNION_SELECT", Message: "possible SQL injection", NodeName: "Query"},
		},
	}

	output := FormatValidationSummary(result, false)

	if !strings.Contains(output, "3 error(s), 1 warning(s)") {
		t.Errorf("expected 3 errors and 1 warning in output, got: %s", output)
	}
	if !strings.Contains(output, "Schema: 2 error(s)") {
		t.Errorf("expected 2 schema errors grouped, got: %s", output)
	}
	if !strings.Contains(output, "Connections: 1 error(s)") {
		t.Errorf("expected 1 connections error grouped, got: %s", output)
	}
}

func TestFormatValidationSummary_VerboseDetail(t *testing.T) {
	result := &validate.Result{
		Errors: []validate.Finding{
			{Kind: validate.KindError, Code: "MISSING_LANGUAGE_MODEL", Message: "agent has no language model", NodeName: "Agent", Hint: "connect an ai_languageModel node"},
		},
	}

	output := FormatValidationSummary(result, true)

	if !strings.Contains(output, "Detailed Findings:") {
		t.Errorf("expected detailed findings header in verbose mode, got: %s", output)
	}
	if !strings.Contains(output, "Node: Agent") {
		t.Errorf("expected node name in detail line, got: %s", output)
	}
	if !strings.Contains(output, "Hint: connect an ai_languageModel node") {
		t.Errorf("expected hint line, got: %s", output)
	}
	if strings.Contains(output, "Use --verbose") {
		t.Errorf("verbose output should not repeat the --verbose hint, got: %s", output)
	}
}

func TestFindingCategory(t *testing.T) {
	cases := map[string]string{
		"INVALID_NODE_TYPE_FORMAT":       "schema",
		"N8N_PARAMETER_VALIDATION_ERROR": "schema",
		"CONNECTION_SELF_LOOP":           "connections",
		"EXPRESSION_MISSING_PREFIX":      "expressions",
		"MISSING_LANGUAGE_MODEL":         "ai-topology",
		"SQL_TAUTOLOGY":                  "security",
		"TYPEVERSION_BEHIND_LATEST":      "versions",
		"DUPLICATE_NODE_NAME":            "structure",
		"WEBHOOK_MISSING_PATH":           "node-config",
	}
	for code, want := range cases {
		if got := findingCategory(code); got != want {
			t.Errorf("findingCategory(%q) = %q, want %q", code, got, want)
		}
	}
}
