package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowctl/flowctl/pkg/validate"
)

// findingCategory buckets a Finding's stable code (spec §3 "kind, code")
// into one of the pipeline stages that can have produced it, for the
// grouped console summary below.
func findingCategory(code string) string {
	switch {
	case strings.HasPrefix(code, "SQL_"):
		return "security"
	case strings.HasPrefix(code, "EXPRESSION_"):
		return "expressions"
	case strings.HasPrefix(code, "CONNECTION_"):
		return "connections"
	case strings.HasPrefix(code, "TYPEVERSION_"), code == "BREAKING_CHANGE_PENDING":
		return "versions"
	case strings.HasPrefix(code, "AGENT_"), strings.HasPrefix(code, "BASIC_CHAIN_"),
		strings.HasPrefix(code, "TOO_MANY_"), strings.HasPrefix(code, "STREAMING_"),
		code == "MISSING_LANGUAGE_MODEL", code == "MISSING_OUTPUT_PARSER", code == "TOOL_MISSING_DESCRIPTION":
		return "ai-topology"
	case strings.HasPrefix(code, "MISSING_NODE"), strings.HasPrefix(code, "MISSING_NAME"),
		code == "DUPLICATE_NODE_NAME", code == "EMPTY_WORKFLOW", code == "NO_TRIGGER_NODE":
		return "structure"
	case code == "INVALID_NODE_TYPE_FORMAT", code == "N8N_PARAMETER_VALIDATION_ERROR":
		return "schema"
	default:
		return "node-config"
	}
}

// categoryEmoji gives each category a one-glyph badge for the summary.
var categoryEmoji = map[string]string{
	"structure":   "\U0001F9F1", // 🧱
	"schema":      "❌",     // ❌
	"connections": "\U0001F50C", // 🔌
	"expressions": "\U0001F9E9", // 🧩
	"ai-topology": "\U0001F916", // 🤖
	"security":    "\U0001F6E1", // 🛡
	"versions":    "\U0001F9EA", // 🧪
	"node-config": "⚠",     // ⚠
}

// findingSeverityRank orders Finding.Kind for the detailed listing:
// errors first, then warnings, infos, suggestions.
var findingSeverityRank = map[validate.FindingKind]int{
	validate.KindError:      0,
	validate.KindWarning:    1,
	validate.KindInfo:       2,
	validate.KindSuggestion: 3,
}

// FormatValidationSummary formats a validate.Result into a human-readable
// summary: counts by kind, a by-category breakdown, a fix-order hint, and
// (in verbose mode) one line per finding. Returns "" when the workflow is
// valid and has no warnings, since IO.EmitValidation prints its own
// success line in that case.
func FormatValidationSummary(r *validate.Result, verbose bool) string {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return ""
	}

	var out strings.Builder

	if len(r.Errors) > 0 {
		out.WriteString(FormatErrorMessage(fmt.Sprintf("%d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))))
		out.WriteString("\n\n")
	}

	if categories := groupByCategory(r.Errors); len(categories) > 0 {
		out.WriteString(FormatListHeader("By Category:"))
		out.WriteString("\n")
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			emoji := categoryEmoji[name]
			if emoji == "" {
				emoji = "⚠"
			}
			out.WriteString(fmt.Sprintf("  %s %s: %d error(s)\n", emoji, strings.Title(name), len(categories[name])))
		}
		out.WriteString("\n")
	}

	if len(r.Errors) > 0 && !verbose {
		out.WriteString(FormatListHeader("Recommended Fix Order:"))
		out.WriteString("\n")
		out.WriteString("  1. Fix structural and schema errors first (names, types, required parameters)\n")
		out.WriteString("  2. Repair connection integrity (dangling or out-of-range endpoints)\n")
		out.WriteString("  3. Resolve AI topology errors (language models, memories, tools)\n")
		out.WriteString("  4. Review security and version-currency warnings\n")
		out.WriteString("\n")
	}

	if verbose {
		all := make([]validate.Finding, 0, len(r.Errors)+len(r.Warnings)+len(r.Infos)+len(r.Suggestions))
		all = append(all, r.Errors...)
		all = append(all, r.Warnings...)
		all = append(all, r.Infos...)
		all = append(all, r.Suggestions...)
		sort.SliceStable(all, func(i, j int) bool {
			return findingSeverityRank[all[i].Kind] < findingSeverityRank[all[j].Kind]
		})

		out.WriteString(FormatListHeader("Detailed Findings:"))
		out.WriteString("\n\n")
		for i, f := range all {
			category := findingCategory(f.Code)
			emoji := categoryEmoji[category]
			if emoji == "" {
				emoji = "⚠"
			}
			out.WriteString(fmt.Sprintf("%d. %s [%s] %s\n", i+1, emoji, strings.ToUpper(string(f.Kind)), f.Code))
			out.WriteString(fmt.Sprintf("   %s\n", f.Message))
			if f.NodeName != "" {
				location := f.NodeName
				if f.Path != "" {
					location = fmt.Sprintf("%s.%s", location, f.Path)
				}
				out.WriteString(fmt.Sprintf("   Node: %s\n", location))
			}
			if f.Hint != "" {
				out.WriteString(fmt.Sprintf("   Hint: %s\n", f.Hint))
			}
			out.WriteString("\n")
		}
	} else if len(r.Errors) > 0 {
		out.WriteString(FormatInfoMessage("Use --verbose to see detailed findings"))
		out.WriteString("\n")
	}

	return out.String()
}

// groupByCategory buckets findings by findingCategory, preserving each
// bucket's input order.
func groupByCategory(findings []validate.Finding) map[string][]validate.Finding {
	groups := make(map[string][]validate.Finding)
	for _, f := range findings {
		category := findingCategory(f.Code)
		groups[category] = append(groups[category], f)
	}
	return groups
}
