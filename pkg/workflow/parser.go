package workflow

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/logger"
)

var parserLog = logger.New("workflow:parser")

// RepairEdit is a structured breadcrumb describing one syntax repair applied
// while parsing with {repair: true} (spec §4.B).
type RepairEdit struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ParseOptions controls Parse's tolerance for malformed JSON.
type ParseOptions struct {
	Repair bool
}

// ParseResult is what Parse returns: the decoded workflow plus, when repair
// was requested, the list of edits applied to make the input valid JSON.
type ParseResult struct {
	Workflow *Workflow
	Edits    []RepairEdit
}

// Parse decodes raw workflow JSON bytes into a Workflow. Without Repair,
// only strict JSON is accepted. With Repair, a fixed pipeline of textual
// repairs is attempted, in order, before decoding (spec §4.B): strip
// trailing commas, convert single-quoted strings to double-quoted, quote
// bare object keys, and insert missing property separators.
func Parse(data []byte, opts ParseOptions) (*ParseResult, error) {
	var edits []RepairEdit
	src := data

	if opts.Repair {
		var applied []RepairEdit
		src, applied = repairJSON(src)
		edits = applied
	}

	var raw map[string]any
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, apperr.Wrap(apperr.KindData, "PARSE_ERROR", "failed to parse workflow JSON", err)
	}

	if err := ValidateStructure(raw); err != nil {
		return nil, apperr.Wrap(apperr.KindData, "PARSE_ERROR", "workflow failed structural validation", err)
	}

	var wf Workflow
	if err := json.Unmarshal(src, &wf); err != nil {
		return nil, apperr.Wrap(apperr.KindData, "PARSE_ERROR", "failed to decode workflow JSON", err)
	}

	return &ParseResult{Workflow: &wf, Edits: edits}, nil
}

var (
	trailingCommaPattern  = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyPattern        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	missingSeparatorRegex = regexp.MustCompile(`("\s*)\n(\s*")`)
)

// repairJSON attempts a fixed sequence of textual JSON repairs and records
// a breadcrumb for each kind of edit actually applied at least once.
func repairJSON(data []byte) ([]byte, []RepairEdit) {
	var edits []RepairEdit
	s := string(data)

	if trailingCommaPattern.MatchString(s) {
		s = trailingCommaPattern.ReplaceAllString(s, "$1")
		edits = append(edits, RepairEdit{Kind: "strip-trailing-commas", Detail: "removed trailing commas before closing brackets"})
	}

	if withQuotedKeys := quoteSingleQuotedStrings(s); withQuotedKeys != s {
		s = withQuotedKeys
		edits = append(edits, RepairEdit{Kind: "single-to-double-quotes", Detail: "converted single-quoted strings to double-quoted"})
	}

	if bareKeyPattern.MatchString(s) {
		quoted := bareKeyPattern.ReplaceAllString(s, `$1"$2"$3`)
		if quoted != s {
			s = quoted
			edits = append(edits, RepairEdit{Kind: "quote-bare-keys", Detail: "quoted bare object keys"})
		}
	}

	if missingSeparatorRegex.MatchString(s) {
		fixed := missingSeparatorRegex.ReplaceAllString(s, "$1,\n$2")
		if fixed != s {
			s = fixed
			edits = append(edits, RepairEdit{Kind: "insert-missing-separator", Detail: "inserted missing comma between properties"})
		}
	}

	for _, e := range edits {
		parserLog.Printf("repair applied: %s (%s)", e.Kind, e.Detail)
	}

	return []byte(s), edits
}

// quoteSingleQuotedStrings converts 'single quoted' JSON string literals to
// "double quoted" ones. It is a best-effort textual transform, not a full
// tokenizer, and is only ever invoked under {repair: true}.
func quoteSingleQuotedStrings(s string) string {
	var b strings.Builder
	inDouble := false
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '"' && !inDouble:
			inDouble = true
			b.WriteByte(c)
			i++
		case c == '"' && inDouble:
			inDouble = false
			b.WriteByte(c)
			i++
		case c == '\'' && !inDouble:
			// find matching closing single quote
			j := i + 1
			for j < len(s) && s[j] != '\'' {
				j++
			}
			if j >= len(s) {
				b.WriteByte(c)
				i++
				continue
			}
			inner := s[i+1 : j]
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(inner, `"`, `\"`))
			b.WriteByte('"')
			i = j + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// SerializeOptions controls Serialize's output shape.
type SerializeOptions struct {
	// Full, when false (the default), strips server-assigned fields
	// (id, createdAt, updatedAt, versionId) from the emitted document.
	Full bool
}

// Serialize encodes a Workflow back to JSON bytes (spec §4.B).
func Serialize(w *Workflow, opts SerializeOptions) ([]byte, error) {
	if opts.Full {
		return json.MarshalIndent(w, "", "  ")
	}

	stripped := *w
	stripped.ID = ""
	stripped.CreatedAt = ""
	stripped.UpdatedAt = ""
	stripped.VersionID = ""
	return json.MarshalIndent(&stripped, "", "  ")
}
