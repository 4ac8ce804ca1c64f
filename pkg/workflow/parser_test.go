package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalWorkflowJSON() string {
	return `{
  "name": "Invoice Sync",
  "nodes": [
    {"name": "Webhook", "type": "vendor-base.webhook", "typeVersion": 2, "position": [0,0], "parameters": {}}
  ],
  "connections": {},
  "settings": {},
  "tags": []
}`
}

func TestParseStrictRejectsTrailingComma(t *testing.T) {
	bad := `{"name": "x", "nodes": [],}`
	_, err := Parse([]byte(bad), ParseOptions{Repair: false})
	assert.Error(t, err)
}

func TestParseRepairStripsTrailingComma(t *testing.T) {
	bad := `{"name": "x", "nodes": [],}`
	result, err := Parse([]byte(bad), ParseOptions{Repair: true})
	require.NoError(t, err)
	assert.Equal(t, "x", result.Workflow.Name)
	require.Len(t, result.Edits, 1)
	assert.Equal(t, "strip-trailing-commas", result.Edits[0].Kind)
}

func TestParseRepairQuotesBareKeys(t *testing.T) {
	bad := `{name: "x", nodes: []}`
	result, err := Parse([]byte(bad), ParseOptions{Repair: true})
	require.NoError(t, err)
	assert.Equal(t, "x", result.Workflow.Name)
}

func TestParseRepairConvertsSingleQuotes(t *testing.T) {
	bad := `{'name': 'x', 'nodes': []}`
	result, err := Parse([]byte(bad), ParseOptions{Repair: true})
	require.NoError(t, err)
	assert.Equal(t, "x", result.Workflow.Name)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	result, err := Parse([]byte(minimalWorkflowJSON()), ParseOptions{})
	require.NoError(t, err)

	out, err := Serialize(result.Workflow, SerializeOptions{Full: true})
	require.NoError(t, err)

	reparsed, err := Parse(out, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, result.Workflow.Name, reparsed.Workflow.Name)
	assert.Equal(t, len(result.Workflow.Nodes), len(reparsed.Workflow.Nodes))
	assert.Equal(t, result.Workflow.Nodes[0].Type, reparsed.Workflow.Nodes[0].Type)
}

func TestSerializeStripsServerFieldsByDefault(t *testing.T) {
	w := &Workflow{Name: "x", ID: "abc123", CreatedAt: "2026-01-01", Nodes: []Node{}, Connections: ConnectionMap{}}
	out, err := Serialize(w, SerializeOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "abc123")
	assert.NotContains(t, string(out), "2026-01-01")
}

func TestSerializeFullKeepsServerFields(t *testing.T) {
	w := &Workflow{Name: "x", ID: "abc123", Nodes: []Node{}, Connections: ConnectionMap{}}
	out, err := Serialize(w, SerializeOptions{Full: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "abc123")
}

func TestNormalizeDefaultsEmptyContainers(t *testing.T) {
	w := &Workflow{Name: "x"}
	Normalize(w, nil)
	assert.NotNil(t, w.Connections)
	assert.NotNil(t, w.Settings)
	assert.NotNil(t, w.Tags)
	assert.NotNil(t, w.Nodes)
}

func TestNormalizeTrimsNodeNames(t *testing.T) {
	w := &Workflow{Name: "x", Nodes: []Node{{Name: "  Webhook  ", Type: "t"}}}
	Normalize(w, nil)
	assert.Equal(t, "Webhook", w.Nodes[0].Name)
}

type fakeResolver struct{}

func (fakeResolver) ExpandAlias(s string) (string, bool) {
	if s == "webhook" {
		return "vendor-base.webhook", true
	}
	return "", false
}

func TestNormalizeExpandsShortType(t *testing.T) {
	w := &Workflow{Name: "x", Nodes: []Node{{Name: "Webhook", Type: "webhook"}}}
	Normalize(w, fakeResolver{})
	assert.Equal(t, "vendor-base.webhook", w.Nodes[0].Type)
}

func TestNormalizeSanitizesLegacyConditionalOptions(t *testing.T) {
	w := &Workflow{Name: "x", Nodes: []Node{{
		Name: "IF", Type: "vendor-base.if",
		Parameters: map[string]any{
			"options": map[string]any{
				"looseTypeValidation": "true",
				"fallbackOutput":      "none",
			},
		},
	}}}
	Normalize(w, nil)
	opts := w.Nodes[0].Parameters["options"].(map[string]any)
	assert.Equal(t, true, opts["looseTypeValidation"])
	_, hasFallback := opts["fallbackOutput"]
	assert.False(t, hasFallback)
}

func TestCloneIsDeep(t *testing.T) {
	w := &Workflow{
		Name: "x",
		Nodes: []Node{{
			Name: "A", Type: "t",
			Parameters: map[string]any{"nested": map[string]any{"k": "v"}},
		}},
		Connections: ConnectionMap{"A": OutletMap{OutletMain: []Slot{{{Node: "B", Type: OutletMain, Index: 0}}}}},
	}
	clone := w.Clone()
	clone.Nodes[0].Parameters["nested"].(map[string]any)["k"] = "changed"
	clone.Connections["A"][OutletMain][0][0].Node = "C"

	assert.Equal(t, "v", w.Nodes[0].Parameters["nested"].(map[string]any)["k"])
	assert.Equal(t, "B", w.Connections["A"][OutletMain][0][0].Node)
}
