package validate

import (
	"testing"

	"github.com/flowctl/flowctl/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is a hand-built KnowledgeBase for testing pipeline stages
// without touching SQLite.
type fakeCatalog struct {
	byType  map[string]*NodeTypeDescriptor
	aliases map[string]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{byType: map[string]*NodeTypeDescriptor{}, aliases: map[string]string{}}
}

func (f *fakeCatalog) Lookup(nodeType string) (*NodeTypeDescriptor, error) {
	return f.byType[nodeType], nil
}

func (f *fakeCatalog) ExpandAlias(aliasOrType string) (string, bool) {
	if full, ok := f.aliases[aliasOrType]; ok {
		return full, true
	}
	if _, ok := f.byType[aliasOrType]; ok {
		return aliasOrType, true
	}
	return "", false
}

func (f *fakeCatalog) SimilarTypes(badType string, limit int) ([]SimilarType, error) {
	if badType == "webhok" {
		return []SimilarType{{Type: "vendor-base.webhook", Score: 0.92, Reason: "similar"}}, nil
	}
	return nil, nil
}

func (f *fakeCatalog) BreakingChanges(nodeType string, fromVersion float64) ([]BreakingChange, error) {
	return nil, nil
}

func baseCatalog() *fakeCatalog {
	c := newFakeCatalog()
	c.byType["vendor.httpRequest"] = &NodeTypeDescriptor{Type: "vendor.httpRequest", LatestVersion: 4}
	c.byType["vendor-base.webhook"] = &NodeTypeDescriptor{Type: "vendor-base.webhook", LatestVersion: 2,
		Properties: []PropertyDescriptor{{Name: "path", Path: "path", TypeTag: "string", Required: true}}}
	c.byType["vendor-ai.agent"] = &NodeTypeDescriptor{Type: "vendor-ai.agent", LatestVersion: 2}
	return c
}

func TestScenarioExpressionMissingPrefix(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor.httpRequest", TypeVersion: 4,
		Parameters: map[string]any{"url": "{{ $json.endpoint }}"},
	}}}
	result := Validate(w, baseCatalog(), DefaultOptions())

	var found *Finding
	for i := range result.Errors {
		if result.Errors[i].Code == "EXPRESSION_MISSING_PREFIX" {
			found = &result.Errors[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "={{ $json.endpoint }}", found.Context["expected"])
}

func TestScenarioUnknownShortTypeWithTypoSuggestsCorrection(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{Name: "Hook", Type: "webhok", TypeVersion: 1}}}
	result := Validate(w, baseCatalog(), DefaultOptions())

	var found *Finding
	for i := range result.Errors {
		if result.Errors[i].Code == "INVALID_NODE_TYPE_FORMAT" {
			found = &result.Errors[i]
		}
	}
	require.NotNil(t, found)
	require.NotEmpty(t, found.Suggestions)
	assert.Equal(t, "vendor-base.webhook", found.Suggestions[0].Value)
	assert.GreaterOrEqual(t, found.Suggestions[0].Confidence, 0.9)
	assert.True(t, found.Suggestions[0].AutoFixable)
}

func TestScenarioAgentWithoutLanguageModel(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{Name: "Agent", Type: "vendor-ai.agent", TypeVersion: 2}}}
	opts := DefaultOptions()
	opts.Profile = ProfileAIFriendly
	result := Validate(w, baseCatalog(), opts)

	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e.Code == "MISSING_LANGUAGE_MODEL" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidWorkflowHasNoErrors(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Webhook", Type: "vendor-base.webhook", TypeVersion: 2,
		Parameters: map[string]any{"path": "hook"},
	}}}
	result := Validate(w, baseCatalog(), DefaultOptions())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestMissingRequiredParameterEmitsSchemaDelta(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Webhook", Type: "vendor-base.webhook", TypeVersion: 2,
		Parameters: map[string]any{},
	}}}
	result := Validate(w, baseCatalog(), DefaultOptions())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "N8N_PARAMETER_VALIDATION_ERROR", result.Errors[0].Code)
	delta := result.Errors[0].Context["schemaDelta"].(SchemaDelta)
	assert.Equal(t, []string{"path"}, delta.Missing)
}

func TestDuplicateNodeNameIsStructuralError(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{
		{Name: "A", Type: "vendor.httpRequest", Parameters: map[string]any{"url": "https://x"}},
		{Name: "A", Type: "vendor.httpRequest", Parameters: map[string]any{"url": "https://x"}},
	}}
	result := Validate(w, baseCatalog(), DefaultOptions())
	found := false
	for _, e := range result.Errors {
		if e.Code == "DUPLICATE_NODE_NAME" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConnectionToUnknownTargetIsError(t *testing.T) {
	w := &workflow.Workflow{
		Name:  "x",
		Nodes: []workflow.Node{{Name: "A", Type: "vendor.httpRequest", Parameters: map[string]any{"url": "https://x"}}},
		Connections: workflow.ConnectionMap{
			"A": workflow.OutletMap{workflow.OutletMain: []workflow.Slot{{{Node: "Ghost", Type: workflow.OutletMain, Index: 0}}}},
		},
	}
	result := Validate(w, baseCatalog(), DefaultOptions())
	found := false
	for _, e := range result.Errors {
		if e.Code == "CONNECTION_UNKNOWN_TARGET" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSQLInjectionHeuristicFlagsTautology(t *testing.T) {
	c := baseCatalog()
	c.byType["vendor-db.postgres"] = &NodeTypeDescriptor{Type: "vendor-db.postgres", LatestVersion: 2}
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "PG", Type: "vendor-db.postgres", TypeVersion: 2,
		Parameters: map[string]any{"query": "SELECT * FROM users WHERE 1=1 OR 1=1"},
	}}}
	result := Validate(w, c, DefaultOptions())
	found := false
	for _, warn := range result.Warnings {
		if warn.Code == "SQL_TAUTOLOGY" {
			found = true
		}
	}
	assert.True(t, found)
}
