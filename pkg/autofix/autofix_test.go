package autofix

import (
	"testing"

	"github.com/flowctl/flowctl/pkg/diffengine"
	"github.com/flowctl/flowctl/pkg/validate"
	"github.com/flowctl/flowctl/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog mirrors pkg/validate's test fake so generators can be
// exercised without spinning up a real pkg/kb store.
type fakeCatalog struct {
	byType  map[string]*validate.NodeTypeDescriptor
	breaks  map[string][]validate.BreakingChange
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{byType: map[string]*validate.NodeTypeDescriptor{}, breaks: map[string][]validate.BreakingChange{}}
}

func (f *fakeCatalog) Lookup(nodeType string) (*validate.NodeTypeDescriptor, error) {
	return f.byType[nodeType], nil
}

func (f *fakeCatalog) ExpandAlias(aliasOrType string) (string, bool) {
	if _, ok := f.byType[aliasOrType]; ok {
		return aliasOrType, true
	}
	return "", false
}

func (f *fakeCatalog) SimilarTypes(badType string, limit int) ([]validate.SimilarType, error) {
	return nil, nil
}

func (f *fakeCatalog) BreakingChanges(nodeType string, fromVersion float64) ([]validate.BreakingChange, error) {
	return f.breaks[nodeType], nil
}

func baseCatalog() *fakeCatalog {
	c := newFakeCatalog()
	c.byType["vendor-base.webhook"] = &validate.NodeTypeDescriptor{Type: "vendor-base.webhook", LatestVersion: 2}
	c.byType["vendor-base.switch"] = &validate.NodeTypeDescriptor{Type: "vendor-base.switch", LatestVersion: 3}
	c.byType["vendor-base.httpRequest"] = &validate.NodeTypeDescriptor{Type: "vendor-base.httpRequest", LatestVersion: 4, SupportsOnError: false}
	c.byType["vendor-base.set"] = &validate.NodeTypeDescriptor{Type: "vendor-base.set", LatestVersion: 3, SupportsOnError: true}
	return c
}

func TestGenerateExpressionFormatWrapsMissingPrefix(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor-base.httpRequest", TypeVersion: 4,
		Parameters: map[string]any{"url": "{{ $json.endpoint }}"},
	}}}
	result := &validate.Result{Errors: []validate.Finding{{
		Code:     "EXPRESSION_MISSING_PREFIX",
		NodeName: "HTTP",
		Path:     "url",
		Context: map[string]any{
			"value":    "{{ $json.endpoint }}",
			"expected": "={{ $json.endpoint }}",
		},
	}}}

	fixes := generateExpressionFormat(w, result)
	require.Len(t, fixes, 1)
	f := fixes[0]
	assert.Equal(t, FixExpressionFormat, f.FixType)
	assert.Equal(t, ConfidenceHigh, f.Confidence)
	assert.Equal(t, "={{ $json.endpoint }}", f.After)
	require.NotNil(t, f.op)
	assert.Equal(t, map[string]any{"url": "={{ $json.endpoint }}"}, f.op.ParametersPatch)
}

func TestGenerateExpressionFormatLowersConfidenceForJSONLiteral(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor-base.httpRequest", TypeVersion: 4,
		Parameters: map[string]any{"body": "{{ \"literal\" }}"},
	}}}
	result := &validate.Result{Errors: []validate.Finding{{
		Code:     "EXPRESSION_MISSING_PREFIX",
		NodeName: "HTTP",
		Path:     "body",
		Context: map[string]any{
			"value":    "42",
			"expected": "=42",
		},
	}}}
	fixes := generateExpressionFormat(w, result)
	require.Len(t, fixes, 1)
	assert.Equal(t, ConfidenceMedium, fixes[0].Confidence)
}

func TestGenerateNodeTypeCorrectionRespectsCutoffAndBands(t *testing.T) {
	result := &validate.Result{Errors: []validate.Finding{
		{
			Code: "INVALID_NODE_TYPE_FORMAT", NodeName: "Hook",
			Suggestions: []validate.Suggestion{{Value: "vendor-base.webhook", Confidence: 0.92, AutoFixable: true}},
		},
		{
			Code: "INVALID_NODE_TYPE_FORMAT", NodeName: "Maybe",
			Suggestions: []validate.Suggestion{{Value: "vendor-base.set", Confidence: 0.8, AutoFixable: true}},
		},
		{
			Code: "INVALID_NODE_TYPE_FORMAT", NodeName: "TooFar",
			Suggestions: []validate.Suggestion{{Value: "vendor-base.set", Confidence: 0.5, AutoFixable: true}},
		},
	}}

	fixes := generateNodeTypeCorrection(result)
	require.Len(t, fixes, 2)
	assert.Equal(t, "Hook", fixes[0].NodeName)
	assert.Equal(t, ConfidenceHigh, fixes[0].Confidence)
	assert.Equal(t, "vendor-base.webhook", fixes[0].op.NodeType)
	assert.Equal(t, "Maybe", fixes[1].NodeName)
	assert.Equal(t, ConfidenceMedium, fixes[1].Confidence)
}

func TestGenerateWebhookMissingPathSynthesizesUUID(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{
		{Name: "Hook", Type: "vendor-base.webhook", Parameters: map[string]any{}},
		{Name: "AlreadySet", Type: "vendor-base.webhook", Parameters: map[string]any{"path": "configured"}},
	}}
	fixes := generateWebhookMissingPath(w)
	require.Len(t, fixes, 1)
	assert.Equal(t, "Hook", fixes[0].NodeName)
	assert.Equal(t, ConfidenceHigh, fixes[0].Confidence)
	newPath, ok := fixes[0].op.ParametersPatch["path"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, newPath)
}

func TestGenerateSwitchOptionsMigratesLegacyFallback(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Switch", Type: "vendor-base.switch",
		Parameters: map[string]any{"fallbackOutput": "extra", "rules": map[string]any{"values": []any{}}},
	}}}
	fixes := generateSwitchOptions(w, baseCatalog())
	require.Len(t, fixes, 1)
	patch := fixes[0].op.ParametersPatch
	rules, ok := patch["rules"].(map[string]any)
	require.True(t, ok)
	options, ok := rules["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "extra", options["fallbackOutput"])
}

func TestGenerateSwitchOptionsSkipsAlreadyMigrated(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Switch", Type: "vendor-base.switch",
		Parameters: map[string]any{
			"fallbackOutput": "extra",
			"rules": map[string]any{
				"options": map[string]any{"fallbackOutput": "extra"},
			},
		},
	}}}
	fixes := generateSwitchOptions(w, baseCatalog())
	assert.Empty(t, fixes)
}

func TestGenerateTypeVersionCorrectionClampsToLatest(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Hook", Type: "vendor-base.webhook", TypeVersion: 99,
	}}}
	fixes := generateTypeVersionCorrection(w, baseCatalog())
	require.Len(t, fixes, 1)
	assert.Equal(t, float64(2), fixes[0].After)
	require.NotNil(t, fixes[0].op.TypeVersion)
	assert.Equal(t, float64(2), *fixes[0].op.TypeVersion)
}

func TestGenerateErrorOutputConfigClearsUnsupported(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor-base.httpRequest", OnError: "continueRegularOutput",
	}}}
	fixes := generateErrorOutputConfig(w, baseCatalog())
	require.Len(t, fixes, 1)
	require.NotNil(t, fixes[0].op.OnError)
	assert.Equal(t, "", *fixes[0].op.OnError)
}

func TestGenerateErrorOutputConfigLeavesSupportedAlone(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Set", Type: "vendor-base.set", OnError: "continueRegularOutput",
	}}}
	fixes := generateErrorOutputConfig(w, baseCatalog())
	assert.Empty(t, fixes)
}

func TestGenerateTypeVersionUpgradeConfidenceDropsWithBreakingChanges(t *testing.T) {
	catalog := baseCatalog()
	catalog.breaks["vendor-base.webhook"] = []validate.BreakingChange{{
		FromVersion: 1, ToVersion: 2, Severity: "medium", Description: "responseMode default changed", AutoMigratable: true,
	}}
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Hook", Type: "vendor-base.webhook", TypeVersion: 1,
	}}}
	fixes := generateTypeVersionUpgrade(w, catalog)
	require.Len(t, fixes, 1)
	assert.Equal(t, ConfidenceLow, fixes[0].Confidence)
	require.NotNil(t, fixes[0].Guidance)
	assert.Equal(t, "complete", fixes[0].Guidance.Status)
}

func TestGenerateVersionMigrationOnlyForNonAutoMigratable(t *testing.T) {
	catalog := baseCatalog()
	catalog.breaks["vendor-base.httpRequest"] = []validate.BreakingChange{{
		FromVersion: 3, ToVersion: 4, Severity: "high", Description: "body structure changed", AutoMigratable: false,
	}}
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor-base.httpRequest", TypeVersion: 3,
	}}}
	fixes := generateVersionMigration(w, catalog)
	require.Len(t, fixes, 1)
	assert.Nil(t, fixes[0].op)
	require.NotNil(t, fixes[0].Guidance)
	assert.Equal(t, "manual-only", fixes[0].Guidance.Status)
	assert.NotEmpty(t, fixes[0].Guidance.RequiredActions)
}

func TestGenerateVersionMigrationSkipsWhenAllAutoMigratable(t *testing.T) {
	catalog := baseCatalog()
	catalog.breaks["vendor-base.webhook"] = []validate.BreakingChange{{
		FromVersion: 1, ToVersion: 2, Severity: "medium", Description: "responseMode default changed", AutoMigratable: true,
	}}
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "Hook", Type: "vendor-base.webhook", TypeVersion: 1,
	}}}
	fixes := generateVersionMigration(w, catalog)
	assert.Empty(t, fixes)
}

func TestApplyFiltersByConfidence(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{
		{Name: "Hook", Type: "vendor-base.webhook", Parameters: map[string]any{}},
		{Name: "Switch", Type: "vendor-base.switch", Parameters: map[string]any{"fallbackOutput": "x"}},
	}}
	candidates := []Fix{
		{FixType: FixWebhookMissingPath, Confidence: ConfidenceHigh, NodeName: "Hook",
			op: &diffengine.Op{Type: diffengine.OpUpdateNode, Name: "Hook", ParametersPatch: map[string]any{"path": "abc"}}},
		{FixType: FixSwitchOptions, Confidence: ConfidenceMedium, NodeName: "Switch",
			op: &diffengine.Op{Type: diffengine.OpUpdateNode, Name: "Switch", ParametersPatch: map[string]any{"rules": map[string]any{"options": map[string]any{"fallbackOutput": "x"}}}}},
	}

	opts := Options{MinConfidence: ConfidenceHigh}
	result := Apply(w, candidates, opts, nil)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, FixWebhookMissingPath, result.Applied[0].FixType)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipBelowConfidence, result.Skipped[0].Reason)
}

func TestApplyMaxFixesCapsAndSkipsRemainder(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{
		{Name: "A", Type: "vendor-base.webhook", Parameters: map[string]any{}},
		{Name: "B", Type: "vendor-base.webhook", Parameters: map[string]any{}},
	}}
	candidates := []Fix{
		{FixType: FixWebhookMissingPath, Confidence: ConfidenceHigh, NodeName: "A",
			op: &diffengine.Op{Type: diffengine.OpUpdateNode, Name: "A", ParametersPatch: map[string]any{"path": "abc"}}},
		{FixType: FixWebhookMissingPath, Confidence: ConfidenceHigh, NodeName: "B",
			op: &diffengine.Op{Type: diffengine.OpUpdateNode, Name: "B", ParametersPatch: map[string]any{"path": "def"}}},
	}
	opts := Options{MaxFixes: 1}
	result := Apply(w, candidates, opts, nil)
	assert.Len(t, result.Applied, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipMaxFixesReached, result.Skipped[0].Reason)
}

func TestApplySkipsGuidanceOnlyFixesWithoutTouchingWorkflow(t *testing.T) {
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{Name: "HTTP", Type: "vendor-base.httpRequest"}}}
	candidates := []Fix{
		{FixType: FixVersionMigration, Confidence: ConfidenceLow, NodeName: "HTTP", op: nil},
	}
	result := Apply(w, candidates, Options{}, nil)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, FixVersionMigration, result.Applied[0].FixType)
}

func TestEndToEndExpressionMissingPrefixScenario(t *testing.T) {
	catalog := baseCatalog()
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{{
		Name: "HTTP", Type: "vendor-base.httpRequest", TypeVersion: 4,
		Parameters: map[string]any{"url": "{{ $json.endpoint }}"},
	}}}
	result := validate.Validate(w, catalog, validate.DefaultOptions())

	var found *validate.Finding
	for i := range result.Errors {
		if result.Errors[i].Code == "EXPRESSION_MISSING_PREFIX" {
			found = &result.Errors[i]
		}
	}
	require.NotNil(t, found)

	fixes := Generate(w, catalog, result, Options{MinConfidence: ConfidenceHigh})
	require.Len(t, fixes, 1)
	assert.Equal(t, FixExpressionFormat, fixes[0].FixType)

	applied := Apply(w, fixes, Options{MinConfidence: ConfidenceHigh}, nil)
	require.Len(t, applied.Applied, 1)

	reValidated := validate.Validate(applied.Workflow, catalog, validate.DefaultOptions())
	for _, e := range reValidated.Errors {
		assert.NotEqual(t, "EXPRESSION_MISSING_PREFIX", e.Code)
	}
}

func TestIdempotenceSecondGenerateRunYieldsNoFixes(t *testing.T) {
	catalog := baseCatalog()
	w := &workflow.Workflow{Name: "x", Nodes: []workflow.Node{
		{Name: "Hook", Type: "vendor-base.webhook", Parameters: map[string]any{}},
		{Name: "Switch", Type: "vendor-base.switch", Parameters: map[string]any{"fallbackOutput": "extra"}},
	}}

	result := validate.Validate(w, catalog, validate.DefaultOptions())
	first := Generate(w, catalog, result, Options{})
	require.NotEmpty(t, first)

	applied := Apply(w, first, Options{}, nil)
	require.NotEmpty(t, applied.Applied)

	result2 := validate.Validate(applied.Workflow, catalog, validate.DefaultOptions())
	second := Generate(applied.Workflow, catalog, result2, Options{})
	assert.Empty(t, second)
}
