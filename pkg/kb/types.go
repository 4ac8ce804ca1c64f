// Package kb implements the Node Knowledge Base (spec §4.A): a bundled,
// read-only, full-text-indexed catalog of node type descriptors and
// workflow templates, backed by an embedded SQLite database with FTS5
// virtual tables (modernc.org/sqlite, pure Go, no cgo).
package kb

// PropertyDescriptor describes one configurable property of a node type
// (spec §3).
type PropertyDescriptor struct {
	Name           string          `json:"name"`
	Path           string          `json:"path"`
	TypeTag        string          `json:"typeTag"` // string, number, boolean, enum, collection, fixedCollection, resourceLocator, json, expression
	Required       bool            `json:"required"`
	Default        any             `json:"default,omitempty"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty"`
	Options        []string        `json:"options,omitempty"` // allowed values for enum types
	Description    string          `json:"description,omitempty"`
}

// DisplayOptions is the conditional show/hide predicate over sibling
// property values (spec §3).
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty"`
	Hide map[string][]any `json:"hide,omitempty"`
}

// OperationDescriptor names one resource/operation pair a node supports,
// plus which properties are visible for that pair (by property path).
type OperationDescriptor struct {
	Resource       string   `json:"resource"`
	Operation      string   `json:"operation"`
	VisibleOptions []string `json:"visibleProperties"`
}

// BreakingChangeEntry documents one typeVersion transition's behavior
// change (spec §3, §4.C.7, §4.D typeversion-upgrade).
type BreakingChangeEntry struct {
	FromVersion     float64 `json:"fromVersion"`
	ToVersion       float64 `json:"toVersion"`
	Severity        string  `json:"severity"` // low, medium, high
	Description     string  `json:"description"`
	AutoMigratable  bool    `json:"autoMigratable"`
	MigrationSteps  string  `json:"migrationSteps,omitempty"`
}

// NodeTypeDescriptor is one KB record (spec §3).
type NodeTypeDescriptor struct {
	Type              string                 `json:"type"`
	Alias             string                 `json:"alias"`
	DisplayName       string                 `json:"displayName"`
	Category          string                 `json:"category"`
	Subcategory       string                 `json:"subcategory"`
	Description       string                 `json:"description"`
	LatestVersion     float64                `json:"latestVersion"`
	SupportedVersions []float64              `json:"supportedVersions"`
	Properties        []PropertyDescriptor   `json:"properties"`
	Credentials       []string               `json:"credentials"`
	Operations        []OperationDescriptor  `json:"operations,omitempty"`
	Docs              string                 `json:"docs,omitempty"`
	BreakingChanges    []BreakingChangeEntry `json:"breakingChanges,omitempty"`
	SupportsOnError   bool                   `json:"supportsOnError"`
	SupportsRetry     bool                   `json:"supportsRetry"`
}

// SupportsVersion reports whether v is among the descriptor's recognized
// typeVersions.
func (d *NodeTypeDescriptor) SupportsVersion(v float64) bool {
	for _, sv := range d.SupportedVersions {
		if sv == v {
			return true
		}
	}
	return false
}

// VisiblePropertiesFor returns the property paths visible for the given
// resource/operation pair, or nil if the node has no operation dispatch
// (in which case every declared property is always visible).
func (d *NodeTypeDescriptor) VisiblePropertiesFor(resource, operation string) ([]string, bool) {
	for _, op := range d.Operations {
		if op.Resource == resource && op.Operation == operation {
			return op.VisibleOptions, true
		}
	}
	return nil, false
}

// TemplateRecord is one bundled workflow template (spec §4.A).
type TemplateRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	WorkflowJSON  string   `json:"workflowJson"`
	NodeCount     int      `json:"nodeCount"`
	Views         int      `json:"views"`
	Complexity    string   `json:"complexity"`
	Category      string   `json:"category"`
	Tasks         []string `json:"tasks"`
	Services      []string `json:"services"`
	SetupMinutes  int      `json:"setupMinutes"`
}

// SearchMode selects the ranking strategy for Search (spec §4.A).
type SearchMode string

const (
	SearchModeOR    SearchMode = "OR"
	SearchModeAND   SearchMode = "AND"
	SearchModeFuzzy SearchMode = "FUZZY"
)

// SearchResult is one ranked hit from Search.
type SearchResult struct {
	Type        string  `json:"type"`
	DisplayName string  `json:"displayName"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
}

// SimilarType is one candidate correction for an unrecognized node type
// (spec §4.A similarTypes).
type SimilarType struct {
	Type   string  `json:"type"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// AutoFixableThreshold is the similarity score at/above which a node-type
// correction is offered with HIGH confidence and marked auto-fixable
// (spec §4.A, §4.D).
const AutoFixableThreshold = 0.9

// SuggestionFloor is the hard floor below which similarTypes returns no
// suggestions at all (spec §4.A).
const SuggestionFloor = 0.5
