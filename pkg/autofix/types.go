// Package autofix implements the confidence-ranked repair pipeline (spec
// §4.D): a fixed, deterministic sequence of fix generators that turn a
// Validation Engine result into concrete diff operations, filters them by
// confidence/fix-type/count, applies the survivors through pkg/diffengine
// (so autofix shares the atomic/backup path with every other mutation),
// and surfaces post-update guidance for nodes whose type or version
// changed.
package autofix

import (
	"github.com/flowctl/flowctl/pkg/diffengine"
)

// FixType names one of the eight fix generators (spec §4.D).
type FixType string

const (
	FixExpressionFormat     FixType = "expression-format"
	FixNodeTypeCorrection   FixType = "node-type-correction"
	FixWebhookMissingPath   FixType = "webhook-missing-path"
	FixSwitchOptions        FixType = "switch-options"
	FixTypeVersionCorrection FixType = "typeversion-correction"
	FixErrorOutputConfig    FixType = "error-output-config"
	FixTypeVersionUpgrade   FixType = "typeversion-upgrade"
	FixVersionMigration     FixType = "version-migration"
)

// allFixTypes is the fixed generator order spec §4.D numbers 1 through 8.
// Generate always runs them in this order so output is deterministic.
var allFixTypes = []FixType{
	FixExpressionFormat,
	FixNodeTypeCorrection,
	FixWebhookMissingPath,
	FixSwitchOptions,
	FixTypeVersionCorrection,
	FixErrorOutputConfig,
	FixTypeVersionUpgrade,
	FixVersionMigration,
}

// Confidence is the discrete label used for filtering (spec Glossary: high
// >= 85, medium >= 60, low otherwise).
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	default:
		return 0
	}
}

// ResolveConfidence maps a numeric 0-100 score to its discrete label using
// the generic formula spec §4.D states up front. Individual generators
// below mostly assign a fixed literal label per spec's own per-generator
// description rather than routing every score through this function —
// see the doc comment on each generate* function for which ones do.
func ResolveConfidence(score float64) Confidence {
	switch {
	case score >= 85:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// PostUpdateGuidance summarizes the manual follow-up a fix may still
// require (spec §3 Fix Operation, §4.D Guidance).
type PostUpdateGuidance struct {
	RequiredActions  []string `json:"requiredActions,omitempty"`
	BehaviorChanges  []string `json:"behaviorChanges,omitempty"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Status           string   `json:"status"` // complete | partial | manual-only
}

// Fix is one candidate (or applied) repair (spec §3 Fix Operation).
type Fix struct {
	FixType    FixType            `json:"fixType"`
	Confidence Confidence         `json:"confidence"`
	Score      float64            `json:"score"`
	NodeName   string             `json:"nodeName"`
	Path       string             `json:"path,omitempty"`
	Before     any                `json:"before,omitempty"`
	After      any                `json:"after,omitempty"`
	Guidance   *PostUpdateGuidance `json:"postUpdateGuidance,omitempty"`

	// op is the concrete mutation this fix expresses, fed through
	// pkg/diffengine when applied. nil for guidance-only fixes
	// (version-migration never mutates the workflow).
	op *diffengine.Op
}

// SkipReason explains why a candidate fix was not applied.
type SkipReason string

const (
	SkipBelowConfidence SkipReason = "below_confidence_threshold"
	SkipFixTypeDisabled SkipReason = "fix_type_disabled"
	SkipMaxFixesReached SkipReason = "max_fixes_reached"
	SkipApplyFailed     SkipReason = "apply_failed"
)

// Skipped pairs a candidate fix with why it wasn't applied. Detail carries
// the underlying diffengine error text when Reason is SkipApplyFailed.
type Skipped struct {
	Fix    Fix        `json:"fix"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Options parameterizes Generate/Apply (spec §4.D "--confidence",
// "--max-fixes", fix-type filter).
type Options struct {
	MinConfidence Confidence // zero value means no floor (every confidence accepted)
	MaxFixes      int        // 0 means unlimited
	FixTypes      []FixType  // nil/empty means every generator is enabled
}

func (o Options) fixTypeEnabled(t FixType) bool {
	if len(o.FixTypes) == 0 {
		return true
	}
	for _, want := range o.FixTypes {
		if want == t {
			return true
		}
	}
	return false
}

func (o Options) meetsConfidence(c Confidence) bool {
	if o.MinConfidence == "" {
		return true
	}
	return confidenceRank(c) >= confidenceRank(o.MinConfidence)
}
