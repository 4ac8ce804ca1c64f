// Package diffengine applies typed, atomic mutations to a workflow (spec
// §4.E): 17 operation variants, smart branch/case/aiConnectionType
// resolution for addConnection family operations, and a rename map that
// lets a sequence of operations reference nodes renamed earlier in the
// same batch.
package diffengine

import "github.com/flowctl/flowctl/pkg/workflow"

// OpType names one of the 17 diff operation variants (spec §3).
type OpType string

const (
	OpAddNode               OpType = "addNode"
	OpRemoveNode             OpType = "removeNode"
	OpUpdateNode             OpType = "updateNode"
	OpMoveNode               OpType = "moveNode"
	OpEnableNode             OpType = "enableNode"
	OpDisableNode            OpType = "disableNode"
	OpAddConnection          OpType = "addConnection"
	OpRemoveConnection       OpType = "removeConnection"
	OpRewireConnection       OpType = "rewireConnection"
	OpCleanStaleConnections  OpType = "cleanStaleConnections"
	OpReplaceConnections     OpType = "replaceConnections"
	OpUpdateSettings         OpType = "updateSettings"
	OpUpdateName             OpType = "updateName"
	OpAddTag                 OpType = "addTag"
	OpRemoveTag              OpType = "removeTag"
	OpActivateWorkflow       OpType = "activateWorkflow"
	OpDeactivateWorkflow     OpType = "deactivateWorkflow"
)

// Op is one diff operation. Fields are a union over every variant's
// payload; only the fields relevant to Type are read.
type Op struct {
	Type OpType `json:"type"`

	// addNode / moveNode / updateNode targeting
	Name string `json:"name,omitempty"`

	// addNode
	NodeType   string         `json:"nodeType,omitempty"`
	Position   *[2]float64    `json:"position,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`

	// updateNode
	Rename            string         `json:"rename,omitempty"`
	ParametersPatch   map[string]any `json:"parametersPatch,omitempty"`
	TypeVersion       *float64       `json:"typeVersion,omitempty"`
	Disabled          *bool          `json:"disabled,omitempty"`
	OnError           *string        `json:"onError,omitempty"`

	// moveNode
	DeltaX, DeltaY float64 `json:"deltaX,omitempty"`
	Relative       bool    `json:"relative,omitempty"`

	// connection operations
	Source          string `json:"source,omitempty"`
	Target          string `json:"target,omitempty"`
	SourceIndex     *int   `json:"sourceIndex,omitempty"`
	TargetIndex     *int   `json:"targetIndex,omitempty"`
	Branch          string `json:"branch,omitempty"` // "true" | "false"
	Case            *int   `json:"case,omitempty"`
	AIConnectionType string `json:"aiConnectionType,omitempty"`

	// rewireConnection
	NewTarget string `json:"newTarget,omitempty"`

	// replaceConnections
	Connections workflow.ConnectionMap `json:"connections,omitempty"`

	// updateSettings
	Settings map[string]any `json:"settings,omitempty"`

	// updateName
	NewName string `json:"newName,omitempty"`

	// addTag / removeTag
	Tag string `json:"tag,omitempty"`
}

// OpResult records the outcome of a single applied (or attempted) Op.
type OpResult struct {
	Index   int    `json:"index"`
	Type    OpType `json:"type"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Result is the outcome of Apply (spec §4.E DiffResult).
type Result struct {
	Workflow *workflow.Workflow `json:"-"`
	Applied  int                `json:"applied"`
	Failed   int                `json:"failed"`
	Errors   []string           `json:"errors,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Ops      []OpResult         `json:"ops"`
}

// Mode selects atomic (all-or-nothing) vs best-effort application.
type Mode string

const (
	ModeAtomic          Mode = "atomic"
	ModeContinueOnError Mode = "continueOnError"
)

// Options parameterizes Apply.
type Options struct {
	Mode   Mode
	DryRun bool
}
