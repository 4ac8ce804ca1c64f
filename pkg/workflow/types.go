// Package workflow implements the offline data model for workflow documents:
// parsing, normalization, and serialization (spec §3, §4.B). The model is
// deliberately a plain JSON-value tree for Parameters rather than a typed
// struct graph, because node parameter shapes are arbitrary and
// node-type-defined (spec §9 "dynamic property shapes").
package workflow

// OutletKind names a connection port family. Non-"main" kinds are the AI
// topology outlets used by agent/tool/memory/model nodes.
type OutletKind string

const (
	OutletMain            OutletKind = "main"
	OutletAILanguageModel OutletKind = "ai_languageModel"
	OutletAITool          OutletKind = "ai_tool"
	OutletAIMemory        OutletKind = "ai_memory"
	OutletAIOutputParser  OutletKind = "ai_outputParser"
	OutletAIEmbedding     OutletKind = "ai_embedding"
	OutletAITextSplitter  OutletKind = "ai_textSplitter"
	OutletAIVectorStore   OutletKind = "ai_vectorStore"
)

// AIOutletKinds lists every non-main outlet kind declared above;
// IsAIOutletKind reports membership in it.
var AIOutletKinds = []OutletKind{
	OutletAILanguageModel,
	OutletAITool,
	OutletAIMemory,
	OutletAIOutputParser,
	OutletAIEmbedding,
	OutletAITextSplitter,
	OutletAIVectorStore,
}

func IsAIOutletKind(k OutletKind) bool {
	for _, v := range AIOutletKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Endpoint is one connection target: a node name plus the inlet kind/index
// on that node.
type Endpoint struct {
	Node  string     `json:"node"`
	Type  OutletKind `json:"type"`
	Index int        `json:"index"`
}

// Slot is one outlet-index's ordered set of endpoints. A slot is modeled as
// a slice (not a set) because render/diff order is user-visible, but
// membership comparisons (for removeConnection) treat it as endpoint-set
// semantics per endpoint identity.
type Slot []Endpoint

// OutletMap holds, for a single outlet kind, one Slot per outlet index.
type OutletMap map[OutletKind][]Slot

// ConnectionMap is keyed by source node name. Connections are stored
// out-of-line from nodes (spec §9 "cyclic graphs ... never as direct
// node-to-node pointers") so that renames and cycles are representable
// without pointer surgery.
type ConnectionMap map[string]OutletMap

// CredentialRef is a reference to a credential of a given kind, by id and
// display name (the display name is cosmetic; id is authoritative).
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Node is one vertex of the workflow graph. Parameters is an arbitrary
// nested JSON value tree, addressed elsewhere by dot/bracket path strings.
type Node struct {
	Name             string                   `json:"name"`
	ID               string                   `json:"id"`
	Type             string                   `json:"type"`
	TypeVersion      float64                  `json:"typeVersion"`
	Position         [2]float64               `json:"position"`
	Parameters       map[string]any           `json:"parameters"`
	Credentials      map[string]CredentialRef `json:"credentials,omitempty"`
	Disabled         bool                     `json:"disabled,omitempty"`
	OnError          string                   `json:"onError,omitempty"`
	RetryOnFail      bool                     `json:"retryOnFail,omitempty"`
	MaxTries         int                      `json:"maxTries,omitempty"`
	WaitBetweenTries int                      `json:"waitBetweenTries,omitempty"`
	Notes            string                   `json:"notes,omitempty"`
}

// Workflow is the top-level document. ID/CreatedAt/UpdatedAt/VersionID are
// server-assigned fields stripped by Serialize unless Full is requested
// (spec §4.B).
type Workflow struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	Settings    map[string]any `json:"settings"`
	Tags        []string       `json:"tags"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
	VersionID   string         `json:"versionId,omitempty"`
}

// NodeByName returns the node with the given name, or nil if absent.
func (w *Workflow) NodeByName(name string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].Name == name {
			return &w.Nodes[i]
		}
	}
	return nil
}

// NodeIndex returns the index of the node with the given name, or -1.
func (w *Workflow) NodeIndex(name string) int {
	for i := range w.Nodes {
		if w.Nodes[i].Name == name {
			return i
		}
	}
	return -1
}

// HasNode reports whether a node with the given name exists.
func (w *Workflow) HasNode(name string) bool {
	return w.NodeIndex(name) >= 0
}

// Clone returns a deep copy of the workflow. Every mutating component
// (diffengine, autofix) works on a clone so a failed strict-mode operation
// leaves the caller's copy untouched (spec §4.E atomicity, §8 diff
// atomicity property).
func (w *Workflow) Clone() *Workflow {
	out := &Workflow{
		ID:        w.ID,
		Name:      w.Name,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		VersionID: w.VersionID,
	}
	out.Nodes = make([]Node, len(w.Nodes))
	for i, n := range w.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Connections = w.Connections.Clone()
	out.Settings = cloneJSONMap(w.Settings)
	out.Tags = append([]string(nil), w.Tags...)
	return out
}

// Clone deep-copies a Node, including its Parameters tree.
func (n Node) Clone() Node {
	out := n
	out.Parameters = cloneJSONMap(n.Parameters)
	if n.Credentials != nil {
		out.Credentials = make(map[string]CredentialRef, len(n.Credentials))
		for k, v := range n.Credentials {
			out.Credentials[k] = v
		}
	}
	return out
}

// Clone deep-copies a ConnectionMap.
func (c ConnectionMap) Clone() ConnectionMap {
	if c == nil {
		return ConnectionMap{}
	}
	out := make(ConnectionMap, len(c))
	for src, outlets := range c {
		newOutlets := make(OutletMap, len(outlets))
		for kind, slots := range outlets {
			newSlots := make([]Slot, len(slots))
			for i, s := range slots {
				newSlots[i] = append(Slot(nil), s...)
			}
			newOutlets[kind] = newSlots
		}
		out[src] = newOutlets
	}
	return out
}

func cloneJSONMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneJSONMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneJSONValue(e)
		}
		return out
	default:
		return t
	}
}
