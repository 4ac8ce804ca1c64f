package validate

import (
	"strings"

	"github.com/flowctl/flowctl/pkg/workflow"
)

// dispatchAINode runs the single-node checks that apply to any AI-family
// node regardless of topology (promptType/text consistency).
func dispatchAINode(n *workflow.Node, opts Options, result *Result) {
	if isType(n.Type, "agent") || isType(n.Type, "basicLlmChain") {
		promptType, _ := n.Parameters["promptType"].(string)
		text, _ := n.Parameters["text"].(string)
		if promptType == "define" && strings.TrimSpace(text) == "" {
			result.addError(Finding{Code: "AGENT_DEFINE_PROMPT_EMPTY", NodeName: n.Name, Path: "text",
				Message: `promptType "define" requires non-empty prompt text`})
		}
	}
	if isType(n.Type, "toolHttpRequest") || isType(n.Type, "toolCode") {
		desc, _ := n.Parameters["toolDescription"].(string)
		if strings.TrimSpace(desc) == "" {
			result.addError(Finding{Code: "TOOL_MISSING_DESCRIPTION", NodeName: n.Name, Path: "toolDescription",
				Message: "AI tool node has no toolDescription"})
		}
	}
}

// stageAITopology is pipeline stage 4: traverses the ai_* connection
// subgraph feeding each agent / basic-LLM-chain node and enforces the
// topology invariants spec §4.C.4 lists (exactly one language model unless
// a fallback is configured, at most one memory, output-parser requirement,
// streaming/main-outlet exclusivity, tool descriptions, basic-chain
// restrictions). Runs only when at least one AI-family node is present.
func stageAITopology(w *workflow.Workflow, catalog KnowledgeBase, opts Options, result *Result) {
	hasAI := false
	for _, n := range w.Nodes {
		if strings.HasPrefix(n.Type, "vendor-ai.") {
			hasAI = true
			break
		}
	}
	if !hasAI {
		return
	}

	for i := range w.Nodes {
		n := &w.Nodes[i]
		switch {
		case isType(n.Type, "agent"):
			checkAgentTopology(w, n, opts, result)
		case isType(n.Type, "basicLlmChain"):
			checkBasicChainTopology(w, n, result)
		}
	}
}

// inboundByKind returns, for target node name, the source node names
// feeding it on the given non-main outlet kind.
func inboundByKind(w *workflow.Workflow, target string, kind workflow.OutletKind) []string {
	var sources []string
	for src, outlets := range w.Connections {
		for _, slots := range outlets[kind] {
			for _, ep := range slots {
				if ep.Node == target {
					sources = append(sources, src)
				}
			}
		}
	}
	return sources
}

func hasMainOutlet(w *workflow.Workflow, nodeName string) bool {
	outlets, ok := w.Connections[nodeName]
	if !ok {
		return false
	}
	for _, slot := range outlets[workflow.OutletMain] {
		if len(slot) > 0 {
			return true
		}
	}
	return false
}

func hasChatTriggerSource(w *workflow.Workflow, nodeName string) bool {
	for _, src := range inboundByKind(w, nodeName, workflow.OutletMain) {
		if n := w.NodeByName(src); n != nil && isType(n.Type, "chatTrigger") {
			return true
		}
	}
	return false
}

func checkAgentTopology(w *workflow.Workflow, n *workflow.Node, opts Options, result *Result) {
	models := inboundByKind(w, n.Name, workflow.OutletAILanguageModel)
	needsFallback, _ := n.Parameters["needsFallback"].(bool)
	maxModels := 1
	if needsFallback {
		maxModels = 2
	}
	switch {
	case len(models) == 0:
		result.addError(Finding{Code: "MISSING_LANGUAGE_MODEL", NodeName: n.Name, Message: "AI agent has no connected language model"})
	case len(models) > maxModels:
		result.addError(Finding{Code: "TOO_MANY_LANGUAGE_MODELS", NodeName: n.Name,
			Message: "AI agent has more language models connected than needsFallback allows",
			Context: map[string]any{"count": len(models), "max": maxModels}})
	}

	hasOutputParser, _ := n.Parameters["hasOutputParser"].(bool)
	if hasOutputParser && len(inboundByKind(w, n.Name, workflow.OutletAIOutputParser)) == 0 {
		result.addError(Finding{Code: "MISSING_OUTPUT_PARSER", NodeName: n.Name, Message: "hasOutputParser is set but no ai_outputParser is connected"})
	}

	memories := inboundByKind(w, n.Name, workflow.OutletAIMemory)
	if len(memories) > 1 {
		result.addError(Finding{Code: "TOO_MANY_MEMORIES", NodeName: n.Name, Message: "AI agent has more than one ai_memory connected"})
	}

	streamResponse, _ := n.Parameters["streamResponse"].(bool)
	if streamResponse {
		if hasMainOutlet(w, n.Name) {
			result.addError(Finding{Code: "STREAMING_WITH_MAIN_OUTPUT", NodeName: n.Name,
				Message: "streamResponse is incompatible with any main outlet on the agent"})
		}
		if !hasChatTriggerSource(w, n.Name) {
			result.addError(Finding{Code: "STREAMING_WITHOUT_CHAT_TRIGGER", NodeName: n.Name,
				Message: "streamResponse requires a chat-trigger source"})
		}
	}

	for _, toolSrc := range inboundByKind(w, n.Name, workflow.OutletAITool) {
		tool := w.NodeByName(toolSrc)
		if tool == nil {
			continue
		}
		if desc, _ := tool.Parameters["toolDescription"].(string); strings.TrimSpace(desc) == "" {
			result.addError(Finding{Code: "TOOL_MISSING_DESCRIPTION", NodeName: tool.Name, Path: "toolDescription",
				Message: "tool connected to an agent has no toolDescription"})
		}
	}
}

func checkBasicChainTopology(w *workflow.Workflow, n *workflow.Node, result *Result) {
	models := inboundByKind(w, n.Name, workflow.OutletAILanguageModel)
	if len(models) == 0 {
		result.addError(Finding{Code: "MISSING_LANGUAGE_MODEL", NodeName: n.Name, Message: "basic LLM chain has no connected language model"})
	} else if len(models) > 1 {
		result.addError(Finding{Code: "BASIC_CHAIN_MULTIPLE_MODELS", NodeName: n.Name, Message: "basic LLM chain forbids multiple language models"})
	}
	if tools := inboundByKind(w, n.Name, workflow.OutletAITool); len(tools) > 0 {
		result.addError(Finding{Code: "BASIC_CHAIN_FORBIDS_TOOLS", NodeName: n.Name, Message: "basic LLM chain forbids tool connections"})
	}
}
