package stringutil

import "testing"

func TestNormalizeWorkflowFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"name without extension", "invoice-sync", "invoice-sync"},
		{"name with .json extension", "invoice-sync.json", "invoice-sync"},
		{"name with .workflow.json extension", "invoice-sync.workflow.json", "invoice-sync"},
		{"name with dots in filename", "my.workflow.json", "my"},
		{"name with other extension", "workflow.yaml", "workflow.yaml"},
		{"simple name", "agent", "agent"},
		{"empty string", "", ""},
		{"just .json", ".json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeWorkflowFileName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeWorkflowFileName(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeNodeAlias(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   string
	}{
		{"dash-separated to camelCase", "http-request", "httpRequest"},
		{"already camelCase", "httpRequest", "httpRequest"},
		{"multiple dashes", "set-node-value", "setNodeValue"},
		{"single word", "webhook", "webhook"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeNodeAlias(tt.identifier)
			if result != tt.expected {
				t.Errorf("NormalizeNodeAlias(%q) = %q, expected %q", tt.identifier, result, tt.expected)
			}
		})
	}
}

func BenchmarkNormalizeWorkflowFileName(b *testing.B) {
	name := "invoice-sync-workflow.workflow.json"
	for i := 0; i < b.N; i++ {
		NormalizeWorkflowFileName(name)
	}
}

func BenchmarkNormalizeNodeAlias(b *testing.B) {
	identifier := "create-pull-request-review-comment"
	for i := 0; i < b.N; i++ {
		NormalizeNodeAlias(identifier)
	}
}
