// Package remote implements the Remote Orchestration Client (spec §4.G):
// a retrying HTTP client over the remote platform's REST API, an error
// taxonomy mapping transport/HTTP outcomes to pkg/apperr kinds, and an
// SSRF-guarded webhook trigger.
package remote

import (
	"time"
)

// SSRFMode selects how strictly TriggerWebhook validates target URLs
// before and at connect time (spec §4.G "configurable SSRF guard
// (strict/moderate/off)").
type SSRFMode string

const (
	// SSRFStrict rejects loopback, link-local, RFC-1918 private ranges,
	// and cloud-metadata endpoints, for both the literal host and every
	// address a DNS name resolves to.
	SSRFStrict SSRFMode = "strict"
	// SSRFModerate rejects only cloud-metadata endpoints and loopback;
	// private RFC-1918 ranges are allowed (useful for self-hosted
	// platforms reachable only on a private network).
	SSRFModerate SSRFMode = "moderate"
	// SSRFOff disables the guard entirely. Never the default.
	SSRFOff SSRFMode = "off"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string

	// Timeout bounds a single unary API call (spec §5 "default 30s for
	// unary API calls"); WebhookTimeout bounds TriggerWebhook separately
	// ("60s for webhook triggers"). Both are hard ceilings even if the
	// caller requests a larger per-call timeout.
	Timeout        time.Duration
	WebhookTimeout time.Duration

	// RetryMax is the low ceiling on retry attempts for network errors
	// and 5xx (spec §4.G "a fixed low ceiling (default 3 attempts)").
	RetryMax int

	SSRF SSRFMode
}

const (
	DefaultTimeout        = 30 * time.Second
	DefaultWebhookTimeout = 60 * time.Second
	DefaultRetryMax       = 3
)

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.WebhookTimeout <= 0 {
		o.WebhookTimeout = DefaultWebhookTimeout
	}
	if o.RetryMax <= 0 {
		o.RetryMax = DefaultRetryMax
	}
	if o.SSRF == "" {
		o.SSRF = SSRFStrict
	}
	return o
}

// Page is a cursor-paginated listing result.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// WorkflowFilter narrows a ListWorkflows call (spec §4.G "filters (active, tags)").
type WorkflowFilter struct {
	Active *bool
	Tags   []string
	Cursor string
	Limit  int
}

// WorkflowSummary is the list-view shape returned by ListWorkflows.
type WorkflowSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags,omitempty"`
}

// ExecutionSummary is one entry in ListExecutions.
type ExecutionSummary struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflowId"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// ExecutionFilter narrows a ListExecutions call.
type ExecutionFilter struct {
	WorkflowID string
	Status     string
	Cursor     string
	Limit      int
}

// CredentialSummary is one entry in ListCredentials.
type CredentialSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CredentialTypeSchema describes what fields a credential type expects.
type CredentialTypeSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Variable is a key/value pair in the remote platform's variable store.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Tag is a workflow tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuditReport is the response shape of the audit endpoint.
type AuditReport struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Findings    []AuditFinding `json:"findings"`
}

// AuditFinding is one row of an audit report.
type AuditFinding struct {
	Severity    string `json:"severity"`
	Resource    string `json:"resource"`
	Description string `json:"description"`
}

// HealthStatus is the response shape of the health endpoint.
type HealthStatus struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
}

// WebhookRequest describes one webhook trigger dispatch (spec §4.G
// "accepts an absolute URL, HTTP method, optional JSON body ..., optional
// headers, and a timeout").
type WebhookRequest struct {
	URL     string
	Method  string
	Body    []byte // pre-resolved: inline JSON or the contents of a file, already read by the caller
	Headers map[string]string
	Timeout time.Duration
}

// WebhookResponse is what TriggerWebhook returns on success.
type WebhookResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       []byte            `json:"-"`
}
