package remote

import (
	"context"
	"net/url"
)

// ListVariables returns every key/value variable defined on the remote
// platform.
func (c *Client) ListVariables(ctx context.Context) ([]Variable, error) {
	var out []Variable
	if err := c.doJSON(ctx, "GET", "/variables", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetVariable creates or updates the variable named key.
func (c *Client) SetVariable(ctx context.Context, key, value string) error {
	return c.doJSON(ctx, "POST", "/variables", nil, Variable{Key: key, Value: value}, nil)
}

// DeleteVariable removes the variable named key.
func (c *Client) DeleteVariable(ctx context.Context, key string) error {
	return c.doJSON(ctx, "DELETE", "/variables/"+url.PathEscape(key), nil, nil, nil)
}

// ListTags returns every tag defined on the remote platform.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.doJSON(ctx, "GET", "/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTag creates a new tag named name.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var out Tag
	if err := c.doJSON(ctx, "POST", "/tags", nil, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes the tag at id.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/tags/"+url.PathEscape(id), nil, nil, nil)
}

// Audit fetches the remote platform's security audit report.
func (c *Client) Audit(ctx context.Context) (*AuditReport, error) {
	var out AuditReport
	if err := c.doJSON(ctx, "GET", "/audit", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the remote platform's reachability and reports its
// version string, when available.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.doJSON(ctx, "GET", "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
