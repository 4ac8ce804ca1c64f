package remote

import (
	"context"
	"net/url"
	"strconv"
)

// ListWorkflows returns a page of workflow summaries, filtered per filter
// (spec §4.G "list with filters (active, tags) and cursor pagination").
func (c *Client) ListWorkflows(ctx context.Context, filter WorkflowFilter) (*Page[WorkflowSummary], error) {
	q := url.Values{}
	if filter.Active != nil {
		q.Set("active", strconv.FormatBool(*filter.Active))
	}
	for _, t := range filter.Tags {
		q.Add("tags", t)
	}
	if filter.Cursor != "" {
		q.Set("cursor", filter.Cursor)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var page Page[WorkflowSummary]
	if err := c.doJSON(ctx, "GET", "/workflows", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetWorkflow fetches a single workflow's raw JSON document by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "GET", "/workflows/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkflow uploads a new workflow document and returns the created
// resource (with its assigned id).
func (c *Client) CreateWorkflow(ctx context.Context, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "POST", "/workflows", nil, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateWorkflow replaces the workflow document at id.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "PUT", "/workflows/"+url.PathEscape(id), nil, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteWorkflow removes the workflow at id.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/workflows/"+url.PathEscape(id), nil, nil, nil)
}

// ActivateWorkflow turns the workflow at id on.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) error {
	return c.doJSON(ctx, "POST", "/workflows/"+url.PathEscape(id)+"/activate", nil, nil, nil)
}

// DeactivateWorkflow turns the workflow at id off.
func (c *Client) DeactivateWorkflow(ctx context.Context, id string) error {
	return c.doJSON(ctx, "POST", "/workflows/"+url.PathEscape(id)+"/deactivate", nil, nil, nil)
}
