package remote

import (
	"context"
	"net/url"
	"strconv"
)

// ListExecutions returns a page of execution summaries for filter.
func (c *Client) ListExecutions(ctx context.Context, filter ExecutionFilter) (*Page[ExecutionSummary], error) {
	q := url.Values{}
	if filter.WorkflowID != "" {
		q.Set("workflowId", filter.WorkflowID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Cursor != "" {
		q.Set("cursor", filter.Cursor)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var page Page[ExecutionSummary]
	if err := c.doJSON(ctx, "GET", "/executions", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetExecution fetches one execution's full record, including its run
// data, by id.
func (c *Client) GetExecution(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "GET", "/executions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteExecution removes the execution record at id.
func (c *Client) DeleteExecution(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/executions/"+url.PathEscape(id), nil, nil, nil)
}

// RetryExecution re-runs a failed execution. When loadLatestWorkflow is
// true the remote platform re-resolves the current workflow version
// instead of replaying against the version active at the original run
// (spec §4.G "retry, with an option to load the latest workflow version
// rather than replay the original").
func (c *Client) RetryExecution(ctx context.Context, id string, loadLatestWorkflow bool) (map[string]any, error) {
	body := map[string]any{"loadWorkflow": loadLatestWorkflow}
	var out map[string]any
	if err := c.doJSON(ctx, "POST", "/executions/"+url.PathEscape(id)+"/retry", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
