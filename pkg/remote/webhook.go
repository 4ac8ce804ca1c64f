package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/httputil"
	"github.com/flowctl/flowctl/pkg/logger"
	"github.com/flowctl/flowctl/pkg/ratelimit"
)

var webhookLog = logger.New("remote:webhook")

// TriggerWebhook dispatches req against an arbitrary, user-supplied URL —
// unlike the rest of Client's methods, the target is not the configured
// base URL, so it gets its own SSRF-guarded transport and its own fixed
// retry-free HTTP client: webhook triggers fire workflow side effects and
// must not be silently replayed (spec §4.G "a webhook trigger, fired at
// most once, with a dedicated default timeout and the same SSRF
// guard").
func (c *Client) TriggerWebhook(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if req.Method == "" {
		req.Method = http.MethodPost
	}
	timeout := req.Timeout
	if timeout <= 0 || timeout > c.opts.WebhookTimeout {
		timeout = c.opts.WebhookTimeout
	}

	u, err := url.Parse(req.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperr.New(apperr.KindUsage, apperr.CodeConfigInvalid, fmt.Sprintf("invalid webhook URL %q", req.URL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperr.New(apperr.KindUsage, apperr.CodeConfigInvalid, fmt.Sprintf("webhook URL %q must be http(s)", req.URL))
	}

	webhookLog.Printf("triggering webhook: %s", sanitizedWebhookDescription(req))

	host := u.Hostname()
	if err := c.guard.checkHost(ctx, host); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: c.guard.dialContext(dialer),
		},
	}

	limiter, err := c.limiters.GetOrCreate(ratelimit.OperationWebhookTrigger)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "build rate limiter", err)
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindCancelled, apperr.CodeCancelled, "rate limit wait", err)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUsage, apperr.CodeConfigInvalid, "build webhook request", err)
	}
	httpReq.Header.Set("User-Agent", httputil.DefaultUserAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "read webhook response", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyHTTPError(resp.StatusCode, respBody)
	}

	return &WebhookResponse{StatusCode: resp.StatusCode, Headers: headers, Body: respBody}, nil
}

// sanitizedWebhookDescription formats a webhook request for logging
// without leaking header values that may carry bearer tokens or API keys.
func sanitizedWebhookDescription(req WebhookRequest) string {
	keys := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		keys = append(keys, k)
	}
	return fmt.Sprintf("%s %s (headers: %s)", req.Method, req.URL, strings.Join(keys, ","))
}
