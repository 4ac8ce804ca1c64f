package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/httputil"
	"github.com/flowctl/flowctl/pkg/ratelimit"
	"github.com/flowctl/flowctl/pkg/stringutil"
)

// Client talks to the remote orchestration platform's REST API over a
// retrying HTTP transport (spec §4.G). It is safe for concurrent use.
type Client struct {
	opts     Options
	http     *retryablehttp.Client
	guard    *ssrfGuard
	base     *url.URL
	limiters *ratelimit.RateLimiterGroup
}

// New builds a Client. It checks that BaseURL parses with a scheme and a
// host, but never dials anything; the first network I/O happens on the
// first call.
func New(opts Options) (*Client, error) {
	opts = opts.withDefaults()
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperr.New(apperr.KindConfig, apperr.CodeConfigInvalid, fmt.Sprintf("invalid remote base URL %q", opts.BaseURL))
	}

	guard := newSSRFGuard(opts.SSRF)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{
		DialContext: guard.dialContext(dialer),
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 10 * time.Millisecond
	rc.RetryWaitMax = 200 * time.Millisecond
	rc.HTTPClient = &http.Client{Transport: transport, Timeout: opts.Timeout}
	rc.CheckRetry = checkRetry
	rc.Backoff = jitteredBackoff

	return &Client{opts: opts, http: rc, guard: guard, base: base, limiters: ratelimit.NewRateLimiterGroup()}, nil
}

// checkRetry never retries 4xx responses except 408 (request timeout) and
// 429 (rate limited); 5xx and network errors fall through to the default
// retryablehttp policy (spec §4.G "never retries on 4xx responses other
// than 408 or 429").
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		// Network-level failure (DNS, connection refused, TLS, our SSRF
		// guard rejecting the dial): retry up to RetryMax like any other
		// transient error.
		return true, nil
	}
	if resp == nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// jitteredBackoff implements exponential backoff with full jitter, except
// it honors a numeric Retry-After header verbatim when the server sends
// one (spec §4.G "exponential backoff with jitter, honoring Retry-After").
func jitteredBackoff(minD, maxD time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	exp := float64(minD) * math.Pow(2, float64(attempt))
	if exp > float64(maxD) {
		exp = float64(maxD)
	}
	return time.Duration(rand.Float64() * exp)
}

// doJSON issues method against path (resolved relative to the configured
// base URL), JSON-encoding body (nil for none), and decodes the response
// into out (nil to discard). Non-2xx responses are translated via
// classifyHTTPError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = joinPath(u.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindData, apperr.CodeConfigInvalid, "encode request body", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return apperr.Wrap(apperr.KindUsage, apperr.CodeConfigInvalid, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.APIKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.opts.APIKey)
	}

	limiter, err := c.limiters.GetOrCreate(ratelimit.OperationRemoteAPI)
	if err != nil {
		return apperr.Wrap(apperr.KindConfig, apperr.CodeConfigInvalid, "build rate limiter", err)
	}
	if err := limiter.Wait(ctx); err != nil {
		return apperr.Wrap(apperr.KindCancelled, apperr.CodeCancelled, "rate limit wait", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return apperr.Wrap(apperr.KindIO, apperr.CodeIOError, "read response body", readErr)
	}

	if resp.StatusCode >= 400 {
		return classifyHTTPError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperr.Wrap(apperr.KindProtocol, apperr.CodeAPIProtocolError, "decode response body", err)
		}
	}
	return nil
}

func joinPath(base, p string) string {
	if base == "" {
		return p
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if len(p) == 0 || p[0] != '/' {
		p = "/" + p
	}
	return base + p
}

// classifyHTTPError maps a non-2xx status code to an apperr.Kind (spec
// §4.G error taxonomy: authentication, not-found, validation, rate-limit,
// server).
func classifyHTTPError(status int, body []byte) error {
	msg := httpErrorMessage(status, body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.New(apperr.KindPermission, apperr.CodeUnauthorized, msg)
	case status == http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, apperr.CodeENOENT, msg)
	case status == http.StatusTooManyRequests:
		return apperr.New(apperr.KindTemporary, apperr.CodeRateLimited, msg)
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return apperr.New(apperr.KindData, apperr.CodeParameterValidationError, msg)
	case status >= 500:
		return apperr.New(apperr.KindUnavailable, apperr.CodeHostUnreachable, msg)
	default:
		return apperr.New(apperr.KindProtocol, apperr.CodeAPIProtocolError, msg)
	}
}

func httpErrorMessage(status int, body []byte) string {
	trimmed := body
	const maxLen = 500
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen]
	}
	// The remote API occasionally echoes request headers (including the
	// API key) back in validation error bodies; never let that reach a
	// log line or CLI error envelope verbatim.
	return stringutil.SanitizeErrorMessage(fmt.Sprintf("remote API returned %d: %s", status, string(trimmed)))
}

// classifyTransportError maps network-level failures (DNS, connect
// refused, TLS, our own SSRF guard) to an apperr.Kind. The SSRF guard
// raises *apperr.Error directly from inside DialContext, so it is
// unwrapped and returned as-is rather than re-classified.
func classifyTransportError(err error) error {
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}
	return apperr.Wrap(apperr.KindUnavailable, apperr.CodeHostUnreachable, "remote API request failed", err)
}
