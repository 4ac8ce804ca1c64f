package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestListWorkflowsSendsFiltersAsQueryParams(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"1","name":"a","active":true}],"nextCursor":"c2"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})
	active := true
	page, err := c.ListWorkflows(context.Background(), WorkflowFilter{Active: &active, Tags: []string{"prod"}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].Name)
	assert.Equal(t, "c2", page.NextCursor)
	assert.Contains(t, gotQuery, "active=true")
	assert.Contains(t, gotQuery, "tags=prod")
	assert.Contains(t, gotQuery, "limit=5")
}

func TestDoJSONSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-N8N-API-KEY")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{APIKey: "secret-key-123"})
	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret-key-123", gotKey)
}

func TestClassifyHTTPErrorMapsStatusToKind(t *testing.T) {
	cases := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusUnauthorized, apperr.KindPermission},
		{http.StatusForbidden, apperr.KindPermission},
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusTooManyRequests, apperr.KindTemporary},
		{http.StatusBadRequest, apperr.KindData},
		{http.StatusUnprocessableEntity, apperr.KindData},
		{http.StatusInternalServerError, apperr.KindUnavailable},
		{http.StatusTeapot, apperr.KindProtocol},
	}
	for _, tc := range cases {
		err := classifyHTTPError(tc.status, []byte("boom"))
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, tc.kind, appErr.Kind, "status %d", tc.status)
	}
}

func TestGetWorkflowReturnsNotFoundKindOn404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such workflow"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})
	_, err := c.GetWorkflow(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestRetriesOnServerErrorThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{RetryMax: 3})
	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDoesNotRetryOnBadRequest(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{RetryMax: 3})
	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestRetriesOnTooManyRequests(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{RetryMax: 3})
	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestJitteredBackoffHonorsRetryAfterHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"2"}}}
	d := jitteredBackoff(100*time.Millisecond, 10*time.Second, 0, resp)
	assert.Equal(t, 2*time.Second, d)
}

func TestJitteredBackoffCapsAtMaxWithoutRetryAfter(t *testing.T) {
	d := jitteredBackoff(100*time.Millisecond, time.Second, 10, nil)
	assert.LessOrEqual(t, d, time.Second)
	assert.GreaterOrEqual(t, d, time.Duration(0))
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not-a-url"})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConfig, appErr.Kind)
}
