package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/resilience"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>hello</title></html>"))
	}))
	defer srv.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html><title>hello</title></html>", string(resp.Body))
	assert.Equal(t, srv.URL, resp.URL)
	assert.Greater(t, resp.Elapsed, time.Duration(0))
}

func TestFetch_ClientErrorIsAnalysable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html><body>not here</body></html>"))
	}))
	defer srv.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "not here")
}

func TestFetch_ServerErrorFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL, time.Second)
	require.Error(t, err)

	var se *resilience.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "fetch must not retry")
}

func TestFetch_ConnectionRefusedIsUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = newTestFetcher().Fetch(context.Background(), "http://"+addr, time.Second)
	require.Error(t, err)
	assert.True(t, resilience.IsUnreachable(err))
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, resilience.IsTimeout(err))
	assert.False(t, resilience.IsUnreachable(err))
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 100})
	resp, err := f.Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)
	assert.True(t, resp.Truncated)

	f = NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 1000})
	resp, err = f.Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 1000)
	assert.False(t, resp.Truncated, "a body exactly at the cap is complete")
}

func TestFetch_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		// "café" in Latin-1.
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "café", string(resp.Body))
}

func TestFetch_NoHost(t *testing.T) {
	_, err := newTestFetcher().Fetch(context.Background(), "https://", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no host")
}

func TestFetch_UsesHostLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	// A limiter with no tokens and no refill blocks until the context is done.
	f := NewHTTPFetcher(HTTPOptions{RateLimiters: map[string]*rate.Limiter{
		u.Host: rate.NewLimiter(0, 0),
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = f.Fetch(ctx, srv.URL, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
}

func TestDecodeBody_PassThrough(t *testing.T) {
	body := []byte("plain")
	for _, ct := range []string{"", "text/html", "text/html; charset=utf-8", "garbage;;;"} {
		out, err := decodeBody(body, ct)
		require.NoError(t, err)
		assert.Equal(t, body, out)
	}
}

func TestDecodeBody_UnknownCharset(t *testing.T) {
	_, err := decodeBody([]byte("x"), "text/html; charset=klingon")
	assert.Error(t, err)
}
