package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/document"
	"github.com/sells-group/lead-scout/internal/fetcher"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
)

const modernPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="description" content="Award-winning family bakery in Pune since 1998.">
  <title>Sunrise Bakery | Pune</title>
  <link rel="stylesheet" href="/site.css">
  <script src="/app.js"></script>
</head>
<body>
  <img src="/hero.jpg" alt="bread">
  <p>Order now: hello@sunrise-bakery.in</p>
</body>
</html>`

const legacyPage = `<HTML>
<HEAD><TITLE>Home</TITLE></HEAD>
<BODY>
<TABLE class="layout" width="800"><TR><TD>
<MARQUEE>Welcome!!!</MARQUEE>
<EMBED src="intro.swf">
<IMG SRC="#"><IMG SRC=""><IMG>
</TD></TR></TABLE>
</BODY>
</HTML>`

func parse(t *testing.T, html string) document.Document {
	t.Helper()
	doc, err := document.ParseString(html)
	require.NoError(t, err)
	return doc
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"  www.example.com/about ", "https://www.example.com/about"},
		{"http://old-site.example", "http://old-site.example"},
		{"https://secure.example", "https://secure.example"},
		{"HTTP://SHOUTY.example", "HTTP://SHOUTY.example"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in), tt.in)
	}
}

func TestExtractSignals_ModernPage(t *testing.T) {
	s := ExtractSignals("https://sunrise.example", modernPage, parse(t, modernPage), 120*time.Millisecond, 200)

	assert.True(t, s.HasSSL)
	assert.True(t, s.HasViewportMeta)
	assert.True(t, s.HasModernDoctype)
	assert.True(t, s.HasContactInfo)
	assert.True(t, s.HasStylesheet)
	assert.True(t, s.HasScript)
	assert.True(t, s.HasImages)
	assert.False(t, s.HasTableLayout)
	assert.False(t, s.HasLegacyTags)
	assert.False(t, s.ReferencesFlash)
	assert.Equal(t, "Sunrise Bakery | Pune", s.Title)
	assert.Equal(t, "Award-winning family bakery in Pune since 1998.", s.MetaDescription)
	assert.Equal(t, 0, s.BrokenImageCount)
	assert.Equal(t, int64(120), s.FetchLatencyMs())
	assert.Equal(t, 200, s.StatusCode)
}

func TestExtractSignals_LegacyPage(t *testing.T) {
	s := ExtractSignals("http://legacy.example", legacyPage, parse(t, legacyPage), time.Second, 200)

	assert.False(t, s.HasSSL)
	assert.False(t, s.HasViewportMeta)
	assert.False(t, s.HasModernDoctype)
	assert.False(t, s.HasContactInfo)
	assert.False(t, s.HasStylesheet)
	assert.False(t, s.HasScript)
	assert.True(t, s.HasImages)
	assert.True(t, s.HasTableLayout)
	assert.True(t, s.HasLegacyTags)
	assert.True(t, s.ReferencesFlash)
	assert.Equal(t, "Home", s.Title)
	assert.Equal(t, "", s.MetaDescription)
	assert.Equal(t, 3, s.BrokenImageCount)
}

func TestExtractSignals_ContactPatterns(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"us phone", "Call (512) 555-0199 today", true},
		{"intl phone", "Phone: +91-987-654-3210", true},
		{"dotted phone", "555.123.4567", true},
		{"email", "Write to Owner@Bakery.CO.IN", true},
		{"nothing", "We bake bread.", false},
		{"short number", "Open 9 to 5, since 1998", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<html><body><p>" + tt.body + "</p></body></html>"
			s := ExtractSignals("https://x.example", html, parse(t, html), 0, 200)
			assert.Equal(t, tt.want, s.HasContactInfo)
		})
	}
}

func TestExtractSignals_ContactOnlyInBody(t *testing.T) {
	html := `<html><head><title>Call 555-123-4567</title></head><body>Hi</body></html>`
	s := ExtractSignals("https://x.example", html, parse(t, html), 0, 200)
	assert.False(t, s.HasContactInfo, "title text is not body text")
}

func TestExtractSignals_InlineStyleCountsAsStylesheet(t *testing.T) {
	html := `<html><head><style>body{}</style></head><body></body></html>`
	s := ExtractSignals("https://x.example", html, parse(t, html), 0, 200)
	assert.True(t, s.HasStylesheet)
	assert.Equal(t, 1, s.ModernityCount())
}

func TestExtractSignals_TableNeedsLayoutToken(t *testing.T) {
	html := `<html><body><table><tr><td>prices</td></tr></table></body></html>`
	s := ExtractSignals("https://x.example", html, parse(t, html), 0, 200)
	assert.False(t, s.HasTableLayout)
}

func TestExtract_LiveServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, modernPage)
	}))
	defer srv.Close()

	a := New(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), time.Second)
	s, err := a.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.False(t, s.HasSSL, "httptest serves plain http")
	assert.True(t, s.HasViewportMeta)
	assert.True(t, s.HasContactInfo)
	assert.Equal(t, srv.URL, s.URL)
}

func TestExtract_NotFoundPageStillAnalysed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, legacyPage)
	}))
	defer srv.Close()

	a := New(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), time.Second)
	s, err := a.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, s.StatusCode)
	assert.True(t, s.HasLegacyTags)
}

func TestExtract_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), time.Second)
	_, err := a.Extract(context.Background(), srv.URL)
	require.Error(t, err)

	var se *resilience.StatusError
	assert.True(t, errors.As(err, &se))
	assert.False(t, resilience.IsUnreachable(err))
}

// stubFetcher counts calls and blocks until released.
type stubFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	body    string
	err     error
}

func (s *stubFetcher) Fetch(_ context.Context, url string, _ time.Duration) (*fetcher.Response, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return &fetcher.Response{URL: url, StatusCode: 200, Body: []byte(s.body), Elapsed: 10 * time.Millisecond}, nil
}

func TestExtract_NormalizesBeforeFetch(t *testing.T) {
	stub := &stubFetcher{body: modernPage}
	a := New(stub, 0)

	s, err := a.Extract(context.Background(), "sunrise.example")
	require.NoError(t, err)
	assert.Equal(t, "https://sunrise.example", s.URL)
	assert.True(t, s.HasSSL)
}

func TestExtract_DuplicateURLsShareFetch(t *testing.T) {
	stub := &stubFetcher{body: modernPage, release: make(chan struct{})}
	a := New(stub, 0)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*float64, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := a.Extract(context.Background(), "https://same.example")
			if err == nil {
				v := float64(s.ModernityCount())
				results[i] = &v
			}
		}()
	}

	// Let the callers pile up on the in-flight request, then release it.
	time.Sleep(50 * time.Millisecond)
	close(stub.release)
	wg.Wait()

	assert.Equal(t, int32(1), stub.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, 3.0, *r)
	}
}

func TestExtract_FetchErrorWrapped(t *testing.T) {
	stub := &stubFetcher{err: errors.New("tls: handshake failure")}
	a := New(stub, 0)

	_, err := a.Extract(context.Background(), "https://tls.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls: handshake failure")
}

// ctxFetcher blocks until released and records whether its context ended first.
type ctxFetcher struct {
	calls     atomic.Int32
	release   chan struct{}
	cancelled atomic.Bool
}

func (c *ctxFetcher) Fetch(ctx context.Context, url string, _ time.Duration) (*fetcher.Response, error) {
	c.calls.Add(1)
	select {
	case <-c.release:
	case <-ctx.Done():
		c.cancelled.Store(true)
		return nil, ctx.Err()
	}
	return &fetcher.Response{URL: url, StatusCode: 200, Body: []byte(modernPage), Elapsed: 10 * time.Millisecond}, nil
}

func TestExtract_CallerCancelDoesNotAffectSharedFetch(t *testing.T) {
	f := &ctxFetcher{release: make(chan struct{})}
	a := New(f, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.Extract(ctx, "https://same.example")
		firstErr <- err
	}()

	type result struct {
		s   *model.QualitySignals
		err error
	}
	second := make(chan result, 1)
	time.Sleep(20 * time.Millisecond)
	go func() {
		s, err := a.Extract(context.Background(), "https://same.example")
		second <- result{s, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(f.release)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, 3, r.s.ModernityCount())
	assert.False(t, f.cancelled.Load())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestExtract_AlreadyCancelledSkipsFetch(t *testing.T) {
	f := &ctxFetcher{release: make(chan struct{})}
	a := New(f, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Extract(ctx, "https://same.example")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.calls.Load())
}
