package fetcher

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/resilience"
)

// DefaultUserAgent mimics a desktop browser so small-business hosts serve their normal page.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// RateLimit and RateBurst apply per host unless the host has an entry in RateLimiters.
	RateLimit    rate.Limit
	RateBurst    int
	RateLimiters map[string]*rate.Limiter
}

// HTTPFetcher implements Fetcher using net/http with per-host rate limiting.
// It never retries: every call is exactly one request.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 2 << 20
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 20
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 20
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		// Per-request timeouts are applied through the request context.
		client:   &http.Client{Transport: transport},
		opts:     opts,
		limiters: limiters,
	}
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(f.opts.RateLimit, f.opts.RateBurst)
	f.limiters[host] = lim
	return lim
}

// Fetch performs a single GET. A zero timeout uses the fetcher default.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = f.opts.Timeout
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}
	if u.Host == "" {
		return nil, eris.Errorf("fetcher: url %q has no host", rawURL)
	}

	if err := f.limiterFor(u.Host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: get")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsServerStatus(resp.StatusCode) {
		return nil, resilience.NewStatusError(u.String(), resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}
	truncated := int64(len(raw)) > f.opts.MaxBodyBytes
	if truncated {
		raw = raw[:f.opts.MaxBodyBytes]
		zap.L().Debug("fetcher: body truncated",
			zap.String("url", u.String()),
			zap.Int64("max_body_bytes", f.opts.MaxBodyBytes),
		)
	}
	elapsed := time.Since(start)

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(raw, contentType)
	if err != nil {
		zap.L().Debug("fetcher: charset decode failed, using raw body",
			zap.String("url", u.String()),
			zap.String("content_type", contentType),
			zap.Error(err),
		)
		body = raw
	}

	return &Response{
		URL:         u.String(),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Elapsed:     elapsed,
		Truncated:   truncated,
	}, nil
}

// decodeBody converts body to UTF-8 using the charset declared in the
// Content-Type header. Bodies without a charset or already UTF-8 pass through.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: unsupported charset %q", charset)
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: decode body")
	}
	return decoded, nil
}
