// Package analyzer fetches a business website and extracts the structural
// and content signals used for quality scoring.
package analyzer

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/lead-scout/internal/document"
	"github.com/sells-group/lead-scout/internal/fetcher"
	"github.com/sells-group/lead-scout/internal/model"
)

// DefaultTimeout bounds a single website fetch.
const DefaultTimeout = 10 * time.Second

// Analyzer extracts QualitySignals from live websites.
type Analyzer struct {
	fetcher fetcher.Fetcher
	timeout time.Duration
	group   singleflight.Group
}

// New creates an Analyzer. A zero timeout uses DefaultTimeout.
func New(f fetcher.Fetcher, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyzer{fetcher: f, timeout: timeout}
}

// NormalizeURL trims the URL and assumes https when no http(s) scheme is given.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

// Extract fetches rawURL once and derives its signals. Concurrent calls for
// the same normalized URL share a single request. The shared request is
// bounded by the analyzer timeout only, so one caller giving up does not
// fail the others; each caller still returns as soon as its own ctx is done.
func (a *Analyzer) Extract(ctx context.Context, rawURL string) (*model.QualitySignals, error) {
	normalized := NormalizeURL(rawURL)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "analyzer: fetch %s", normalized)
	}

	ch := a.group.DoChan(normalized, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.fetcher.Fetch(fetchCtx, normalized, a.timeout)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "analyzer: fetch %s", normalized)
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, eris.Wrapf(res.Err, "analyzer: fetch %s", normalized)
	}
	resp := res.Val.(*fetcher.Response)
	if res.Shared {
		zap.L().Debug("analyzer: shared in-flight fetch", zap.String("url", normalized))
	}

	doc, err := document.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, eris.Wrapf(err, "analyzer: parse %s", normalized)
	}

	signals := ExtractSignals(normalized, string(resp.Body), doc, resp.Elapsed, resp.StatusCode)

	zap.L().Debug("analyzer: signals extracted",
		zap.String("url", normalized),
		zap.Int("status", resp.StatusCode),
		zap.Int64("latency_ms", signals.FetchLatencyMs()),
		zap.Int("modernity", signals.ModernityCount()),
		zap.Bool("truncated", resp.Truncated),
	)

	return &signals, nil
}
