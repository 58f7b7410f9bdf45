package discovery

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/model"
)

// MultiSource queries several sources concurrently and merges their results
// in source order. A failing source contributes no candidates; the search
// fails only when every source fails.
type MultiSource struct {
	sources []Source
}

// NewMultiSource creates a MultiSource over sources, queried in the given order.
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Name implements Source.
func (m *MultiSource) Name() string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

// Sources returns the underlying sources.
func (m *MultiSource) Sources() []Source {
	return m.sources
}

// Discover implements Source.
func (m *MultiSource) Discover(ctx context.Context, c model.SearchCriteria) ([]model.BusinessCandidate, error) {
	if len(m.sources) == 0 {
		return nil, eris.New("discovery: no sources configured")
	}

	results := make([][]model.BusinessCandidate, len(m.sources))
	errs := make([]error, len(m.sources))

	var g errgroup.Group
	for i, src := range m.sources {
		g.Go(func() error {
			found, err := src.Discover(ctx, c)
			if err != nil {
				zap.L().Warn("discovery source failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				errs[i] = err
				return nil
			}
			assignIDs(src.Name(), found)
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	var lastErr error
	for _, err := range errs {
		if err != nil {
			failed++
			lastErr = err
		}
	}
	if failed == len(m.sources) {
		return nil, eris.Wrapf(lastErr, "discovery: all %d sources failed", failed)
	}

	seen := make(map[string]struct{})
	var merged []model.BusinessCandidate
	for _, found := range results {
		for _, cand := range found {
			key := dedupeKey(cand)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, cand)
		}
	}

	return truncate(merged, c.Limit()), nil
}

func dedupeKey(c model.BusinessCandidate) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return norm(c.Name) + "|" + norm(c.Address)
}
