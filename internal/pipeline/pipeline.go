// Package pipeline runs a lead search end to end: discovery, concurrent
// website analysis, scoring, classification and opportunity filtering.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/analyzer"
	"github.com/sells-group/lead-scout/internal/classify"
	"github.com/sells-group/lead-scout/internal/discovery"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scorer"
)

// ErrDiscovery matches any error caused by the discovery source failing outright.
var ErrDiscovery = errors.New("discovery failed")

// DiscoveryError wraps a failure from the discovery source.
type DiscoveryError struct {
	Source string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return "pipeline: discovery via " + e.Source + ": " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Is reports ErrDiscovery as a match.
func (e *DiscoveryError) Is(target error) bool { return target == ErrDiscovery }

// Extractor derives quality signals from a website URL.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*model.QualitySignals, error)
}

// Options tunes a Pipeline.
type Options struct {
	// MaxConcurrency caps in-flight website analyses. Values outside
	// [1, model.MaxLeadCount] fall back to model.MaxLeadCount.
	MaxConcurrency int
}

// Pipeline turns search criteria into classified opportunity leads.
type Pipeline struct {
	source         discovery.Source
	extractor      Extractor
	maxConcurrency int
}

// New creates a Pipeline.
func New(source discovery.Source, extractor Extractor, opts Options) *Pipeline {
	n := opts.MaxConcurrency
	if n < 1 || n > model.MaxLeadCount {
		n = model.MaxLeadCount
	}
	return &Pipeline{
		source:         source,
		extractor:      extractor,
		maxConcurrency: n,
	}
}

// Run executes one search. Only NoWebsite and LowQuality leads are returned,
// in discovery order. Per-website failures never fail the run; they become
// fallback assessments. If ctx expires mid-run, websites not yet assessed are
// left Unknown, dropped from the result, and the result is marked Partial.
func (p *Pipeline) Run(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("query", criteria.Query()))
	start := time.Now()
	log.Info("pipeline: run started", zap.Int("requested", criteria.Limit()))

	candidates, err := p.source.Discover(ctx, criteria)
	if err != nil {
		log.Error("pipeline: discovery failed", zap.Error(err))
		return nil, &DiscoveryError{Source: p.source.Name(), Err: err}
	}
	if limit := criteria.Limit(); len(candidates) > limit {
		candidates = candidates[:limit]
	}

	websited := 0
	for _, c := range candidates {
		if c.HasWebsite() {
			websited++
		}
	}

	// Each task writes only its own slot.
	assessments := make([]*model.QualityAssessment, len(candidates))

	var g errgroup.Group
	g.SetLimit(max(1, min(websited, p.maxConcurrency)))
	for i, c := range candidates {
		if !c.HasWebsite() {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			a, ok := p.assess(ctx, c.Website)
			if !ok {
				return nil
			}
			assessments[i] = &a
			return nil
		})
	}
	_ = g.Wait()

	var (
		leads    []model.ClassifiedLead
		analyzed int
		partial  bool
	)
	for i, c := range candidates {
		lead := classify.Lead(c, assessments[i])
		if assessments[i] != nil {
			analyzed++
		} else if c.HasWebsite() {
			partial = true
		}

		log.Debug("pipeline: lead classified",
			zap.String("business", c.Name),
			zap.String("website", c.Website),
			zap.String("status", string(lead.WebsiteStatus)),
		)

		if lead.WebsiteStatus.IsOpportunity() {
			leads = append(leads, lead)
		}
	}

	result := model.NewSearchResult(runID, leads, analyzed, partial)

	log.Info("pipeline: run complete",
		zap.Int("discovered", len(candidates)),
		zap.Int("analyzed", analyzed),
		zap.Int("opportunities", result.Total),
		zap.Bool("partial", partial),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// assess analyzes one website. It reports false when the run context expired
// before the analysis could produce an outcome.
func (p *Pipeline) assess(ctx context.Context, website string) (model.QualityAssessment, bool) {
	normalized := analyzer.NormalizeURL(website)
	signals, err := p.extractor.Extract(ctx, normalized)
	if err != nil {
		if ctx.Err() != nil {
			return model.QualityAssessment{}, false
		}
		zap.L().Debug("pipeline: website analysis failed",
			zap.String("url", normalized),
			zap.Error(err),
		)
	}
	return scorer.Assess(normalized, signals, err), true
}

// AnalyzeURL audits a single website outside of a search run.
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (model.QualityAssessment, model.WebsiteStatus) {
	if strings.TrimSpace(rawURL) == "" {
		return model.QualityAssessment{}, classify.Classify(false, nil)
	}

	normalized := analyzer.NormalizeURL(rawURL)
	signals, err := p.extractor.Extract(ctx, normalized)
	a := scorer.Assess(normalized, signals, err)
	score := a.Score
	return a, classify.Classify(true, &score)
}
