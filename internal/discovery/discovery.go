// Package discovery finds candidate businesses for a search from one or more
// listing sources.
package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/google"
)

// Source returns business candidates matching the search criteria.
type Source interface {
	Name() string
	Discover(ctx context.Context, criteria model.SearchCriteria) ([]model.BusinessCandidate, error)
}

// NewFromConfig builds the configured sources behind a MultiSource.
func NewFromConfig(cfg config.DiscoveryConfig) (*MultiSource, error) {
	if len(cfg.Sources) == 0 {
		return nil, eris.New("discovery: no sources configured")
	}

	sources := make([]Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case config.SourceMock:
			sources = append(sources, NewMockSource())
		case config.SourceFile:
			if cfg.FixturePath == "" {
				return nil, eris.New("discovery: file source requires fixture_path")
			}
			sources = append(sources, NewFileSource(cfg.FixturePath))
		case config.SourcePlaces:
			if cfg.Google.Key == "" {
				return nil, eris.New("discovery: places source requires google.key")
			}
			var opts []google.Option
			if cfg.Google.BaseURL != "" {
				opts = append(opts, google.WithBaseURL(cfg.Google.BaseURL))
			}
			client := google.NewClient(cfg.Google.Key, opts...)
			retry := resilience.DefaultRetryPolicy("places.text_search")
			if cfg.Google.MaxAttempts > 0 {
				retry.Attempts = cfg.Google.MaxAttempts
			}
			sources = append(sources, NewPlacesSource(client, PlacesOptions{
				RateLimit:        cfg.Google.RateLimit,
				PageSize:         cfg.Google.PageSize,
				DirectoryHosts:   cfg.Google.DirectoryHosts,
				Retry:            retry,
				BreakerThreshold: cfg.Google.BreakerThreshold,
				BreakerCooldown:  time.Duration(cfg.Google.BreakerCooldownSecs) * time.Second,
			}))
		default:
			return nil, eris.Errorf("discovery: unknown source %q", name)
		}
	}

	return NewMultiSource(sources...), nil
}

// assignIDs gives every candidate without an ID a fresh one and records the
// source name when the source left it blank.
func assignIDs(source string, candidates []model.BusinessCandidate) {
	for i := range candidates {
		if candidates[i].ID == "" {
			candidates[i].ID = uuid.NewString()
		}
		if candidates[i].Source == "" {
			candidates[i].Source = source
		}
	}
}

func truncate(candidates []model.BusinessCandidate, limit int) []model.BusinessCandidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
