package main

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/analyzer"
	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/discovery"
	"github.com/sells-group/lead-scout/internal/fetcher"
	"github.com/sells-group/lead-scout/internal/pipeline"
)

// pipelineEnv holds the initialized collaborators needed by the
// search/analyze/serve commands.
type pipelineEnv struct {
	Source   discovery.Source
	Analyzer *analyzer.Analyzer
	Pipeline *pipeline.Pipeline
}

// initPipeline validates the config for mode and builds the Pipeline.
func initPipeline(c *config.Config, mode string) (*pipelineEnv, error) {
	if c == nil {
		return nil, eris.New("config not loaded")
	}
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	timeout := time.Duration(c.Analyzer.TimeoutSecs) * time.Second
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.Analyzer.UserAgent,
		Timeout:      timeout,
		MaxBodyBytes: c.Analyzer.MaxBodyBytes,
		RateLimit:    rate.Limit(c.Analyzer.RateLimitRPS),
		RateBurst:    c.Analyzer.RateLimitBurst,
	})
	a := analyzer.New(f, timeout)

	env := &pipelineEnv{Analyzer: a}

	// analyze never discovers, so it does not need working sources.
	if mode == "analyze" {
		env.Pipeline = pipeline.New(nil, a, pipeline.Options{MaxConcurrency: c.Analyzer.MaxConcurrency})
		return env, nil
	}

	src, err := discovery.NewFromConfig(c.Discovery)
	if err != nil {
		return nil, eris.Wrap(err, "init discovery")
	}
	env.Source = src
	env.Pipeline = pipeline.New(src, a, pipeline.Options{MaxConcurrency: c.Analyzer.MaxConcurrency})

	return env, nil
}
