package discovery

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/google"
)

const (
	// maxPages limits pagination to avoid excessive API costs per search.
	maxPages = 3
	// closedPermanently is the Places business status for shut businesses.
	closedPermanently = "CLOSED_PERMANENTLY"
)

// PlacesOptions configures a PlacesSource.
type PlacesOptions struct {
	RateLimit float64
	PageSize  int
	// DirectoryHosts are listing and social hosts that do not count as the
	// business's own website.
	DirectoryHosts []string
	// Retry applies to each Text Search call. Zero value uses resilience.DefaultRetryPolicy.
	Retry resilience.RetryPolicy
	// BreakerThreshold consecutive failed calls pause the source for BreakerCooldown.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// PlacesSource discovers businesses with Google Places Text Search.
type PlacesSource struct {
	google   google.Client
	limiter  *rate.Limiter
	retry    resilience.RetryPolicy
	breaker  *resilience.Breaker
	pageSize int
	hosts    []string
}

// NewPlacesSource creates a PlacesSource with the given client.
func NewPlacesSource(g google.Client, opts PlacesOptions) *PlacesSource {
	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 20 {
		pageSize = 20
	}
	retry := opts.Retry
	if retry.Attempts == 0 {
		retry = resilience.DefaultRetryPolicy("places.text_search")
	}
	return &PlacesSource{
		google:   g,
		limiter:  rate.NewLimiter(rate.Limit(rateLimit), 1),
		retry:    retry,
		breaker:  resilience.NewBreaker("places", opts.BreakerThreshold, opts.BreakerCooldown),
		pageSize: pageSize,
		hosts:    opts.DirectoryHosts,
	}
}

// Name implements Source.
func (s *PlacesSource) Name() string { return "places" }

// Discover implements Source.
func (s *PlacesSource) Discover(ctx context.Context, c model.SearchCriteria) ([]model.BusinessCandidate, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	limit := c.Limit()
	query := c.Query()
	var (
		out       []model.BusinessCandidate
		pageToken string
	)

	for page := 0; page < maxPages && len(out) < limit; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return out, eris.Wrap(err, "places: rate limit wait")
		}

		if err := s.breaker.Allow(); err != nil {
			return nil, eris.Wrap(err, "places: text search skipped")
		}

		req := google.TextSearchRequest{
			TextQuery: query,
			PageSize:  min(s.pageSize, limit-len(out)),
			PageToken: pageToken,
		}
		resp, err := resilience.Retry(ctx, s.retry, func(ctx context.Context) (*google.TextSearchResponse, error) {
			return s.google.TextSearch(ctx, req)
		})
		s.breaker.Record(err)
		if err != nil {
			return nil, eris.Wrap(err, "places: text search")
		}

		for _, p := range resp.Places {
			if p.BusinessStatus == closedPermanently {
				continue
			}
			out = append(out, s.candidate(p, c.Category))
		}

		// Stop if no more pages.
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	log.Debug("places search complete", zap.String("query", query), zap.Int("found", len(out)))
	return truncate(out, limit), nil
}

func (s *PlacesSource) candidate(p google.Place, category string) model.BusinessCandidate {
	phone := p.NationalPhoneNumber
	if phone == "" {
		phone = p.InternationalPhoneNumber
	}

	cand := model.BusinessCandidate{
		ID:            p.ID,
		Name:          p.DisplayName.Text,
		Category:      category,
		Phone:         phone,
		Address:       p.FormattedAddress,
		GoogleMapsURL: p.GoogleMapsURI,
		Source:        s.Name(),
	}

	// A listing whose only web presence is a directory or social profile has
	// no website of its own.
	host := hostOf(p.WebsiteURI)
	switch {
	case p.WebsiteURI == "":
	case matchesHost(host, "facebook.com"):
		cand.FacebookURL = p.WebsiteURI
	case matchesHost(host, "instagram.com"):
		cand.InstagramURL = p.WebsiteURI
	case matchesHost(host, "justdial.com"):
		cand.JustdialURL = p.WebsiteURI
	case matchesHost(host, "indiamart.com"):
		cand.IndiamartURL = p.WebsiteURI
	case isDirectoryHost(host, s.hosts):
	default:
		cand.Website = p.WebsiteURI
	}

	return cand
}

func hostOf(website string) string {
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func matchesHost(host, domain string) bool {
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// isDirectoryHost checks if a hostname matches any entry in the blocklist.
func isDirectoryHost(host string, blocklist []string) bool {
	if host == "" {
		return false
	}
	for _, blocked := range blocklist {
		if matchesHost(host, blocked) {
			return true
		}
	}
	return false
}
