package discovery

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/sells-group/lead-scout/internal/model"
)

type mockBusiness struct {
	pattern string
	website string
	phone   string
	email   string
}

// mockBusinesses alternates between listings with and without a website.
var mockBusinesses = []mockBusiness{
	{pattern: "%s Express", phone: "+91-9876543210"},
	{pattern: "City %s", website: "http://old-site-example.com", phone: "+91-9876543211", email: "contact@example.com"},
	{pattern: "Premium %s Studio", phone: "+91-9876543212"},
	{pattern: "%s Hub", website: "http://basic-site.com", phone: "+91-9876543213", email: "info@example.com"},
	{pattern: "Modern %s Center", phone: "+91-9876543214"},
	{pattern: "Elite %s", website: "http://outdated-website.com", phone: "+91-9876543215"},
	{pattern: "%s Pro", phone: "+91-9876543216", email: "hello@example.com"},
	{pattern: "Best %s", website: "http://simple-site.com", phone: "+91-9876543217"},
	{pattern: "%s Plus", phone: "+91-9876543218"},
	{pattern: "Top %s", website: "http://basic-business.com", phone: "+91-9876543219", email: "contact@business.com"},
}

// MockSource synthesizes plausible local businesses for demos and tests.
// Output is deterministic for a given set of criteria.
type MockSource struct{}

// NewMockSource creates a MockSource.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Name implements Source.
func (s *MockSource) Name() string { return "mock" }

// Discover implements Source.
func (s *MockSource) Discover(ctx context.Context, c model.SearchCriteria) ([]model.BusinessCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(seed(c), uint64(len(mockBusinesses))))
	n := min(c.Limit(), len(mockBusinesses))
	out := make([]model.BusinessCandidate, 0, n)

	for i, b := range mockBusinesses[:n] {
		name := fmt.Sprintf(b.pattern, c.Category)
		handle := strings.ToLower(strings.Join(strings.Fields(name), ""))

		cand := model.BusinessCandidate{
			Name:          name,
			Category:      c.Category,
			Phone:         b.phone,
			Email:         b.email,
			Address:       fmt.Sprintf("%d, Main Street, %s, %s, %s", i+1, c.City, c.State, c.Country),
			Website:       b.website,
			GoogleMapsURL: "https://maps.google.com/?q=" + url.QueryEscape(name+" "+c.City),
			Source:        s.Name(),
		}
		if r.Float64() > 0.5 {
			cand.FacebookURL = "https://facebook.com/" + handle
		}
		if r.Float64() > 0.5 {
			cand.InstagramURL = "https://instagram.com/" + handle
		}
		out = append(out, cand)
	}

	return out, nil
}

func seed(c model.SearchCriteria) uint64 {
	h := fnv.New64a()
	for _, part := range []string{c.City, c.State, c.Country, c.Category} {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
