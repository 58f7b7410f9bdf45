// Package model defines the search, candidate and assessment types shared
// across the lead pipeline.
package model

import (
	"strings"
)

// WebsiteStatus is the opportunity tier assigned to a lead.
type WebsiteStatus string

const (
	StatusNoWebsite   WebsiteStatus = "No Website"
	StatusLowQuality  WebsiteStatus = "Low Quality"
	StatusGoodQuality WebsiteStatus = "Good Quality"
	StatusUnknown     WebsiteStatus = "Unknown"
)

// IsOpportunity reports whether leads in this tier are worth outreach.
func (s WebsiteStatus) IsOpportunity() bool {
	return s == StatusNoWebsite || s == StatusLowQuality
}

// BusinessCandidate is a raw business record returned by a discovery source.
type BusinessCandidate struct {
	ID            string `json:"id,omitempty" yaml:"id"`
	Name          string `json:"businessName" yaml:"name"`
	Category      string `json:"category" yaml:"category"`
	Phone         string `json:"phone,omitempty" yaml:"phone"`
	Email         string `json:"email,omitempty" yaml:"email"`
	Address       string `json:"address" yaml:"address"`
	Website       string `json:"website,omitempty" yaml:"website"`
	GoogleMapsURL string `json:"googleMapsUrl,omitempty" yaml:"google_maps_url"`
	FacebookURL   string `json:"facebookUrl,omitempty" yaml:"facebook_url"`
	InstagramURL  string `json:"instagramUrl,omitempty" yaml:"instagram_url"`
	JustdialURL   string `json:"justdialUrl,omitempty" yaml:"justdial_url"`
	IndiamartURL  string `json:"indiamartUrl,omitempty" yaml:"indiamart_url"`
	Source        string `json:"source,omitempty" yaml:"source"`
}

// HasWebsite reports whether the candidate lists a website URL.
func (b BusinessCandidate) HasWebsite() bool {
	return strings.TrimSpace(b.Website) != ""
}

// ClassifiedLead is a candidate merged with its website assessment and tier.
type ClassifiedLead struct {
	BusinessCandidate
	WebsiteStatus WebsiteStatus      `json:"websiteStatus"`
	QualityScore  *int               `json:"qualityScore,omitempty"`
	WebsiteIssues []string           `json:"websiteIssues,omitempty"`
	Assessment    *QualityAssessment `json:"assessment,omitempty"`
}

// SearchResult is the output of one pipeline run. Total always equals len(Leads).
type SearchResult struct {
	RunID    string           `json:"runId"`
	Leads    []ClassifiedLead `json:"leads"`
	Total    int              `json:"total"`
	Analyzed int              `json:"analyzed"`
	Partial  bool             `json:"partial,omitempty"`
}

// NewSearchResult builds a SearchResult whose Total matches the lead list.
func NewSearchResult(runID string, leads []ClassifiedLead, analyzed int, partial bool) *SearchResult {
	if leads == nil {
		leads = []ClassifiedLead{}
	}
	return &SearchResult{
		RunID:    runID,
		Leads:    leads,
		Total:    len(leads),
		Analyzed: analyzed,
		Partial:  partial,
	}
}
