package model

import (
	"time"
)

// QualitySignals are the unscored facts extracted from one fetched page.
// A fresh value is built per fetch and never mutated afterwards.
type QualitySignals struct {
	URL              string        `json:"url"`
	StatusCode       int           `json:"statusCode"`
	HasSSL           bool          `json:"hasSSL"`
	FetchLatency     time.Duration `json:"-"`
	HasViewportMeta  bool          `json:"hasViewportMeta"`
	HasModernDoctype bool          `json:"hasModernDoctype"`
	HasContactInfo   bool          `json:"hasContactInfo"`
	HasStylesheet    bool          `json:"hasStylesheet"`
	HasScript        bool          `json:"hasScript"`
	HasImages        bool          `json:"hasImages"`
	HasTableLayout   bool          `json:"hasTableLayout"`
	HasLegacyTags    bool          `json:"hasLegacyTags"`
	ReferencesFlash  bool          `json:"referencesFlash"`
	Title            string        `json:"title"`
	MetaDescription  string        `json:"metaDescription"`
	BrokenImageCount int           `json:"brokenImageCount"`
}

// FetchLatencyMs returns the fetch latency in whole milliseconds.
func (s QualitySignals) FetchLatencyMs() int64 {
	return s.FetchLatency.Milliseconds()
}

// ModernityCount counts how many of stylesheet, script and image are present.
func (s QualitySignals) ModernityCount() int {
	n := 0
	for _, ok := range []bool{s.HasStylesheet, s.HasScript, s.HasImages} {
		if ok {
			n++
		}
	}
	return n
}

// QualityAssessment is the scored judgment of a website. Every point deducted
// from 100 has exactly one matching entry in Issues.
type QualityAssessment struct {
	Score            int      `json:"score"`
	Issues           []string `json:"issues"`
	HasSSL           bool     `json:"hasSSL"`
	IsMobileFriendly bool     `json:"isMobileFriendly"`
	LoadTimeMs       *int64   `json:"loadTime,omitempty"`
	HasContactInfo   bool     `json:"hasContactInfo"`
	IsModern         bool     `json:"isModern"`
}
