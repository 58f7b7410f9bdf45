package model

import (
	"strings"
)

const (
	// DefaultLeadCount is used when a search does not ask for a specific number of leads.
	DefaultLeadCount = 10
	// MaxLeadCount is the hard cap on leads per search. It also bounds analysis concurrency.
	MaxLeadCount = 50
)

// SearchCriteria is the immutable input to a single pipeline run.
type SearchCriteria struct {
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Category      string `json:"category"`
	NumberOfLeads int    `json:"numberOfLeads,omitempty"`
}

// ValidationError reports mandatory search fields that were left blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return "invalid search criteria"
	}
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Validate checks that city, country and category are present and that the
// requested lead count is not negative.
func (c SearchCriteria) Validate() error {
	var missing []string
	if strings.TrimSpace(c.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(c.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(c.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if c.NumberOfLeads < 0 {
		return &ValidationError{Missing: []string{"numberOfLeads (must be positive)"}}
	}
	return nil
}

// Limit returns the effective number of leads: DefaultLeadCount when unset,
// clamped to MaxLeadCount.
func (c SearchCriteria) Limit() int {
	n := c.NumberOfLeads
	if n <= 0 {
		n = DefaultLeadCount
	}
	if n > MaxLeadCount {
		n = MaxLeadCount
	}
	return n
}

// Query builds the free-text directory query, e.g. "bakery in Pune, MH, India".
func (c SearchCriteria) Query() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.City, c.State, c.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(c.Category) + " in " + strings.Join(parts, ", ")
}
