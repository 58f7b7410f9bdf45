package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCriteria_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		criteria    SearchCriteria
		wantMissing []string
	}{
		{
			name:     "all present",
			criteria: SearchCriteria{City: "Pune", Country: "India", Category: "Bakery"},
		},
		{
			name:     "state is optional",
			criteria: SearchCriteria{City: "Austin", State: "", Country: "US", Category: "Dentist", NumberOfLeads: 5},
		},
		{
			name:        "missing city",
			criteria:    SearchCriteria{Country: "India", Category: "Bakery"},
			wantMissing: []string{"city"},
		},
		{
			name:        "blank fields",
			criteria:    SearchCriteria{City: "  ", Country: "", Category: "\t"},
			wantMissing: []string{"city", "country", "category"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.criteria.Validate()
			if tt.wantMissing == nil {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantMissing, ve.Missing)
			assert.Contains(t, err.Error(), "missing required fields")
		})
	}
}

func TestSearchCriteria_ValidateNegativeCount(t *testing.T) {
	t.Parallel()

	err := SearchCriteria{City: "a", Country: "b", Category: "c", NumberOfLeads: -1}.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), "numberOfLeads")
}

func TestSearchCriteria_Limit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultLeadCount, SearchCriteria{}.Limit())
	assert.Equal(t, 1, SearchCriteria{NumberOfLeads: 1}.Limit())
	assert.Equal(t, 3, SearchCriteria{NumberOfLeads: 3}.Limit())
	assert.Equal(t, MaxLeadCount, SearchCriteria{NumberOfLeads: 50}.Limit())
	assert.Equal(t, MaxLeadCount, SearchCriteria{NumberOfLeads: 500}.Limit())
}

func TestSearchCriteria_Query(t *testing.T) {
	t.Parallel()

	c := SearchCriteria{City: "Pune", State: "MH", Country: "India", Category: "Bakery"}
	assert.Equal(t, "Bakery in Pune, MH, India", c.Query())

	c.State = ""
	assert.Equal(t, "Bakery in Pune, India", c.Query())
}

func TestWebsiteStatus_IsOpportunity(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusNoWebsite.IsOpportunity())
	assert.True(t, StatusLowQuality.IsOpportunity())
	assert.False(t, StatusGoodQuality.IsOpportunity())
	assert.False(t, StatusUnknown.IsOpportunity())
}

func TestBusinessCandidate_HasWebsite(t *testing.T) {
	t.Parallel()

	assert.True(t, BusinessCandidate{Website: "http://example.com"}.HasWebsite())
	assert.False(t, BusinessCandidate{Website: "   "}.HasWebsite())
	assert.False(t, BusinessCandidate{}.HasWebsite())
}

func TestNewSearchResult_TotalMatchesLeads(t *testing.T) {
	t.Parallel()

	res := NewSearchResult("run-1", nil, 0, false)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Leads)

	leads := []ClassifiedLead{
		{WebsiteStatus: StatusNoWebsite},
		{WebsiteStatus: StatusLowQuality},
	}
	res = NewSearchResult("run-2", leads, 1, true)
	assert.Equal(t, len(res.Leads), res.Total)
	assert.Equal(t, 1, res.Analyzed)
	assert.True(t, res.Partial)
}

func TestQualitySignals_ModernityCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, QualitySignals{}.ModernityCount())
	assert.Equal(t, 2, QualitySignals{HasStylesheet: true, HasImages: true}.ModernityCount())
	assert.Equal(t, 3, QualitySignals{HasStylesheet: true, HasScript: true, HasImages: true}.ModernityCount())
}
