// Package classify maps a website assessment onto an opportunity tier.
package classify

import (
	"github.com/sells-group/lead-scout/internal/model"
)

// LowQualityThreshold is the score below which a site counts as low quality.
const LowQualityThreshold = 70

// Classify returns the tier for a lead. A nil score means analysis has not
// completed for a lead that does have a website.
func Classify(hasWebsite bool, score *int) model.WebsiteStatus {
	switch {
	case !hasWebsite:
		return model.StatusNoWebsite
	case score == nil:
		return model.StatusUnknown
	case *score < LowQualityThreshold:
		return model.StatusLowQuality
	default:
		return model.StatusGoodQuality
	}
}

// Lead merges an assessment into a candidate and derives its tier. A nil
// assessment leaves a websited candidate Unknown.
func Lead(c model.BusinessCandidate, a *model.QualityAssessment) model.ClassifiedLead {
	lead := model.ClassifiedLead{BusinessCandidate: c}
	if !c.HasWebsite() {
		lead.WebsiteStatus = Classify(false, nil)
		return lead
	}
	if a == nil {
		lead.WebsiteStatus = Classify(true, nil)
		return lead
	}
	score := a.Score
	lead.Assessment = a
	lead.QualityScore = &score
	lead.WebsiteIssues = a.Issues
	lead.WebsiteStatus = Classify(true, &score)
	return lead
}
