package scorer

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/resilience"
)

const (
	unreachableScore   = 0
	analysisErrorScore = 20
)

// Unreachable is the assessment for a site whose host did not resolve or
// refused the connection.
func Unreachable() model.QualityAssessment {
	return model.QualityAssessment{
		Score:  unreachableScore,
		Issues: []string{"Website unreachable"},
	}
}

// AnalysisError is the assessment for any other fetch or parse failure.
// SSL is still credited from the scheme that was attempted. The issue text
// is the root cause only, without the wrapping context.
func AnalysisError(attemptedURL string, err error) model.QualityAssessment {
	msg := "unknown error"
	if err != nil {
		msg = eris.Cause(err).Error()
	}
	return model.QualityAssessment{
		Score:  analysisErrorScore,
		Issues: []string{"Error analyzing website", msg},
		HasSSL: strings.HasPrefix(strings.ToLower(attemptedURL), "https://"),
	}
}

// Assess returns the scored assessment when signals were extracted, or the
// matching fallback when extraction failed.
func Assess(attemptedURL string, signals *model.QualitySignals, err error) model.QualityAssessment {
	switch {
	case err == nil && signals != nil:
		return Score(*signals)
	case resilience.IsUnreachable(err):
		return Unreachable()
	default:
		return AnalysisError(attemptedURL, err)
	}
}
