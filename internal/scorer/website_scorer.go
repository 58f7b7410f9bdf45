// Package scorer turns extracted website signals into a 0-100 quality score
// with one human-readable issue per deduction.
package scorer

import (
	"fmt"
	"unicode/utf8"

	"github.com/sells-group/lead-scout/internal/model"
)

const (
	baselineScore = 100

	slowLoadThresholdMs  = 5000
	minModernityCount    = 2
	minTitleLength       = 10
	minDescriptionLength = 20
	brokenImagePenalty   = 2
	maxBrokenImageDeduct = 10
)

// Rule is one independent deduction. Deduct returns the points to subtract
// and the issue to record; zero points means the rule did not fire.
type Rule struct {
	Name   string
	Deduct func(s model.QualitySignals) (int, string)
}

func flat(points int, issue string, fires func(s model.QualitySignals) bool) func(model.QualitySignals) (int, string) {
	return func(s model.QualitySignals) (int, string) {
		if fires(s) {
			return points, issue
		}
		return 0, ""
	}
}

// rules is evaluated in order; issue order in the assessment follows it.
var rules = []Rule{
	{"ssl", flat(15, "No SSL/HTTPS", func(s model.QualitySignals) bool {
		return !s.HasSSL
	})},
	{"latency", flat(10, "Slow loading (>5s)", func(s model.QualitySignals) bool {
		return s.FetchLatencyMs() > slowLoadThresholdMs
	})},
	{"viewport", flat(15, "Not mobile-friendly", func(s model.QualitySignals) bool {
		return !s.HasViewportMeta
	})},
	{"doctype", flat(10, "Outdated HTML", func(s model.QualitySignals) bool {
		return !s.HasModernDoctype
	})},
	{"contact", flat(10, "No clear contact info", func(s model.QualitySignals) bool {
		return !s.HasContactInfo
	})},
	{"modernity", flat(15, "Very basic design", func(s model.QualitySignals) bool {
		return s.ModernityCount() < minModernityCount
	})},
	{"table_layout", flat(10, "Table-based layout", func(s model.QualitySignals) bool {
		return s.HasTableLayout
	})},
	{"legacy_tags", flat(10, "Outdated HTML tags", func(s model.QualitySignals) bool {
		return s.HasLegacyTags
	})},
	{"flash", flat(15, "Uses Flash", func(s model.QualitySignals) bool {
		return s.ReferencesFlash
	})},
	{"title", flat(5, "Poor or missing title", func(s model.QualitySignals) bool {
		return utf8.RuneCountInString(s.Title) < minTitleLength
	})},
	{"meta_description", flat(5, "No meta description", func(s model.QualitySignals) bool {
		return utf8.RuneCountInString(s.MetaDescription) < minDescriptionLength
	})},
	{"broken_images", func(s model.QualitySignals) (int, string) {
		if s.BrokenImageCount <= 0 {
			return 0, ""
		}
		return min(maxBrokenImageDeduct, s.BrokenImageCount*brokenImagePenalty),
			fmt.Sprintf("%d broken image(s)", s.BrokenImageCount)
	}},
}

// Rules returns a copy of the ordered deduction table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Score folds the rule table over s. It is pure: identical signals always
// yield an identical assessment.
func Score(s model.QualitySignals) model.QualityAssessment {
	score := baselineScore
	issues := make([]string, 0, len(rules))

	for _, r := range rules {
		points, issue := r.Deduct(s)
		if points == 0 {
			continue
		}
		score -= points
		issues = append(issues, issue)
	}

	loadTime := s.FetchLatencyMs()
	return model.QualityAssessment{
		Score:            clamp(score),
		Issues:           issues,
		HasSSL:           s.HasSSL,
		IsMobileFriendly: s.HasViewportMeta,
		LoadTimeMs:       &loadTime,
		HasContactInfo:   s.HasContactInfo,
		IsModern:         s.ModernityCount() >= minModernityCount,
	}
}

func clamp(score int) int {
	return max(0, min(baselineScore, score))
}
