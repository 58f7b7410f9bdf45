package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/lead-scout/internal/document"
	"github.com/sells-group/lead-scout/internal/model"
)

var (
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
)

// ExtractSignals derives the quality signals from an already fetched page.
// raw is the markup as served; doc is the same markup parsed. The checks are
// independent of one another.
func ExtractSignals(normalizedURL, raw string, doc document.Document, latency time.Duration, status int) model.QualitySignals {
	lower := strings.ToLower(raw)
	bodyText := strings.ToLower(doc.Text("body"))

	description, _ := doc.Attr(`meta[name="description"]`, "content")

	return model.QualitySignals{
		URL:              normalizedURL,
		StatusCode:       status,
		HasSSL:           strings.HasPrefix(strings.ToLower(normalizedURL), "https://"),
		FetchLatency:     latency,
		HasViewportMeta:  doc.Count(`meta[name="viewport"]`) > 0,
		HasModernDoctype: strings.Contains(lower, "<!doctype html>"),
		HasContactInfo:   phonePattern.MatchString(bodyText) || emailPattern.MatchString(bodyText),
		HasStylesheet:    doc.Count(`link[rel="stylesheet"]`) > 0 || doc.Count("style") > 0,
		HasScript:        doc.Count("script") > 0,
		HasImages:        doc.Count("img") > 0,
		HasTableLayout:   strings.Contains(lower, "<table") && strings.Contains(lower, "layout"),
		HasLegacyTags:    strings.Contains(lower, "<marquee") || strings.Contains(lower, "<blink"),
		ReferencesFlash:  strings.Contains(lower, ".swf") || strings.Contains(lower, "flash"),
		Title:            doc.Text("title"),
		MetaDescription:  description,
		BrokenImageCount: countBrokenImages(doc),
	}
}

// countBrokenImages counts images with a missing, empty or "#" src.
func countBrokenImages(doc document.Document) int {
	n := 0
	for _, src := range doc.AttrAll("img", "src") {
		if !src.Present || src.Value == "" || src.Value == "#" {
			n++
		}
	}
	return n
}
