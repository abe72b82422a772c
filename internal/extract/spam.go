package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/webrenew/leadscout/internal/core"
)

// Pattern tiers and their distinct-match thresholds. Explicit terms convict
// on a single hit; softer tiers need corroboration before they count.
var (
	highConfidenceRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(viagra|cialis|levitra|tramadol|casino|porn|poker|forex)\b`),
		regexp.MustCompile(`[\p{Hiragana}\p{Katakana}\p{Han}]+`),
	}
	mediumConfidenceRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(buy now|limited time offer|act now|risk free|no prescription|cheap pills|lowest price|money back guarantee)\b`),
	}
	lowConfidenceRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(amazing deal|incredible offer|unbelievable|exclusive access|congratulations|free gift|click here now)\b`),
	}
)

var suspiciousPaths = []string{
	"/wp-content/uploads/", "/cache/", "/tmp/", "/backup/",
	"/wp-backup/", "/shell.php", "/old/", "/wp-admin.php",
}

var hiddenSpamRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<div[^>]*style\s*=\s*["'][^"']*display\s*:\s*none[^"']*["'][^>]*>.*?(viagra|cialis|casino|porn|forex)`),
	regexp.MustCompile(`(?is)<span[^>]*style\s*=\s*["'][^"']*visibility\s*:\s*hidden[^"']*["'][^>]*>.*?(viagra|cialis|casino|porn|forex)`),
	regexp.MustCompile(`(?is)<div[^>]*class\s*=\s*["'][^"']*hidden[^"']*["'][^>]*>.*?(viagra|cialis|casino|porn|forex)`),
}

// SpamSignals scans the page set for spam/compromise indicators. Each finding
// carries its confidence tier as a structured value.
func SpamSignals(pages []core.PageResult) []core.SpamSignal {
	var signals []core.SpamSignal

	for _, page := range pages {
		if !page.OK() {
			continue
		}
		lower := strings.ToLower(page.Body)

		signals = append(signals, matchTier(lower, highConfidenceRes, core.ConfidenceHigh, 1)...)
		signals = append(signals, matchTier(lower, mediumConfidenceRes, core.ConfidenceMedium, 2)...)
		signals = append(signals, matchTier(lower, lowConfidenceRes, core.ConfidenceLow, 3)...)

		// Path hits are recorded as findings but carry no confidence tier,
		// so they never tip the aggregate on their own.
		pageURL := strings.ToLower(page.URL)
		for _, path := range suspiciousPaths {
			if strings.Contains(pageURL, path) {
				signals = append(signals, core.SpamSignal{
					Description: fmt.Sprintf("Suspicious path: %s", path),
				})
			}
		}

		// Spam wrapped in CSS-hidden containers is always high confidence,
		// regardless of the tiered thresholds.
		for _, re := range hiddenSpamRes {
			if re.MatchString(page.Body) {
				signals = append(signals, core.SpamSignal{
					Description: "Hidden spam content detected",
					Confidence:  core.ConfidenceHigh,
					Hidden:      true,
				})
				break
			}
		}
	}

	return signals
}

func matchTier(content string, patterns []*regexp.Regexp, confidence, minDistinct int) []core.SpamSignal {
	var signals []core.SpamSignal

	for _, re := range patterns {
		matches := re.FindAllString(content, -1)
		if len(matches) == 0 {
			continue
		}
		distinct := make(map[string]struct{})
		for _, m := range matches {
			distinct[m] = struct{}{}
		}
		if len(distinct) >= minDistinct {
			signals = append(signals, core.SpamSignal{
				Description: fmt.Sprintf("Spam content (%d%% confidence): %s", confidence, re.String()),
				Confidence:  confidence,
			})
		}
	}

	return signals
}

// AssessSpam aggregates matched signals into an average confidence, weighted
// by how many signals landed in each tier, and a recommendation band.
// Untiered findings such as suspicious paths sit outside the average.
func AssessSpam(signals []core.SpamSignal) core.SpamAssessment {
	var assessment core.SpamAssessment

	for _, s := range signals {
		switch s.Confidence {
		case core.ConfidenceHigh:
			assessment.HighCount++
		case core.ConfidenceMedium:
			assessment.MediumCount++
		case core.ConfidenceLow:
			assessment.LowCount++
		}
	}

	assessment.TotalSignals = assessment.HighCount + assessment.MediumCount + assessment.LowCount
	if assessment.TotalSignals > 0 {
		weighted := assessment.HighCount*core.ConfidenceHigh +
			assessment.MediumCount*core.ConfidenceMedium +
			assessment.LowCount*core.ConfidenceLow
		assessment.AvgConfidence = float64(weighted) / float64(assessment.TotalSignals)
	}

	switch {
	case assessment.AvgConfidence >= 90:
		assessment.Recommendation = "REJECT - High confidence spam"
	case assessment.AvgConfidence >= 40:
		assessment.Recommendation = "REVIEW - Medium confidence, needs human review"
	case assessment.AvgConfidence >= 15:
		assessment.Recommendation = "ACCEPT - Low confidence, likely false positive"
	default:
		assessment.Recommendation = "ACCEPT - No spam detected"
	}

	return assessment
}

// HasHiddenSpam reports whether any signal came from a CSS-hidden container.
func HasHiddenSpam(signals []core.SpamSignal) bool {
	for _, s := range signals {
		if s.Hidden {
			return true
		}
	}
	return false
}
