package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/webrenew/leadscout/internal/core"
)

// Builder fingerprints in fixed precedence order; the first match wins and no
// page gets more than one label.
var builderFingerprints = []struct {
	name   string
	tokens []string
}{
	{"divi", []string{"et_pb_", "divi-theme", "/divi/"}},
	{"elementor", []string{"elementor-widget", "elementor-section", "/elementor/"}},
	{"wpbakery", []string{"js_composer", "wpb_wrapper", "vc_row"}},
	{"beaver", []string{"fl-builder", "fl-row", "fl-module"}},
	{"avada", []string{"fusion-builder", "avada-", "fusion-row"}},
}

var (
	oldJQueryRe    = regexp.MustCompile(`(?i)jquery(?:\.min)?\.js\?ver=(\d+)\.(\d+)`)
	oldBootstrapRe = regexp.MustCompile(`(?i)bootstrap(?:\.min)?\.(?:css|js)\?ver=([23])\.`)
	copyrightRe    = regexp.MustCompile(`(?i)(?:©|&copy;|copyright)\s*(?:\(c\)\s*)?(\d{4})`)
	stalePluginRe  = regexp.MustCompile(`(?i)/wp-content/plugins/([a-z0-9\-]+)/[^"']*\?ver=(0|1)\.`)
)

var sliderTokens = []string{
	"revslider", "revolution slider", "flexslider", "nivoslider", "nivo-slider",
	"layerslider",
}

var foucTokens = []string{
	"document.write(", "no-js", "fouc",
}

var consoleErrorTokens = []string{
	"console.error(", "uncaught typeerror", "is not defined",
	"uncaught referenceerror",
}

var localeTerms = []string{
	"new york", "nyc", "brooklyn", "manhattan", "queens", "bronx",
	"staten island", "long island", "locally owned", "family owned",
	"serving the", "our neighborhood",
}

const (
	localeBonusPoints   = 5
	poorAltRatio        = 0.4
	pointsLegacySlider  = 15
	pointsFOUC          = 10
	pointsLegacyScript  = 8
	pointsConsoleErrors = 5
	pointsScriptOrder   = 6
)

// Outdated runs the HTML-side heuristics for renovation-pitch signals over a
// single page (the first successful one by convention). The jQuery version
// cutoff and copyright cutoff year come from configuration.
func Outdated(body, pageURL, jqueryCutoff string, copyrightCutoff int) core.OutdatedAnalysis {
	var analysis core.OutdatedAnalysis
	lower := strings.ToLower(body)

	for _, fp := range builderFingerprints {
		for _, token := range fp.tokens {
			if strings.Contains(lower, token) {
				analysis.Builder = fp.name
				break
			}
		}
		if analysis.Builder != "" {
			break
		}
	}

	if m := oldJQueryRe.FindStringSubmatch(body); m != nil {
		analysis.OldJQuery = jqueryBelow(m[1], m[2], jqueryCutoff)
	}
	analysis.OldBootstrap = oldBootstrapRe.MatchString(body)

	if m := copyrightRe.FindAllStringSubmatch(body, -1); m != nil {
		// Keep the most recent year the footer claims.
		for _, match := range m {
			if year, err := strconv.Atoi(match[1]); err == nil && year > analysis.CopyrightYear {
				if year <= time.Now().Year()+1 {
					analysis.CopyrightYear = year
				}
			}
		}
		if analysis.CopyrightYear > 0 && analysis.CopyrightYear < copyrightCutoff {
			analysis.StaleCopyright = true
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		imgs := doc.Find("img")
		if total := imgs.Length(); total > 0 {
			missing := 0
			imgs.Each(func(_ int, sel *goquery.Selection) {
				if alt, ok := sel.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
					missing++
				}
			})
			if float64(missing)/float64(total) > poorAltRatio {
				analysis.PoorImageAlt = true
			}
		}
	}

	analysis.NoStructuredData = !strings.Contains(lower, "application/ld+json") &&
		!strings.Contains(lower, "schema.org")
	analysis.NoOpenGraph = !strings.Contains(lower, `property="og:`) &&
		!strings.Contains(lower, `property='og:`)

	for _, term := range localeTerms {
		if strings.Contains(lower, term) {
			analysis.LocaleBonus = localeBonusPoints
			break
		}
	}

	analysis.JS = analyzeJS(body, lower)
	return analysis
}

// jqueryBelow compares a found major.minor pair against the configured
// cutoff. A cutoff that does not parse falls back to 2.0.
func jqueryBelow(major, minor, cutoff string) bool {
	ma, _ := strconv.Atoi(major)
	mi, _ := strconv.Atoi(minor)

	cma, cmi := 2, 0
	parts := strings.SplitN(cutoff, ".", 2)
	if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		cma = v
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			cmi = v
		}
	}
	return ma < cma || (ma == cma && mi < cmi)
}

// analyzeJS is the script-level second pass: legacy slider plugins, FOUC
// hints, console-error markers and a naive script-before-stylesheet ordering
// check. Each finding carries an additive point bonus.
func analyzeJS(body, lower string) core.JSAnalysis {
	var js core.JSAnalysis

	for _, token := range sliderTokens {
		if strings.Contains(lower, token) {
			js.LegacySlider = true
			js.Points += pointsLegacySlider
			break
		}
	}

	for _, token := range foucTokens {
		if strings.Contains(lower, token) {
			js.FOUCRisk = true
			js.Points += pointsFOUC
			break
		}
	}

	if m := oldJQueryRe.FindStringSubmatch(body); m != nil && m[1] == "1" {
		js.LegacyScriptVer = true
		js.Points += pointsLegacyScript
	}

	for _, token := range consoleErrorTokens {
		if strings.Contains(lower, token) {
			js.ConsoleErrors = true
			js.Points += pointsConsoleErrors
			break
		}
	}

	firstScript := strings.Index(lower, "<script src")
	if firstScript == -1 {
		firstScript = strings.Index(lower, `<script type="text/javascript" src`)
	}
	firstStylesheet := strings.Index(lower, `rel="stylesheet"`)
	if firstStylesheet == -1 {
		firstStylesheet = strings.Index(lower, `rel='stylesheet'`)
	}
	if firstScript >= 0 && firstStylesheet >= 0 && firstScript < firstStylesheet {
		js.ScriptOrdering = true
		js.Points += pointsScriptOrder
	}

	for _, m := range stalePluginRe.FindAllStringSubmatch(body, -1) {
		js.StalePlugins = append(js.StalePlugins, m[1])
	}

	return js
}
