package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/webrenew/leadscout/internal/core"
)

const thinContentChars = 100

// SEO accumulates on-page defects with OR semantics: a single bad page sets
// the domain-level flag. Deliberately pessimistic. Pages that fail to parse
// are skipped, never fatal.
func SEO(pages []core.PageResult) core.SEOInfo {
	var info core.SEOInfo

	for _, page := range pages {
		if !page.OK() {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
		if err != nil {
			continue
		}

		title := strings.TrimSpace(doc.Find("title").First().Text())
		if title == "" {
			info.TitleMissing = true
		}

		desc, exists := doc.Find(`meta[name="description"]`).First().Attr("content")
		if !exists || strings.TrimSpace(desc) == "" {
			info.MetaDescMissing = true
		}

		robots, _ := doc.Find(`meta[name="robots"]`).First().Attr("content")
		if strings.Contains(strings.ToLower(robots), "noindex") {
			info.RobotsNoindex = true
		}

		if doc.Find(`link[rel="canonical"]`).Length() > 0 {
			info.Canonical = true
		}

		if doc.Find("h1").Length() > 1 {
			info.MultipleH1 = true
		}

		if len(strings.TrimSpace(doc.Text())) < thinContentChars {
			info.ThinContent = true
		}
	}

	return info
}
