package extract

import (
	"regexp"
	"strings"

	"github.com/webrenew/leadscout/internal/core"
)

var (
	wpGeneratorRe = regexp.MustCompile(`(?i)name=["']generator["'][^>]*content=["'][^"']*wordpress\s*([\d.]+)`)
	jqueryVerRe   = regexp.MustCompile(`(?i)jquery(?:\.min)?\.js\?ver=(\d+\.\d+)`)
)

var phpBannerTokens = []string{
	"warning:", "deprecated:", "fatal error:", "parse error:", "notice:",
}

// Technology fingerprints the CMS and bundled library versions across the
// page set. First-found version strings win; later pages never overwrite.
func Technology(pages []core.PageResult) core.TechInfo {
	var info core.TechInfo

	for _, page := range pages {
		if !page.OK() {
			continue
		}
		lower := strings.ToLower(page.Body)

		if strings.Contains(lower, "wordpress") || strings.Contains(lower, "wp-content") {
			info.CMS = "WordPress"

			if info.WPVersion == "" {
				if m := wpGeneratorRe.FindStringSubmatch(page.Body); m != nil {
					info.WPVersion = m[1]
				}
			}
			if info.JQueryVersion == "" {
				if m := jqueryVerRe.FindStringSubmatch(page.Body); m != nil {
					info.JQueryVersion = m[1]
				}
			}
		}

		for _, token := range phpBannerTokens {
			if strings.Contains(lower, token) {
				info.PHPBanner = true
				break
			}
		}

		if strings.Contains(page.URL, "readme.html") && page.StatusCode == 200 {
			info.ReadmeAccessible = true
		}
		if strings.Contains(page.URL, "wp-json") && page.StatusCode == 200 {
			info.WPJSONAccessible = true
		}
	}

	return info
}
