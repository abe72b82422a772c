package extract

import (
	"regexp"
	"strings"

	"github.com/webrenew/leadscout/internal/core"
)

const maxInsecureAssetSamples = 5

var insecureAssetRes = []*regexp.Regexp{
	regexp.MustCompile(`src=["']http://[^"']+["']`),
	regexp.MustCompile(`href=["']http://[^"']+["']`),
}

// Security derives the transport posture for a domain. The HTTPS flag goes
// false if any page's final URL used plaintext transport; mixed content is
// flagged when an HTTPS page references http:// assets.
func Security(pages []core.PageResult) core.SecurityInfo {
	info := core.SecurityInfo{HTTPS: true}

	for _, page := range pages {
		if !page.OK() {
			continue
		}

		if strings.HasPrefix(page.URL, "http://") {
			info.HTTPS = false
		}
		if page.HSTS {
			info.HSTS = true
		}

		if strings.HasPrefix(page.URL, "https://") {
			for _, re := range insecureAssetRes {
				for _, asset := range re.FindAllString(page.Body, -1) {
					info.MixedContent = true
					if len(info.InsecureAssets) < maxInsecureAssetSamples {
						info.InsecureAssets = append(info.InsecureAssets, asset)
					}
				}
			}
		}
	}

	return info
}
