package crawler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	linkSampleSize  = 10
	linkHeadTimeout = 5 * time.Second
)

// SampleBrokenLinks collects same-host anchor targets from a parsed page,
// samples up to ten of them, and counts how many fail a lightweight HEAD
// check. This is a bounded estimate by design, not an exhaustive audit.
func (c *Crawler) SampleBrokenLinks(ctx context.Context, domain string, doc *goquery.Document) int {
	if doc == nil {
		return 0
	}

	seen := make(map[string]struct{})
	var candidates []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}

		target := href
		if strings.HasPrefix(href, "/") {
			target = "https://" + domain + href
		}

		u, err := url.Parse(target)
		if err != nil || u.Host == "" {
			return
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if host != domain {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		candidates = append(candidates, target)
	})

	if len(candidates) > linkSampleSize {
		candidates = candidates[:linkSampleSize]
	}

	broken := 0
	for _, link := range candidates {
		if !c.linkAlive(ctx, link) {
			broken++
		}
	}

	if broken > 0 {
		c.logger.Debug("broken internal links sampled",
			zap.String("domain", domain),
			zap.Int("broken", broken),
			zap.Int("sampled", len(candidates)),
		)
	}
	return broken
}

func (c *Crawler) linkAlive(ctx context.Context, link string) bool {
	ctx, cancel := context.WithTimeout(ctx, linkHeadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < 400
}
