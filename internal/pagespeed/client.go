package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client calls the PageSpeed Insights v5 API with response caching, key
// rotation across provisioned credentials, and exponential backoff with
// jitter on retryable failures. After the retry ceiling the signal is simply
// absent; a missing performance measurement is never a domain-level failure.
type Client struct {
	cfg     config.PageSpeedConfig
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu       sync.Mutex
	keyIndex int
	cache    map[string]cacheEntry
}

type cacheEntry struct {
	result   *core.PSIResults
	cachedAt time.Time
}

func NewClient(cfg config.PageSpeedConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

// SetBaseURL points the client at an alternate endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Analyze measures a URL under the given strategy. Results are cached per
// (url, strategy, category) for the configured TTL.
func (c *Client) Analyze(ctx context.Context, target, strategy string) (*core.PSIResults, error) {
	if strategy == "" {
		strategy = c.cfg.Strategy
	}
	const category = "performance"

	cacheKey := fmt.Sprintf("%s_%s_%s", target, strategy, category)
	if cached := c.lookup(cacheKey); cached != nil {
		return cached, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			c.logger.Debug("retrying pagespeed request",
				zap.String("url", target),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, retryable, err := c.request(ctx, target, strategy, category)
		if err == nil {
			c.store(cacheKey, result)
			return result, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.rotateKey()
	}

	return nil, fmt.Errorf("pagespeed analysis abandoned for %s: %w", target, lastErr)
}

func (c *Client) lookup(key string) *core.PSIResults {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Since(entry.cachedAt) > c.cfg.CacheTTL {
		return nil
	}
	return entry.result
}

func (c *Client) store(key string, result *core.PSIResults) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{result: result, cachedAt: time.Now()}
}

func (c *Client) currentKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cfg.APIKeys) == 0 {
		return ""
	}
	return c.cfg.APIKeys[c.keyIndex%len(c.cfg.APIKeys)]
}

func (c *Client) rotateKey() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cfg.APIKeys) > 1 {
		c.keyIndex = (c.keyIndex + 1) % len(c.cfg.APIKeys)
	}
}

func (c *Client) request(ctx context.Context, target, strategy, category string) (*core.PSIResults, bool, error) {
	params := url.Values{}
	params.Set("url", target)
	params.Set("strategy", strategy)
	params.Set("category", category)
	if key := c.currentKey(); key != "" {
		params.Set("key", key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, isTimeout(err), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusRequestEntityTooLarge
		return nil, retryable, fmt.Errorf("pagespeed API returned status %d", resp.StatusCode)
	}

	var raw psiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, false, fmt.Errorf("decoding pagespeed response: %w", err)
	}
	return parseResponse(&raw), false, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func backoffDelay(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt-1)) * time.Second
	if base > 16*time.Second {
		base = 16 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

type psiResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score *float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
	LoadingExperience struct {
		Metrics map[string]struct {
			Percentile *int `json:"percentile"`
		} `json:"metrics"`
	} `json:"loadingExperience"`
}

func parseResponse(raw *psiResponse) *core.PSIResults {
	results := &core.PSIResults{}

	categoryScore := func(name string) *int {
		cat, ok := raw.LighthouseResult.Categories[name]
		if !ok || cat.Score == nil {
			return nil
		}
		v := int(*cat.Score * 100)
		return &v
	}
	results.Perf = categoryScore("performance")
	results.SEO = categoryScore("seo")
	results.Accessibility = categoryScore("accessibility")
	results.BestPractices = categoryScore("best-practices")

	auditMs := func(name string) *int {
		audit, ok := raw.LighthouseResult.Audits[name]
		if !ok || audit.NumericValue == nil {
			return nil
		}
		v := int(*audit.NumericValue)
		return &v
	}
	results.LCPMs = auditMs("largest-contentful-paint")
	results.FIDMs = auditMs("max-potential-fid")
	results.FCPMs = auditMs("first-contentful-paint")
	results.SpeedIndex = auditMs("speed-index")

	if audit, ok := raw.LighthouseResult.Audits["cumulative-layout-shift"]; ok && audit.NumericValue != nil {
		results.CLS = audit.NumericValue
	}

	if metric, ok := raw.LoadingExperience.Metrics["EXPERIMENTAL_TIME_TO_FIRST_BYTE"]; ok && metric.Percentile != nil {
		results.TTFBMs = metric.Percentile
	} else if metric, ok := raw.LoadingExperience.Metrics["FIRST_CONTENTFUL_PAINT_MS"]; ok && metric.Percentile != nil {
		results.TTFBMs = metric.Percentile
	}

	return results
}

// Summary classifies a measurement against the configured thresholds.
type Summary struct {
	Label    string
	Critical bool
	Issues   []string
}

func (c *Client) Summarize(psi *core.PSIResults) Summary {
	summary := Summary{Label: "unknown"}
	if psi == nil {
		return summary
	}

	if psi.Perf != nil {
		switch {
		case *psi.Perf < c.cfg.PerfBad:
			summary.Label = "poor"
			summary.Critical = true
			summary.Issues = append(summary.Issues,
				fmt.Sprintf("performance score %d/100 (critical)", *psi.Perf))
		case *psi.Perf < 80:
			summary.Label = "needs_improvement"
			summary.Issues = append(summary.Issues,
				fmt.Sprintf("performance score %d/100 (needs improvement)", *psi.Perf))
		default:
			summary.Label = "good"
		}
	}

	if psi.LCPMs != nil && *psi.LCPMs > c.cfg.LCPBadMs {
		summary.Critical = true
		summary.Issues = append(summary.Issues,
			fmt.Sprintf("LCP %dms (should be < %dms)", *psi.LCPMs, c.cfg.LCPBadMs))
	}
	if psi.CLS != nil && *psi.CLS > c.cfg.CLSBad {
		summary.Critical = true
		summary.Issues = append(summary.Issues,
			fmt.Sprintf("CLS %.3f (should be < %.2f)", *psi.CLS, c.cfg.CLSBad))
	}
	if psi.TTFBMs != nil && *psi.TTFBMs > c.cfg.TTFBBadMs {
		summary.Issues = append(summary.Issues,
			fmt.Sprintf("TTFB %dms (should be < %dms)", *psi.TTFBMs, c.cfg.TTFBBadMs))
	}

	return summary
}
