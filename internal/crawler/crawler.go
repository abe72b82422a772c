package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/urlutil"
)

// Crawler fetches the fixed probe-path set for candidate domains. Transport
// failures never escalate: every configured path yields a PageResult, with
// status 0 and an error string when the request itself failed.
type Crawler struct {
	cfg    config.FetchConfig
	client *http.Client
	logger *zap.Logger

	global *rate.Limiter

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

func New(cfg config.FetchConfig, logger *zap.Logger) *Crawler {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   cfg.MaxPerDomain,
	}

	return &Crawler{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		logger: logger,
		global: rate.NewLimiter(rate.Limit(cfg.GlobalRPS), int(cfg.GlobalRPS)+1),
		hosts:  make(map[string]*rate.Limiter),
	}
}

func (c *Crawler) hostLimiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(c.cfg.PerHostRPS), 1)
		c.hosts[host] = lim
	}
	return lim
}

// ProbeDomain fetches every configured probe path under rootURL and returns
// the aggregate. Page fetches within one probe run concurrently, bounded by
// the per-domain cap.
func (c *Crawler) ProbeDomain(ctx context.Context, rootURL string) *core.DomainProbe {
	start := time.Now()

	probe := &core.DomainProbe{
		Domain:  urlutil.ExtractDomain(rootURL),
		RootURL: rootURL,
	}

	sem := make(chan struct{}, c.cfg.MaxPerDomain)
	results := make(chan core.PageResult, len(config.ProbePaths))

	var wg sync.WaitGroup
	for _, path := range config.ProbePaths {
		pageURL, err := joinURL(rootURL, path)
		if err != nil {
			probe.Errors = append(probe.Errors, fmt.Sprintf("bad probe path %q: %v", path, err))
			continue
		}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- c.fetchPage(ctx, u)
		}(pageURL)
	}

	wg.Wait()
	close(results)

	for page := range results {
		probe.Pages = append(probe.Pages, page)
		probe.TotalPages++
		if page.StatusCode > 0 && page.StatusCode < 400 {
			probe.SuccessfulPages++
		}
	}

	probe.ProbeTime = time.Since(start)
	return probe
}

// ProbeDomains probes many root URLs under a bounded worker pool and returns
// one probe per URL, in completion order.
func (c *Crawler) ProbeDomains(ctx context.Context, rootURLs []string, maxConcurrent int) []*core.DomainProbe {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	sem := make(chan struct{}, maxConcurrent)
	out := make([]*core.DomainProbe, len(rootURLs))

	var wg sync.WaitGroup
	for i, rootURL := range rootURLs {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[idx] = c.ProbeDomain(ctx, u)
		}(i, rootURL)
	}
	wg.Wait()

	probes := make([]*core.DomainProbe, 0, len(out))
	for _, p := range out {
		if p != nil {
			probes = append(probes, p)
		}
	}
	return probes
}

func (c *Crawler) fetchPage(ctx context.Context, pageURL string) core.PageResult {
	start := time.Now()

	result := core.PageResult{URL: pageURL}

	if host := hostOf(pageURL); host != "" {
		if err := c.hostLimiter(host).Wait(ctx); err != nil {
			result.Error = err.Error()
			result.LoadTime = time.Since(start)
			return result
		}
	}
	if err := c.global.Wait(ctx); err != nil {
		result.Error = err.Error()
		result.LoadTime = time.Since(start)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		result.Error = err.Error()
		result.LoadTime = time.Since(start)
		return result
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		result.Error = classifyFetchError(err)
		result.LoadTime = time.Since(start)
		c.logger.Debug("page fetch failed",
			zap.String("url", pageURL),
			zap.String("error", result.Error),
		)
		return result
	}
	defer resp.Body.Close()

	// Oversized bodies are truncated, not rejected; metadata is still
	// recorded for the page.
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes))

	result.StatusCode = resp.StatusCode
	result.Body = string(body)
	result.ContentType = resp.Header.Get("Content-Type")
	result.SizeBytes = len(body)
	result.HSTS = resp.Header.Get("Strict-Transport-Security") != ""
	result.LoadTime = time.Since(start)
	if readErr != nil {
		result.Error = readErr.Error()
	}

	// Record the final URL after redirects so the security extractor sees
	// the transport actually used.
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}

	return result
}

func classifyFetchError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

func joinURL(root, path string) (string, error) {
	base, err := url.Parse(root)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
