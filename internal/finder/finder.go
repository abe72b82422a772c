package finder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/extract"
	"github.com/webrenew/leadscout/internal/metrics"
	"github.com/webrenew/leadscout/internal/scoring"
	"github.com/webrenew/leadscout/internal/search"
	"github.com/webrenew/leadscout/internal/urlutil"
	"github.com/webrenew/leadscout/internal/validate"
)

// Searcher is the search-provider surface the finder consumes.
type Searcher interface {
	Search(ctx context.Context, query, region string, maxPages int) ([]core.SearchResult, error)
}

// Prober is the page-fetcher surface the finder consumes.
type Prober interface {
	ProbeDomain(ctx context.Context, rootURL string) *core.DomainProbe
	ProbeDomains(ctx context.Context, rootURLs []string, maxConcurrent int) []*core.DomainProbe
	SampleBrokenLinks(ctx context.Context, domain string, doc *goquery.Document) int
}

// PerfAnalyzer is the performance-measurement surface the finder consumes.
type PerfAnalyzer interface {
	Analyze(ctx context.Context, target, strategy string) (*core.PSIResults, error)
}

// DomainEnricher adds best-effort DNS/WHOIS context.
type DomainEnricher interface {
	Enrich(domain string) *core.Enrichment
}

// Finder drives the query, search, probe, extract, score, admit pipeline.
// It is the sole writer to the accepted-leads list and the rejected-domains
// map; appends happen only after a domain's processing completes.
type Finder struct {
	cfg      *config.Config
	logger   *zap.Logger
	searcher Searcher
	prober   Prober
	psi      PerfAnalyzer
	enricher DomainEnricher
	analyzer *extract.Analyzer
	scorer   *scoring.Scorer
	gate     *validate.Gate
	queries  *search.QueryManager
	metrics  *metrics.Collector

	opportunityMode bool

	processed map[string]struct{}
	leads     []*core.Lead
	rejected  map[string]string
	stats     core.RunStats
}

// Options carries the injectable collaborators. PSI and Enricher may be nil;
// the corresponding signals are then simply absent.
type Options struct {
	Searcher Searcher
	Prober   Prober
	PSI      PerfAnalyzer
	Enricher DomainEnricher
	Metrics  *metrics.Collector
}

func New(cfg *config.Config, opts Options, logger *zap.Logger) *Finder {
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Finder{
		cfg:       cfg,
		logger:    logger,
		searcher:  opts.Searcher,
		prober:    opts.Prober,
		psi:       opts.PSI,
		enricher:  opts.Enricher,
		analyzer:  extract.NewAnalyzer(logger),
		scorer:    scoring.New(cfg.Scoring, cfg.PageSpeed),
		gate:      validate.NewGate(cfg.Exclude, cfg.Scoring, logger),
		queries:   search.NewQueryManager(),
		metrics:   collector,
		processed: make(map[string]struct{}),
		rejected:  make(map[string]string),
		stats: core.RunStats{
			RunID:     uuid.New().String(),
			StartedAt: time.Now(),
		},
	}
}

// Leads returns the accepted leads, sorted by score after Finalize.
func (f *Finder) Leads() []*core.Lead { return f.leads }

// Rejected returns the rejection audit map.
func (f *Finder) Rejected() map[string]string { return f.rejected }

// Stats returns the run counters.
func (f *Finder) Stats() core.RunStats { return f.stats }

// FindLeads runs the standard defect-scoring pipeline across the catalog
// queries until the lead target is reached or the catalog is exhausted.
func (f *Finder) FindLeads(ctx context.Context, categories, regions []string, maxLeads int) ([]*core.Lead, error) {
	f.opportunityMode = false

	var queries []core.SearchQuery
	if len(categories) > 0 {
		for _, category := range categories {
			queries = append(queries, f.queries.ByCategory(category)...)
		}
	} else {
		queries = f.queries.All()
	}

	f.logger.Info("starting lead run",
		zap.String("run_id", f.stats.RunID),
		zap.Int("queries", len(queries)),
		zap.Int("max_leads", maxLeads),
	)

	for _, query := range queries {
		if len(f.leads) >= maxLeads {
			f.logger.Info("lead target reached, stopping query loop",
				zap.Int("target", maxLeads))
			break
		}
		if err := ctx.Err(); err != nil {
			return f.leads, err
		}

		f.processQuery(ctx, query, regions, maxLeads)

		select {
		case <-ctx.Done():
			return f.leads, ctx.Err()
		case <-time.After(f.cfg.Search.QueryDelay):
		}
	}

	f.Finalize()
	f.logSummary()
	return f.leads, nil
}

func (f *Finder) processQuery(ctx context.Context, query core.SearchQuery, regions []string, maxLeads int) {
	f.logger.Info("running query", zap.String("description", query.Description))

	runOne := func(region string) {
		results, err := f.searcher.Search(ctx, query.Query, region, 0)
		f.metrics.RecordSearch(err)
		f.stats.SearchesPerformed++
		if err != nil {
			f.logger.Warn("query failed",
				zap.String("description", query.Description),
				zap.Error(err),
			)
			return
		}
		f.processResults(ctx, results, maxLeads)
	}

	if len(regions) == 0 {
		runOne("")
		return
	}
	for _, region := range regions {
		if len(f.leads) >= maxLeads {
			return
		}
		runOne(region)
	}
}

func (f *Finder) processResults(ctx context.Context, results []core.SearchResult, maxLeads int) {
	var domains []string
	seen := make(map[string]struct{})
	for _, result := range results {
		if result.IsJunk {
			continue
		}
		domain := urlutil.ExtractDomain(result.Link)
		if _, done := f.processed[domain]; done {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}

	f.stats.DomainsFound += len(domains)
	if len(domains) == 0 {
		return
	}
	f.logger.Info("probing new domains", zap.Int("count", len(domains)))
	f.probeAndProcess(ctx, domains, maxLeads, nil)
}

type rankInfo struct {
	bestRank int
	topQuery string
	queries  []string
}

func (f *Finder) probeAndProcess(ctx context.Context, domains []string, maxLeads int, ranks map[string]*rankInfo) {
	urls := make([]string, 0, len(domains))
	for _, domain := range domains {
		if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
			urls = append(urls, domain)
		} else {
			urls = append(urls, "https://"+domain)
		}
	}

	// The aggregate ceiling is twice the per-probe cap, bounded by how much
	// work there actually is.
	maxConcurrent := f.cfg.Fetch.MaxConcurrent * 2
	if maxConcurrent > len(urls) {
		maxConcurrent = len(urls)
	}

	probes, err := f.batchProbe(ctx, urls, maxConcurrent)
	if err != nil {
		// Degraded path: sequential minimal probes so the run completes in
		// reduced form instead of aborting.
		f.logger.Warn("batch probe failed, falling back to sequential processing",
			zap.Error(err))
		for _, u := range urls {
			if len(f.leads) >= maxLeads {
				return
			}
			domain := urlutil.ExtractDomain(u)
			probe := &core.DomainProbe{
				Domain:  domain,
				RootURL: u,
				Pages:   []core.PageResult{{URL: u}},
			}
			f.processProbe(ctx, probe, ranks)
		}
		return
	}

	for _, probe := range probes {
		if len(f.leads) >= maxLeads {
			return
		}
		f.processProbe(ctx, probe, ranks)
	}
}

func (f *Finder) batchProbe(ctx context.Context, urls []string, maxConcurrent int) (probes []*core.DomainProbe, err error) {
	defer func() {
		if r := recover(); r != nil {
			probes, err = nil, fmt.Errorf("batch probe panicked: %v", r)
		}
	}()
	return f.prober.ProbeDomains(ctx, urls, maxConcurrent), nil
}

// processProbe runs the per-domain pipeline. Any failure inside it is
// contained at this boundary and recorded as a rejection; sibling domains
// are unaffected.
func (f *Finder) processProbe(ctx context.Context, probe *core.DomainProbe, ranks map[string]*rankInfo) {
	domain := probe.Domain

	defer func() {
		if r := recover(); r != nil {
			f.reject(domain, fmt.Sprintf("processing_error: %v", r))
			f.logger.Error("domain processing panicked",
				zap.String("domain", domain),
				zap.Any("panic", r),
			)
		}
	}()

	// Prior-scan exclusion happens before any extraction work is spent.
	// The domain still counts as processed so a later query cannot trigger
	// another probe for it.
	if f.gate.PreviouslyScanned(domain) {
		f.processed[domain] = struct{}{}
		f.reject(domain, "previously_scanned")
		return
	}

	f.processed[domain] = struct{}{}
	f.stats.DomainsProbed++
	f.metrics.RecordProbe(probe.ProbeTime)
	for _, page := range probe.Pages {
		f.metrics.RecordPageFetch(page.OK())
	}

	f.logger.Info("processing domain", zap.String("domain", domain))

	signals := f.analyzer.Analyze(probe)

	platformSubdomain := urlutil.IsPlatformSubdomain(probe.RootURL)
	ownerValid := false
	if !platformSubdomain {
		ownerValid = extract.OwnerValid(probe.Pages, domain)
	}

	lead := &core.Lead{
		Domain:            domain,
		BrandName:         extract.BrandFromPages(probe.Pages, domain),
		OwnerValid:        ownerValid,
		PlatformSubdomain: platformSubdomain,
		Tech:              signals.Tech,
		Security:          signals.Security,
		SEO:               signals.SEO,
		Contact:           signals.Contact,
		Errors:            signals.Errors,
		SpamSignals:       signals.Spam,
		EvidenceURLs:      evidenceURLs(probe),
		DiscoveredAt:      time.Now(),
		LastChecked:       time.Now(),
	}

	if info, ok := ranks[domain]; ok && info != nil {
		lead.BestRank = info.bestRank
		lead.TopQuery = info.topQuery
		lead.RankQueries = info.queries
	}

	// Performance is measured before spam validation so the override can
	// see it even when the spam filter would fire.
	if ownerValid && f.psi != nil {
		psi, err := f.psi.Analyze(ctx, "https://"+domain, "")
		f.metrics.RecordPSI(err)
		if err != nil {
			f.logger.Warn("performance analysis unavailable",
				zap.String("domain", domain),
				zap.Error(err),
			)
		} else {
			lead.PSI = psi
		}
	}

	if ownerValid {
		f.analyzeOutdated(ctx, probe, lead)
	}

	perfOverride := false
	if lead.PSI != nil && lead.PSI.Perf != nil {
		perf := *lead.PSI.Perf
		if perf <= f.cfg.Scoring.PerfOverrideMax {
			perfOverride = true
			lead.OverrideReason = "perf_low"
			f.logger.Info("critical performance, override active",
				zap.String("domain", domain),
				zap.Int("perf", perf),
			)
		} else if perf <= 60 {
			f.logger.Info("moderate performance opportunity",
				zap.String("domain", domain),
				zap.Int("perf", perf),
			)
		}
	}

	lead.VerticalTag = extract.Vertical(lead.BrandName)

	if ownerValid && f.enricher != nil {
		lead.Enriched = f.enricher.Enrich(domain)
	}

	if decision := f.gate.Decide(lead, perfOverride); !decision.Accept {
		f.reject(domain, decision.Reason)
		return
	}

	score, tier := f.scorer.Score(lead, f.opportunityMode)
	lead.Score = score
	lead.Tier = tier
	if f.opportunityMode {
		lead.SEOOpportunity = score
	}

	if len(lead.SpamSignals) > 0 {
		assessment := extract.AssessSpam(lead.SpamSignals)
		lead.SpamConfidence = fmt.Sprintf("%.1f%%", assessment.AvgConfidence)
	}

	if decision := f.gate.Admit(lead, perfOverride); !decision.Accept {
		f.reject(domain, decision.Reason)
		return
	}

	f.leads = append(f.leads, lead)
	f.stats.LeadsGenerated++
	f.metrics.RecordAccepted()
	f.logger.Info("lead accepted",
		zap.String("domain", domain),
		zap.Int("score", score),
		zap.String("tier", tier),
		zap.Bool("override", perfOverride),
	)
}

func (f *Finder) analyzeOutdated(ctx context.Context, probe *core.DomainProbe, lead *core.Lead) {
	var mainPage *core.PageResult
	for i := range probe.Pages {
		if probe.Pages[i].OK() {
			mainPage = &probe.Pages[i]
			break
		}
	}
	if mainPage == nil {
		return
	}

	analysis := extract.Outdated(mainPage.Body, mainPage.URL, f.cfg.Scoring.JQueryVersionBad, f.cfg.Scoring.CopyrightCutoff)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(mainPage.Body)); err == nil {
		analysis.BrokenLinksCount = f.prober.SampleBrokenLinks(ctx, probe.Domain, doc)
	}

	lead.Outdated = &analysis

	if analysis.Builder != "" {
		f.logger.Debug("builder detected",
			zap.String("domain", probe.Domain),
			zap.String("builder", analysis.Builder),
		)
	}
}

func (f *Finder) reject(domain, reason string) {
	if _, already := f.rejected[domain]; already {
		return
	}
	f.rejected[domain] = reason
	f.stats.DomainsRejected++
	f.metrics.RecordRejected(reason)
	f.logger.Info("domain rejected",
		zap.String("domain", domain),
		zap.String("reason", reason),
	)
}

func evidenceURLs(probe *core.DomainProbe) []string {
	var urls []string
	for _, page := range probe.Pages {
		if page.StatusCode > 0 && page.StatusCode < 400 {
			urls = append(urls, page.URL)
			if len(urls) == 3 {
				break
			}
		}
	}
	return urls
}

// Finalize sorts leads by score descending and refreshes the last-checked
// timestamps.
func (f *Finder) Finalize() {
	sort.SliceStable(f.leads, func(i, j int) bool {
		return f.leads[i].Score > f.leads[j].Score
	})
	now := time.Now()
	for _, lead := range f.leads {
		lead.LastChecked = now
	}
}

func (f *Finder) logSummary() {
	tierCounts := make(map[string]int)
	for _, lead := range f.leads {
		tierCounts[lead.Tier]++
	}
	f.logger.Info("run complete",
		zap.String("run_id", f.stats.RunID),
		zap.Duration("runtime", time.Since(f.stats.StartedAt)),
		zap.Int("searches", f.stats.SearchesPerformed),
		zap.Int("domains_probed", f.stats.DomainsProbed),
		zap.Int("leads", f.stats.LeadsGenerated),
		zap.Int("rejected", f.stats.DomainsRejected),
		zap.Any("tiers", tierCounts),
	)
}
