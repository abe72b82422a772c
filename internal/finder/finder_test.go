package finder

import (
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
)

type stubSearcher struct {
	results []core.SearchResult
	err     error
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, _, _ string, _ int) ([]core.SearchResult, error) {
	s.calls++
	return s.results, s.err
}

type stubProber struct {
	probes map[string]*core.DomainProbe
	probed []string
}

func (s *stubProber) ProbeDomain(_ context.Context, rootURL string) *core.DomainProbe {
	for _, p := range s.probes {
		if p.RootURL == rootURL {
			return p
		}
	}
	return &core.DomainProbe{RootURL: rootURL}
}

func (s *stubProber) ProbeDomains(_ context.Context, rootURLs []string, _ int) []*core.DomainProbe {
	var out []*core.DomainProbe
	for _, u := range rootURLs {
		s.probed = append(s.probed, u)
		out = append(out, s.ProbeDomain(context.Background(), u))
	}
	return out
}

func (s *stubProber) SampleBrokenLinks(context.Context, string, *goquery.Document) int {
	return 0
}

type stubPSI struct {
	perf int
	err  error
}

func (s *stubPSI) Analyze(context.Context, string, string) (*core.PSIResults, error) {
	if s.err != nil {
		return nil, s.err
	}
	perf := s.perf
	return &core.PSIResults{Perf: &perf}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			MaxPages:           2,
			ResultsPerPage:     10,
			JunkRatioThreshold: 0.4,
			QueryDelay:         time.Millisecond,
		},
		Fetch: config.FetchConfig{
			MaxConcurrent: 5,
			MaxPerDomain:  6,
		},
		Scoring: config.ScoringConfig{
			ScoreMin:         40,
			TierAMin:         80,
			TierBMin:         60,
			WPVersionBad:     "5.8",
			JQueryVersionBad: "2.0",
			CopyrightCutoff:  2021,
			PerfOverrideMax:  45,
		},
		PageSpeed: config.PageSpeedConfig{
			PerfBad:   50,
			LCPBadMs:  4000,
			TTFBBadMs: 1500,
		},
	}
}

// ownerPage carries enough ownership terms to pass the owner-site predicate
// and enough defects to clear the score floor.
const ownerPage = `<html><head><title>Acme Dental Clinic</title></head><body>
	<div class="et_pb_section">About Us: our services, hours and location.</div>
	<a href="tel:5550100">Call</a>
	<a href="mailto:info@acmedental.com">Email</a>
	<img src="http://cdn.acmedental.com/logo.png">
	<p>Serving the neighborhood since Copyright 2016.</p>
</body></html>`

func probeFor(domain string, body string) *core.DomainProbe {
	return &core.DomainProbe{
		Domain:  domain,
		RootURL: "https://" + domain,
		Pages: []core.PageResult{
			{URL: "https://" + domain + "/", StatusCode: 200, Body: body},
		},
	}
}

func newTestFinder(t *testing.T, cfg *config.Config, opts Options) *Finder {
	t.Helper()
	return New(cfg, opts, zap.NewNop())
}

func TestFindLeadsAcceptsScoredDomain(t *testing.T) {
	searcher := &stubSearcher{results: []core.SearchResult{
		{Link: "https://acmedental.com/", Title: "Acme Dental"},
	}}
	prober := &stubProber{probes: map[string]*core.DomainProbe{
		"acmedental.com": probeFor("acmedental.com", ownerPage),
	}}

	f := newTestFinder(t, testConfig(), Options{
		Searcher: searcher,
		Prober:   prober,
		PSI:      &stubPSI{perf: 30},
	})

	leads, err := f.FindLeads(context.Background(), nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "acmedental.com", lead.Domain)
	assert.Equal(t, "Acme Dental Clinic", lead.BrandName)
	assert.True(t, lead.OwnerValid)
	assert.Equal(t, "medical_beauty", lead.VerticalTag)
	assert.Equal(t, "perf_low", lead.OverrideReason)
	assert.NotEmpty(t, lead.EvidenceURLs)
	assert.Greater(t, lead.Score, 0)
	assert.NotEmpty(t, lead.Tier)
}

func TestFindLeadsPartitionInvariant(t *testing.T) {
	// Every probed domain lands in exactly one of accepted or rejected.
	searcher := &stubSearcher{results: []core.SearchResult{
		{Link: "https://acmedental.com/"},
		{Link: "https://mybiz.wixsite.com/home"},
		{Link: "https://spamhole.com/"},
		{Link: "https://www.yelp.com/biz/x", IsJunk: true},
	}}
	prober := &stubProber{probes: map[string]*core.DomainProbe{
		"acmedental.com": probeFor("acmedental.com", ownerPage),
		"mybiz.wixsite.com": probeFor("mybiz.wixsite.com", ownerPage),
		"spamhole.com": probeFor("spamhole.com",
			`<div style="display:none">cheap viagra casino</div>`),
	}}

	f := newTestFinder(t, testConfig(), Options{
		Searcher: searcher,
		Prober:   prober,
		PSI:      &stubPSI{perf: 30},
	})

	leads, err := f.FindLeads(context.Background(), nil, nil, 10)
	require.NoError(t, err)

	rejected := f.Rejected()
	accepted := make(map[string]bool)
	for _, lead := range leads {
		accepted[lead.Domain] = true
		_, alsoRejected := rejected[lead.Domain]
		assert.False(t, alsoRejected, "%s in both partitions", lead.Domain)
	}

	assert.True(t, accepted["acmedental.com"])
	assert.Equal(t, "platform_subdomain", rejected["mybiz.wixsite.com"])
	assert.Equal(t, "hidden_spam", rejected["spamhole.com"])

	// The junk search result never reaches the probe stage.
	_, junkProbed := rejected["yelp.com"]
	assert.False(t, junkProbed)

	stats := f.Stats()
	assert.Equal(t, 3, stats.DomainsProbed)
	assert.Equal(t, 1, stats.LeadsGenerated)
	assert.Equal(t, 2, stats.DomainsRejected)
}

func TestFindLeadsPreviouslyScannedShortCircuit(t *testing.T) {
	searcher := &stubSearcher{results: []core.SearchResult{
		{Link: "https://seenbefore.com/"},
	}}
	prober := &stubProber{probes: map[string]*core.DomainProbe{
		"seenbefore.com": probeFor("seenbefore.com", ownerPage),
	}}

	cfg := testConfig()
	cfg.Exclude.PreviouslyScanned = []string{"seenbefore.com"}

	f := newTestFinder(t, cfg, Options{Searcher: searcher, Prober: prober})

	leads, err := f.FindLeads(context.Background(), nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, "previously_scanned", f.Rejected()["seenbefore.com"])
	assert.Equal(t, 0, f.Stats().DomainsProbed)

	// The domain keeps surfacing in later queries but is only probed once.
	require.Greater(t, searcher.calls, 1)
	assert.Equal(t, []string{"https://seenbefore.com"}, prober.probed)
}

func TestFindLeadsLowScoreRejected(t *testing.T) {
	// A healthy HTTPS site with no defects cannot clear the score floor.
	healthy := `<html><head><title>Acme Dental Clinic</title>
		<meta name="description" content="Family dentistry since 1998.">
		<script type="application/ld+json">{}</script>
		<meta property="og:title" content="Acme"></head><body>
		<a href="tel:5550100">Call</a> <a href="mailto:a@b.com">Email</a>
		About Us, services and hours for the practice.
	</body></html>`

	searcher := &stubSearcher{results: []core.SearchResult{
		{Link: "https://healthysite.com/"},
	}}
	prober := &stubProber{probes: map[string]*core.DomainProbe{
		"healthysite.com": probeFor("healthysite.com", healthy),
	}}

	f := newTestFinder(t, testConfig(), Options{
		Searcher: searcher,
		Prober:   prober,
		PSI:      &stubPSI{perf: 95},
	})

	leads, err := f.FindLeads(context.Background(), nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Contains(t, f.Rejected()["healthysite.com"], "low_score")
}

func TestFindLeadsStopsAtTarget(t *testing.T) {
	searcher := &stubSearcher{results: []core.SearchResult{
		{Link: "https://acmedental.com/"},
	}}
	prober := &stubProber{probes: map[string]*core.DomainProbe{
		"acmedental.com": probeFor("acmedental.com", ownerPage),
	}}

	f := newTestFinder(t, testConfig(), Options{
		Searcher: searcher,
		Prober:   prober,
		PSI:      &stubPSI{perf: 30},
	})

	leads, err := f.FindLeads(context.Background(), nil, nil, 1)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
	// The catalog has many queries; the target cuts the loop after the first.
	assert.Equal(t, 1, searcher.calls)
}

func TestPerfOverrideBoundary(t *testing.T) {
	run := func(perf int) *core.Lead {
		searcher := &stubSearcher{results: []core.SearchResult{
			{Link: "https://acmedental.com/"},
		}}
		prober := &stubProber{probes: map[string]*core.DomainProbe{
			"acmedental.com": probeFor("acmedental.com", ownerPage),
		}}
		f := newTestFinder(t, testConfig(), Options{
			Searcher: searcher,
			Prober:   prober,
			PSI:      &stubPSI{perf: perf},
		})
		leads, err := f.FindLeads(context.Background(), nil, nil, 1)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		return leads[0]
	}

	// At the threshold the override is active; one point above it is not.
	assert.Equal(t, "perf_low", run(45).OverrideReason)
	assert.Empty(t, run(46).OverrideReason)
}

func TestFindLeadsSortsByScore(t *testing.T) {
	f := newTestFinder(t, testConfig(), Options{
		Searcher: &stubSearcher{},
		Prober:   &stubProber{},
	})

	f.leads = []*core.Lead{
		{Domain: "low.com", Score: 45},
		{Domain: "high.com", Score: 90},
		{Domain: "mid.com", Score: 60},
	}
	f.Finalize()

	assert.Equal(t, "high.com", f.leads[0].Domain)
	assert.Equal(t, "mid.com", f.leads[1].Domain)
	assert.Equal(t, "low.com", f.leads[2].Domain)
}

func TestFindSEOOpportunitiesRankWindow(t *testing.T) {
	// Ten results; only ranks 4 through 8 fall inside the window.
	var results []core.SearchResult
	for i := 1; i <= 10; i++ {
		results = append(results, core.SearchResult{
			Link: "https://site" + string(rune('a'+i-1)) + ".com/",
		})
	}

	probes := make(map[string]*core.DomainProbe)
	for i := 1; i <= 10; i++ {
		d := "site" + string(rune('a'+i-1)) + ".com"
		probes[d] = probeFor(d, ownerPage)
	}

	f := newTestFinder(t, testConfig(), Options{
		Searcher: &stubSearcher{results: results},
		Prober:   &stubProber{probes: probes},
		PSI:      &stubPSI{perf: 30},
	})

	leads, err := f.FindSEOOpportunities(context.Background(),
		[]string{"brooklyn"}, []string{"dentist"}, 4, 8, 1, 100)
	require.NoError(t, err)

	assert.Len(t, leads, 5)
	for _, lead := range leads {
		assert.GreaterOrEqual(t, lead.BestRank, 4)
		assert.LessOrEqual(t, lead.BestRank, 8)
		assert.NotEmpty(t, lead.TopQuery)
		assert.NotEmpty(t, lead.RankQueries)
		assert.Equal(t, lead.Score, lead.SEOOpportunity)
	}
}
