package core

import "time"

// TechInfo is the technology fingerprint for a domain.
type TechInfo struct {
	CMS              string `json:"cms,omitempty"`
	WPVersion        string `json:"wp_version,omitempty"`
	JQueryVersion    string `json:"jquery_version,omitempty"`
	PHPBanner        bool   `json:"php_banner"`
	ReadmeAccessible bool   `json:"readme_accessible"`
	WPJSONAccessible bool   `json:"wp_json_accessible"`
}

// SecurityInfo is the transport-security posture for a domain.
type SecurityInfo struct {
	HTTPS          bool     `json:"https"`
	MixedContent   bool     `json:"mixed_content"`
	HSTS           bool     `json:"hsts"`
	InsecureAssets []string `json:"insecure_assets,omitempty"`
}

// SEOInfo accumulates on-page SEO defects with OR semantics across the page
// set: one bad page taints the whole domain for that signal.
type SEOInfo struct {
	TitleMissing    bool `json:"title_missing"`
	MetaDescMissing bool `json:"meta_desc_missing"`
	RobotsNoindex   bool `json:"robots_noindex"`
	Canonical       bool `json:"canonical"`
	MultipleH1      bool `json:"multiple_h1"`
	ThinContent     bool `json:"thin_content"`
}

// PSIResults holds PageSpeed Insights category scores and Core Web Vitals.
// Nil pointer fields mean the metric was absent from the response.
type PSIResults struct {
	Perf          *int     `json:"perf,omitempty"`
	SEO           *int     `json:"seo,omitempty"`
	Accessibility *int     `json:"accessibility,omitempty"`
	BestPractices *int     `json:"best_practices,omitempty"`
	LCPMs         *int     `json:"lcp_ms,omitempty"`
	CLS           *float64 `json:"cls,omitempty"`
	TTFBMs        *int     `json:"ttfb_ms,omitempty"`
	FCPMs         *int     `json:"fcp_ms,omitempty"`
	FIDMs         *int     `json:"fid_ms,omitempty"`
	SpeedIndex    *int     `json:"si,omitempty"`
}

// ContactInfo is the first-found contact data across the page set.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Form    bool   `json:"form"`
	Address string `json:"address,omitempty"`
}

// Spam confidence tiers. The tier travels with the signal as a structured
// value; it is never re-derived from the description text.
const (
	ConfidenceHigh   = 100
	ConfidenceMedium = 60
	ConfidenceLow    = 20
)

// SpamSignal is one confidence-tagged spam/compromise finding.
type SpamSignal struct {
	Description string `json:"description"`
	Confidence  int    `json:"confidence"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// SpamAssessment is the aggregate over a domain's spam signals.
type SpamAssessment struct {
	AvgConfidence  float64 `json:"avg_confidence"`
	HighCount      int     `json:"high_count"`
	MediumCount    int     `json:"medium_count"`
	LowCount       int     `json:"low_count"`
	TotalSignals   int     `json:"total_signals"`
	Recommendation string  `json:"recommendation"`
}

// JSAnalysis is the script-level half of the outdated-site pass. Points are
// additive bonuses folded into the defect score.
type JSAnalysis struct {
	LegacySlider    bool     `json:"legacy_slider"`
	FOUCRisk        bool     `json:"fouc_risk"`
	ConsoleErrors   bool     `json:"console_errors"`
	ScriptOrdering  bool     `json:"script_ordering"`
	LegacyScriptVer bool     `json:"legacy_script_ver"`
	StalePlugins    []string `json:"stale_plugins,omitempty"`
	Points          int      `json:"points"`
}

// OutdatedAnalysis is the HTML/JS heuristic bundle for renovation pitches.
type OutdatedAnalysis struct {
	Builder           string     `json:"builder,omitempty"`
	OldJQuery         bool       `json:"old_jquery"`
	OldBootstrap      bool       `json:"old_bootstrap"`
	CopyrightYear     int        `json:"copyright_year,omitempty"`
	StaleCopyright    bool       `json:"stale_copyright"`
	PoorImageAlt      bool       `json:"poor_image_alt"`
	NoStructuredData  bool       `json:"no_structured_data"`
	NoOpenGraph       bool       `json:"no_open_graph"`
	LocaleBonus       int        `json:"locale_bonus"`
	BrokenLinksCount  int        `json:"broken_links_count"`
	JS                JSAnalysis `json:"js"`
}

// Enrichment carries best-effort DNS/WHOIS context. Absent on lookup
// failure, never a rejection cause.
type Enrichment struct {
	Resolves     bool       `json:"resolves"`
	HasMX        bool       `json:"has_mx"`
	Registrar    string     `json:"registrar,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	DaysToExpiry int        `json:"days_to_expiry,omitempty"`
}

// Lead is the persisted decision unit for one accepted domain. Created once
// by the admission gate; immutable afterwards except the final sort and
// last-checked refresh.
type Lead struct {
	Domain            string       `json:"domain"`
	BrandName         string       `json:"brand_name,omitempty"`
	OwnerValid        bool         `json:"owner_valid"`
	PlatformSubdomain bool         `json:"platform_subdomain"`

	Tech     TechInfo     `json:"tech"`
	Security SecurityInfo `json:"security"`
	SEO      SEOInfo      `json:"seo"`
	Contact  ContactInfo  `json:"contact"`

	Errors      []string     `json:"errors,omitempty"`
	SpamSignals []SpamSignal `json:"spam_signals,omitempty"`

	PSI      *PSIResults       `json:"psi,omitempty"`
	Outdated *OutdatedAnalysis `json:"outdated,omitempty"`
	Enriched *Enrichment       `json:"enriched,omitempty"`

	Score int    `json:"score"`
	Tier  string `json:"tier"`

	EvidenceURLs []string `json:"evidence_urls"`

	// Opportunity-mode fields.
	BestRank       int      `json:"best_rank,omitempty"`
	TopQuery       string   `json:"top_query,omitempty"`
	SEOOpportunity int      `json:"seo_opportunity,omitempty"`
	RankQueries    []string `json:"rank_queries,omitempty"`

	OverrideReason string `json:"performance_override_reason,omitempty"`
	SpamConfidence string `json:"spam_confidence,omitempty"`
	VerticalTag    string `json:"vertical_tag,omitempty"`

	DiscoveredAt time.Time `json:"discovered_at"`
	LastChecked  time.Time `json:"last_checked"`
}

// RunStats is the run-level counter set reported at completion.
type RunStats struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	SearchesPerformed int       `json:"searches_performed"`
	DomainsFound      int       `json:"domains_found"`
	DomainsProbed     int       `json:"domains_probed"`
	LeadsGenerated    int       `json:"leads_generated"`
	DomainsRejected   int       `json:"domains_rejected"`
}
