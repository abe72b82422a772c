package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Search    SearchConfig
	PageSpeed PageSpeedConfig
	Fetch     FetchConfig
	Scoring   ScoringConfig
	Exclude   ExcludeConfig
	Reports   ReportsConfig
	Metrics   MetricsConfig
}

type SearchConfig struct {
	APIKey             string
	EngineID           string
	ResultsPerPage     int
	MaxPages           int
	JunkRatioThreshold float64
	QueryDelay         time.Duration
}

type PageSpeedConfig struct {
	APIKeys        []string
	Strategy       string
	MaxRetries     int
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	PerfBad        int
	LCPBadMs       int
	CLSBad         float64
	TTFBBadMs      int
}

type FetchConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxBytes       int64
	PerHostRPS     float64
	GlobalRPS      float64
	MaxPerDomain   int
	MaxConcurrent  int
	UserAgent      string
}

type ScoringConfig struct {
	ScoreMin         int
	TierAMin         int
	TierBMin         int
	WPVersionBad     string
	JQueryVersionBad string
	CopyrightCutoff  int
	PerfOverrideMax  int
}

type ExcludeConfig struct {
	Hosts             []string
	TLDs              []string
	Extensions        []string
	Paths             []string
	PreviouslyScanned []string
}

type ReportsConfig struct {
	Dir string
}

type MetricsConfig struct {
	ListenAddr string
}

// ProbePaths is the fixed path set fetched for every domain. Order is not
// significant; results come back as fetches complete.
var ProbePaths = []string{
	"/", "/about", "/contact", "/services", "/blog",
	"/wp-content/", "/readme.html", "/feed", "/wp-json/",
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("LEADSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("search.resultsperpage", 10)
	viper.SetDefault("search.maxpages", 2)
	viper.SetDefault("search.junkratiothreshold", 0.4)
	viper.SetDefault("search.querydelay", "2s")

	viper.SetDefault("pagespeed.strategy", "mobile")
	viper.SetDefault("pagespeed.maxretries", 4)
	viper.SetDefault("pagespeed.requesttimeout", "30s")
	viper.SetDefault("pagespeed.cachettl", "24h")
	viper.SetDefault("pagespeed.perfbad", 50)
	viper.SetDefault("pagespeed.lcpbadms", 10000)
	viper.SetDefault("pagespeed.clsbad", 0.25)
	viper.SetDefault("pagespeed.ttfbbadms", 800)

	viper.SetDefault("fetch.connecttimeout", "5s")
	viper.SetDefault("fetch.readtimeout", "10s")
	viper.SetDefault("fetch.maxbytes", 1_500_000)
	viper.SetDefault("fetch.perhostrps", 1.0)
	viper.SetDefault("fetch.globalrps", 5.0)
	viper.SetDefault("fetch.maxperdomain", 6)
	viper.SetDefault("fetch.maxconcurrent", 5)
	viper.SetDefault("fetch.useragent",
		"Mozilla/5.0 (compatible; LeadScout/1.0; +https://webrenew.example/bot)")

	viper.SetDefault("scoring.scoremin", 40)
	viper.SetDefault("scoring.tieramin", 80)
	viper.SetDefault("scoring.tierbmin", 60)
	viper.SetDefault("scoring.wpversionbad", "5.8")
	viper.SetDefault("scoring.jqueryversionbad", "2.0")
	viper.SetDefault("scoring.copyrightcutoff", 2021)
	viper.SetDefault("scoring.perfoverridemax", 45)

	viper.SetDefault("exclude.hosts", []string{
		"yelp", "facebook", "instagram", "linkedin", "opentable", "resy",
		"tockhq", "google", "archive.org", "github", "tripadvisor", "zomato",
		"grubhub", "doordash", "uber", "lyft",
	})
	viper.SetDefault("exclude.tlds", []string{".edu", ".gov", ".ac.", ".mil", ".int"})
	viper.SetDefault("exclude.extensions", []string{
		".pdf", ".xml", ".txt", ".gz", ".zip", ".rar", ".doc", ".docx",
	})
	viper.SetDefault("exclude.paths", []string{
		"sitemap", "/feed", "/tag/", "/category/", "/author/", "nav.php", "go.php",
		"/20/", "/2023/", "/2022/", "/2021/", "/2020/",
	})

	viper.SetDefault("reports.dir", "reports")
	viper.SetDefault("metrics.listenaddr", "")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Credentials come from the environment, never from the config file.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if id := os.Getenv("GOOGLE_CSE_ID"); id != "" {
		cfg.Search.EngineID = id
	}
	if keys := os.Getenv("PSI_API_KEYS"); keys != "" {
		cfg.PageSpeed.APIKeys = splitAndTrim(keys)
	} else if cfg.Search.APIKey != "" && len(cfg.PageSpeed.APIKeys) == 0 {
		cfg.PageSpeed.APIKeys = []string{cfg.Search.APIKey}
	}

	return &cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
