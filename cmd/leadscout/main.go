package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/crawler"
	"github.com/webrenew/leadscout/internal/enrich"
	"github.com/webrenew/leadscout/internal/export"
	"github.com/webrenew/leadscout/internal/finder"
	"github.com/webrenew/leadscout/internal/metrics"
	"github.com/webrenew/leadscout/internal/pagespeed"
	"github.com/webrenew/leadscout/internal/search"
	"github.com/webrenew/leadscout/internal/urlutil"
)

func main() {
	var (
		mode       = flag.String("mode", "leads", "run mode: leads or opportunities")
		maxLeads   = flag.Int("max-leads", 50, "stop after this many accepted leads")
		categories = flag.String("categories", "", "comma-separated query categories (empty = all)")
		regions    = flag.String("regions", "", "comma-separated region qualifiers appended to queries")
		areas      = flag.String("areas", "", "comma-separated areas for opportunity mode")
		verticals  = flag.String("verticals", "", "comma-separated verticals for opportunity mode")
		rankMin    = flag.Int("rank-min", 4, "lowest organic rank kept in opportunity mode")
		rankMax    = flag.Int("rank-max", 30, "highest organic rank kept in opportunity mode")
	)
	flag.Parse()

	// Missing .env is fine; credentials may come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if cfg.Search.APIKey == "" || cfg.Search.EngineID == "" {
		logger.Fatal("GOOGLE_API_KEY and GOOGLE_CSE_ID must be set")
	}

	collector := metrics.NewCollector()
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			logger.Info("metrics listener started", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	junkFilter := urlutil.NewJunkFilter(cfg.Exclude)

	var psi finder.PerfAnalyzer
	if len(cfg.PageSpeed.APIKeys) > 0 {
		psi = pagespeed.NewClient(cfg.PageSpeed, logger)
	} else {
		logger.Warn("no PageSpeed API keys configured, performance signals disabled")
	}

	f := finder.New(cfg, finder.Options{
		Searcher: search.NewClient(cfg.Search, junkFilter, logger),
		Prober:   crawler.New(cfg.Fetch, logger),
		PSI:      psi,
		Enricher: enrich.New(cfg.Fetch.ConnectTimeout, logger),
		Metrics:  collector,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutdown signal received, finishing current domain")
		cancel()
	}()

	switch *mode {
	case "leads":
		_, err = f.FindLeads(ctx, splitList(*categories), splitList(*regions), *maxLeads)
	case "opportunities":
		areaList := splitList(*areas)
		verticalList := splitList(*verticals)
		if len(areaList) == 0 || len(verticalList) == 0 {
			logger.Fatal("opportunity mode requires -areas and -verticals")
		}
		_, err = f.FindSEOOpportunities(ctx, areaList, verticalList, *rankMin, *rankMax, cfg.Search.MaxPages, *maxLeads)
	default:
		logger.Fatal("unknown mode", zap.String("mode", *mode))
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("run ended with error", zap.Error(err))
	}

	exporter := export.New(cfg.Reports.Dir, logger)
	written := exporter.WriteAll(f.Leads(), f.Rejected(), f.Stats())
	logger.Info("reports written", zap.Strings("files", written))
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
