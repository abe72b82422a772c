package finder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/search"
	"github.com/webrenew/leadscout/internal/urlutil"
)

// FindSEOOpportunities runs the rank-window pipeline: generate local-intent
// queries for the area/vertical grid, keep domains whose best organic rank
// falls inside [rankMin, rankMax], and score them under the opportunity
// policy instead of the defect policy.
func (f *Finder) FindSEOOpportunities(ctx context.Context, areas, verticals []string, rankMin, rankMax, maxPages, maxLeads int) ([]*core.Lead, error) {
	f.opportunityMode = true

	queries := search.IntentQueries(areas, verticals)
	f.logger.Info("starting opportunity run",
		zap.String("run_id", f.stats.RunID),
		zap.Int("queries", len(queries)),
		zap.Int("rank_min", rankMin),
		zap.Int("rank_max", rankMax),
	)

	ranks := make(map[string]*rankInfo)

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return f.leads, err
		}

		results, err := f.searcher.Search(ctx, query.Query, "", maxPages)
		f.metrics.RecordSearch(err)
		f.stats.SearchesPerformed++
		if err != nil {
			f.logger.Warn("query failed",
				zap.String("description", query.Description),
				zap.Error(err),
			)
			continue
		}

		for i, result := range results {
			if result.IsJunk {
				continue
			}
			rank := i + 1
			if rank < rankMin || rank > rankMax {
				continue
			}
			domain := urlutil.ExtractDomain(result.Link)
			if domain == "" {
				continue
			}
			info, ok := ranks[domain]
			if !ok {
				info = &rankInfo{bestRank: rank, topQuery: query.Query}
				ranks[domain] = info
			} else if rank < info.bestRank {
				info.bestRank = rank
				info.topQuery = query.Query
			}
			info.queries = append(info.queries, query.Query)
		}

		select {
		case <-ctx.Done():
			return f.leads, ctx.Err()
		case <-time.After(f.cfg.Search.QueryDelay):
		}
	}

	var domains []string
	for domain := range ranks {
		if _, done := f.processed[domain]; done {
			continue
		}
		domains = append(domains, domain)
	}
	f.stats.DomainsFound += len(domains)

	f.logger.Info("rank window collected",
		zap.Int("domains", len(domains)),
	)

	if len(domains) > 0 {
		f.probeAndProcess(ctx, domains, maxLeads, ranks)
	}

	f.Finalize()
	f.logSummary()
	return f.leads, nil
}
