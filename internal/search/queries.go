package search

import (
	"fmt"

	"github.com/webrenew/leadscout/internal/core"
)

// QueryManager holds the static categorized query catalog. The catalog is
// data, not logic; runtime additions are supported via AddCustomQuery.
type QueryManager struct {
	queries []core.SearchQuery
}

func NewQueryManager() *QueryManager {
	return &QueryManager{queries: buildCatalog()}
}

func buildCatalog() []core.SearchQuery {
	return []core.SearchQuery{
		{
			Query: `(inurl:contact OR inurl:about OR inurl:services OR inurl:menu) ` +
				`(site:.com OR site:.net OR site:.org OR site:.biz OR site:.nyc) ` +
				`("tel:" OR "schema.org" OR "json-ld" OR "addressLocality" OR "Powered by WordPress") ` +
				`-site:yelp.* -site:facebook.com -site:instagram.com -site:linkedin.com -site:twitter.com ` +
				`-site:opentable.* -site:resy.* -site:wix.com -site:squarespace.com -site:google.com ` +
				`-filetype:pdf -filetype:xml -filetype:txt -inurl:sitemap -inurl:feed -inurl:tag -inurl:category`,
			Description: "Core owner site discovery - finds business websites with contact info",
			Category:    "core",
		},
		{
			Query: `("viagra" OR "cialis" OR "オンラインカジノ" OR "카지노") ` +
				`(inurl:/blog/ OR inurl:/wp-content/ OR inurl:/news/) ` +
				`-site:reddit.com -site:twitter.com -site:facebook.com`,
			Description: "Hacked sites with pharma/casino spam",
			Category:    "hacked",
		},
		{
			Query:       `site:.com ("viagra" OR "casino") ("Powered by WordPress" OR inurl:wp-content) -site:yelp.*`,
			Description: "WordPress sites with spam content",
			Category:    "hacked",
		},
		{
			Query: `("There has been a critical error on this website." OR "Error establishing a database connection") ` +
				`(site:.com OR site:.net) -wordpress.org`,
			Description: "Sites with critical WordPress errors",
			Category:    "hacked",
		},
		{
			Query:       `inurl:readme.html "WordPress" -wordpress.org`,
			Description: "WordPress sites with accessible readme files",
			Category:    "outdated_wp",
		},
		{
			Query:       `inurl:/wp-includes/js/jquery/jquery.js?ver=1. -site:wordpress.org`,
			Description: "WordPress sites with old jQuery versions",
			Category:    "outdated_wp",
		},
		{
			Query:       `intitle:"Powered by WordPress" (inurl:about OR inurl:contact) -wordpress.org`,
			Description: "WordPress sites with visible generator info",
			Category:    "outdated_wp",
		},
		{
			Query: `("Powered by WordPress" OR "Theme by") (inurl:portfolio OR inurl:services) ` +
				`("tel:" OR address) -site:themeforest.net -site:wordpress.org`,
			Description: "Business WordPress sites for performance analysis",
			Category:    "performance",
		},
		{
			Query: `("restaurant" OR "dentist" OR "lawyer" OR "plumber" OR "electrician") ` +
				`("tel:" OR "address" OR "hours") ("Powered by WordPress" OR inurl:wp-content) ` +
				`-site:yelp.* -site:facebook.com -site:instagram.com`,
			Description: "Local business WordPress sites",
			Category:    "local_business",
		},
		{
			Query: `("contractor" OR "construction" OR "renovation" OR "repair") ` +
				`("contact us" OR "get quote" OR "free estimate") ` +
				`("Powered by WordPress" OR inurl:wp-content) -site:homeadvisor.com -site:angie.com`,
			Description: "Contractor and service business sites",
			Category:    "contractors",
		},
		{
			Query: `("doctor" OR "physician" OR "clinic" OR "medical") ` +
				`("appointment" OR "contact" OR "hours") ` +
				`("Powered by WordPress" OR inurl:wp-content) -site:healthgrades.com -site:zocdoc.com`,
			Description: "Healthcare provider websites",
			Category:    "healthcare",
		},
	}
}

func (m *QueryManager) ByCategory(category string) []core.SearchQuery {
	var out []core.SearchQuery
	for _, q := range m.queries {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

func (m *QueryManager) All() []core.SearchQuery {
	return m.queries
}

func (m *QueryManager) AddCustomQuery(query, description, category string) {
	m.queries = append(m.queries, core.SearchQuery{
		Query:       query,
		Description: description,
		Category:    category,
	})
}

// IntentQueries generates the opportunity-mode query grid for area and
// vertical combinations.
func IntentQueries(areas, verticals []string) []core.SearchQuery {
	var out []core.SearchQuery
	for _, area := range areas {
		for _, vertical := range verticals {
			templates := []string{
				fmt.Sprintf(`"%s" "%s" "contact us" "hours" "menu"`, area, vertical),
				fmt.Sprintf(`"%s" "%s" "reservations" "appointments" "services"`, area, vertical),
				fmt.Sprintf(`"%s" "%s" "phone" "address" "location"`, area, vertical),
				fmt.Sprintf(`"%s" "%s" "reviews" "best" "top"`, area, vertical),
			}
			for _, tmpl := range templates {
				desc := tmpl
				if len(desc) > 50 {
					desc = desc[:50] + "..."
				}
				out = append(out, core.SearchQuery{
					Query:       tmpl,
					Description: fmt.Sprintf("%s %s - %s", area, vertical, desc),
					Category:    "seo_opportunity",
				})
			}
		}
	}
	return out
}
