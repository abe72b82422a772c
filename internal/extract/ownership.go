package extract

import (
	"strings"

	"github.com/webrenew/leadscout/internal/core"
)

var ownershipTerms = []string{
	"tel:", "mailto:", "contact@", "info@", "hello@",
	"about us", "our story", "company", "business", "services",
	"address", "location", "hours", "appointment", "booking",
	"logo", "brand", "mission", "vision", "values",
}

var directoryTerms = []string{
	"directory", "listing", "find", "search", "compare",
	"reviews", "ratings", "book now", "order online",
}

// IsOwnerSite decides whether a page reads like an owner-operated business
// site rather than a directory or aggregator. Ownership signals must strictly
// outnumber directory signals and reach at least two.
func IsOwnerSite(body, domain string) bool {
	lower := strings.ToLower(body)

	ownerCount := 0
	for _, term := range ownershipTerms {
		if strings.Contains(lower, term) {
			ownerCount++
		}
	}

	directoryCount := 0
	for _, term := range directoryTerms {
		if strings.Contains(lower, term) {
			directoryCount++
		}
	}

	return ownerCount > directoryCount && ownerCount >= 2
}

// OwnerValid checks each successful page in turn and marks the domain
// owner-valid on the first page where the predicate holds.
func OwnerValid(pages []core.PageResult, domain string) bool {
	for _, page := range pages {
		if !page.OK() {
			continue
		}
		if IsOwnerSite(page.Body, domain) {
			return true
		}
	}
	return false
}
