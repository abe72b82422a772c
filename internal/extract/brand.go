package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/webrenew/leadscout/internal/core"
)

var brandSuffixes = []string{
	" - Home", " | Home", " - Welcome", " | Welcome",
	" - Official Site", " | Official Site", " - Official Website",
	" | Official Website", " - Website", " | Website",
}

var genericTitles = map[string]struct{}{
	"Home": {}, "Welcome": {}, "Official Site": {}, "Official Website": {},
	"Website": {}, "Site": {}, "Homepage": {},
}

// BrandName derives a display name from a page title, falling back to the
// domain when the title is generic.
func BrandName(title, domain string) string {
	if title == "" {
		return domain
	}

	brand := title
	for _, suffix := range brandSuffixes {
		if strings.HasSuffix(brand, suffix) {
			brand = brand[:len(brand)-len(suffix)]
			break
		}
	}

	brand = strings.TrimSpace(brand)
	if _, generic := genericTitles[brand]; generic {
		return domain
	}
	return brand
}

// BrandFromPages pulls the first successful page's title through BrandName.
func BrandFromPages(pages []core.PageResult, domain string) string {
	for _, page := range pages {
		if !page.OK() {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
		if err != nil {
			continue
		}
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			return BrandName(title, domain)
		}
	}
	return ""
}

// businessTerms are category terms whose presence in a brand name marks a
// recognizable legitimate business. Hand-tuned configuration data, not logic.
var businessTerms = []string{
	// Medical and wellness
	"dermatology", "medspa", "salon", "dental", "spa", "wellness", "fitness",
	"medical", "aesthetics", "cosmetic", "plastic surgery", "orthodontist",
	"orthodontic", "lasik", "eye surgery", "vision correction", "ophthalmologist",
	"optometrist", "chiropractor", "chiropractic",
	// Legal and professional
	"law firm", "attorney", "law office", "legal practice", "lawyer", "cpa",
	"accountant", "accounting firm", "tax preparation", "tax services",
	// Hospitality and food
	"catering", "restaurant", "dining", "fine dining", "wine bar", "cocktail bar",
	"bar", "hotel", "boutique hotel", "luxury hotel",
	// Events and venues
	"event venue", "wedding venue", "party venue", "venue", "events",
	// Retail and luxury
	"jeweler", "jewelry store", "fine jewelry", "gallery", "art gallery",
	// Home services
	"remodeler", "home remodeling", "kitchen remodeling", "bathroom remodeling",
	"hvac", "heating and cooling", "air conditioning", "roofing", "roof repair",
	// Automotive
	"auto repair", "car repair", "automotive service", "dealership",
	// General
	"clinic", "specialist", "practice", "studio", "center", "group",
}

// IsLegitimateBusiness reports whether the brand name contains a recognized
// business-category term.
func IsLegitimateBusiness(brand string) bool {
	lower := strings.ToLower(brand)
	for _, term := range businessTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

var verticalTerms = []struct {
	tag   string
	terms []string
}{
	{"medical_beauty", []string{
		"dermatology", "medspa", "salon", "dental", "orthodontist", "orthodontic",
		"lasik", "eye surgery", "vision correction", "ophthalmologist", "optometrist",
		"chiropractor", "chiropractic", "clinic", "medical", "aesthetics", "cosmetic",
		"plastic surgery", "spa", "wellness", "fitness", "beauty",
	}},
	{"restaurant_hospitality", []string{
		"restaurant", "dining", "fine dining", "wine bar", "cocktail bar", "bar",
		"hotel", "boutique hotel", "luxury hotel", "catering", "venue", "events",
		"wedding venue", "party venue",
	}},
	{"retail_luxury", []string{
		"jeweler", "jewelry store", "fine jewelry", "gallery", "art gallery",
		"store", "shop", "boutique",
	}},
	{"home_services", []string{
		"remodeler", "home remodeling", "kitchen remodeling", "bathroom remodeling",
		"hvac", "heating and cooling", "air conditioning", "roofing", "roof repair",
	}},
	{"automotive", []string{
		"auto repair", "car repair", "automotive service", "dealership",
	}},
	{"legal_professional", []string{
		"law firm", "attorney", "law office", "legal practice", "lawyer", "cpa",
		"accountant", "accounting firm", "tax preparation", "tax services",
	}},
}

// Vertical tags the business vertical from the brand name. First matching
// category wins; unknown brands tag as "unknown", unmatched as "other".
func Vertical(brand string) string {
	if brand == "" {
		return "unknown"
	}
	lower := strings.ToLower(brand)
	for _, v := range verticalTerms {
		for _, term := range v.terms {
			if strings.Contains(lower, term) {
				return v.tag
			}
		}
	}
	return "other"
}
