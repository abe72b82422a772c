package urlutil

import (
	"net/url"
	"strings"

	"github.com/webrenew/leadscout/internal/config"
)

// Normalization is advisory: every function here falls back to returning its
// input (lowercased where applicable) rather than failing.

// ExtractDomain returns the canonical domain for a URL: lowercased host with
// any www. prefix stripped.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	domain := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(domain, "www.")
}

// CanonicalizeURL normalizes a URL: https default scheme, www. stripped,
// trailing slash removed (except root), query and fragment dropped.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Host = strings.TrimPrefix(u.Host, "www.")
	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// RootURL returns scheme://host for a URL with www. removed.
func RootURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := strings.TrimPrefix(u.Host, "www.")
	return scheme + "://" + host
}

// platformSuffixes are hosted-builder hosts whose subdomains belong to the
// platform vendor, not the business running the site.
var platformSuffixes = []string{
	".wixsite.com",
	".squarespace.com",
	".shopify.com",
	".weebly.com",
	".wordpress.com",
	".blogspot.com",
	".tumblr.com",
	".medium.com",
}

// IsPlatformSubdomain reports whether the URL's domain is a subdomain of a
// hosted website builder or blog platform.
func IsPlatformSubdomain(rawURL string) bool {
	domain := ExtractDomain(rawURL)
	for _, suffix := range platformSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	return false
}

// JunkFilter screens search-result URLs against the configured host, TLD,
// extension and path denylists.
type JunkFilter struct {
	hosts      []string
	tlds       []string
	extensions []string
	paths      []string
}

func NewJunkFilter(cfg config.ExcludeConfig) *JunkFilter {
	return &JunkFilter{
		hosts:      cfg.Hosts,
		tlds:       cfg.TLDs,
		extensions: cfg.Extensions,
		paths:      cfg.Paths,
	}
}

func (f *JunkFilter) IsJunk(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, host := range f.hosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	for _, tld := range f.tlds {
		if strings.Contains(lower, tld) {
			return true
		}
	}
	for _, ext := range f.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, path := range f.paths {
		if strings.Contains(lower, path) {
			return true
		}
	}
	return false
}

// SanitizeFilename replaces filesystem-unsafe characters and caps length at
// 100 characters.
func SanitizeFilename(name string) string {
	const unsafe = `<>:"/\|?*`
	out := []rune(name)
	for i, r := range out {
		if strings.ContainsRune(unsafe, r) {
			out[i] = '_'
		}
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return string(out)
}
