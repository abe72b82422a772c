package enrich

import (
	"fmt"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/core"
)

const resolver = "8.8.8.8:53"

// Enricher attaches best-effort DNS and WHOIS context to a lead. Lookup
// failures yield absent fields, never a domain rejection.
type Enricher struct {
	timeout time.Duration
	logger  *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{timeout: timeout, logger: logger}
}

func (e *Enricher) Enrich(domain string) *core.Enrichment {
	enrichment := &core.Enrichment{}

	if answers, err := e.query(domain, dns.TypeA); err == nil && answers > 0 {
		enrichment.Resolves = true
	}
	if answers, err := e.query(domain, dns.TypeMX); err == nil && answers > 0 {
		enrichment.HasMX = true
	}

	e.addWhois(domain, enrichment)
	return enrichment
}

func (e *Enricher) query(domain string, recordType uint16) (int, error) {
	c := new(dns.Client)
	c.Timeout = e.timeout

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), recordType)

	r, _, err := c.Exchange(m, resolver)
	if err != nil {
		return 0, err
	}
	if r.Rcode != dns.RcodeSuccess {
		return 0, fmt.Errorf("dns query failed with code %s", dns.RcodeToString[r.Rcode])
	}
	return len(r.Answer), nil
}

func (e *Enricher) addWhois(domain string, enrichment *core.Enrichment) {
	raw, err := whois.Whois(domain)
	if err != nil {
		e.logger.Debug("whois lookup failed", zap.String("domain", domain), zap.Error(err))
		return
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		e.logger.Debug("whois parse failed", zap.String("domain", domain), zap.Error(err))
		return
	}

	enrichment.Registrar = parsed.Registrar.Name

	if parsed.Domain.CreatedDate != "" {
		if t, err := parseWhoisDate(parsed.Domain.CreatedDate); err == nil {
			enrichment.CreatedAt = &t
		}
	}
	if parsed.Domain.ExpirationDate != "" {
		if t, err := parseWhoisDate(parsed.Domain.ExpirationDate); err == nil {
			enrichment.ExpiresAt = &t
			enrichment.DaysToExpiry = int(time.Until(t).Hours() / 24)
		}
	}
}

func parseWhoisDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"02-Jan-2006",
		"2006.01.02 15:04:05",
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
