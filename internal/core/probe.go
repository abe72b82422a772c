package core

import "time"

// PageResult is the outcome of fetching a single probe path. A status code
// of 0 means the request never produced an HTTP response (timeout, DNS
// failure, connection refused); Error carries the reason.
type PageResult struct {
	URL         string        `json:"url"`
	StatusCode  int           `json:"status_code"`
	Body        string        `json:"-"`
	ContentType string        `json:"content_type,omitempty"`
	SizeBytes   int           `json:"size_bytes"`
	LoadTime    time.Duration `json:"load_time_ms"`
	HSTS        bool          `json:"hsts,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// OK reports whether the page is usable as extractor evidence.
func (p *PageResult) OK() bool {
	return p.StatusCode > 0 && p.StatusCode < 400 && p.Body != ""
}

// DomainProbe aggregates the page results for one domain. It is built once
// per domain per run and owned by the orchestrator for that domain's
// lifetime.
type DomainProbe struct {
	Domain          string        `json:"domain"`
	RootURL         string        `json:"root_url"`
	Pages           []PageResult  `json:"pages"`
	TotalPages      int           `json:"total_pages"`
	SuccessfulPages int           `json:"successful_pages"`
	Errors          []string      `json:"errors,omitempty"`
	ProbeTime       time.Duration `json:"probe_time_ms"`
}

// SuccessfulSubset returns the pages extractors are allowed to read.
func (d *DomainProbe) SuccessfulSubset() []PageResult {
	out := make([]PageResult, 0, len(d.Pages))
	for _, p := range d.Pages {
		if p.OK() {
			out = append(out, p)
		}
	}
	return out
}
