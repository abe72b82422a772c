package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/urlutil"
)

// Exporter writes run artifacts under the reports directory. Filenames carry
// a timestamp so successive runs never clobber each other.
type Exporter struct {
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

func (e *Exporter) path(prefix, stamp, ext string) string {
	name := urlutil.SanitizeFilename(fmt.Sprintf("%s_%s.%s", prefix, stamp, ext))
	return filepath.Join(e.dir, name)
}

func stamp() string {
	return time.Now().Format("20060102_150405")
}

// WriteAll emits the full artifact set: leads JSON, rejected JSON, CSV,
// XLSX workbook, and the text summary. Individual writer failures are
// logged and do not abort the remaining writers.
func (e *Exporter) WriteAll(leads []*core.Lead, rejected map[string]string, stats core.RunStats) []string {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.logger.Error("cannot create reports directory",
			zap.String("dir", e.dir),
			zap.Error(err),
		)
		return nil
	}

	ts := stamp()
	var written []string

	writers := []struct {
		name string
		fn   func() (string, error)
	}{
		{"leads json", func() (string, error) { return e.WriteLeadsJSON(leads, ts) }},
		{"rejected json", func() (string, error) { return e.WriteRejectedJSON(rejected, ts) }},
		{"leads csv", func() (string, error) { return e.WriteCSV(leads, ts) }},
		{"workbook", func() (string, error) { return e.WriteWorkbook(leads, ts) }},
		{"summary", func() (string, error) { return e.WriteSummary(leads, rejected, stats, ts) }},
	}
	for _, w := range writers {
		path, err := w.fn()
		if err != nil {
			e.logger.Error("export failed",
				zap.String("artifact", w.name),
				zap.Error(err),
			)
			continue
		}
		written = append(written, path)
	}
	return written
}

// WriteLeadsJSON persists the accepted leads as a JSON array.
func (e *Exporter) WriteLeadsJSON(leads []*core.Lead, ts string) (string, error) {
	path := e.path("leads", ts, "json")
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding leads: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteRejectedJSON persists the rejection audit map (domain -> reason).
func (e *Exporter) WriteRejectedJSON(rejected map[string]string, ts string) (string, error) {
	path := e.path("rejected", ts, "json")
	data, err := json.MarshalIndent(rejected, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding rejections: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

var csvHeader = []string{
	"domain", "brand_name", "score", "tier", "vertical",
	"cms", "wp_version", "https", "mixed_content",
	"perf_score", "phone", "email", "has_form",
	"spam_confidence", "override_reason", "evidence_urls",
}

// WriteCSV emits a flat per-lead row set for spreadsheet import.
func (e *Exporter) WriteCSV(leads []*core.Lead, ts string) (string, error) {
	path := e.path("leads", ts, "csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, lead := range leads {
		if err := w.Write(csvRow(lead)); err != nil {
			return "", fmt.Errorf("writing csv row for %s: %w", lead.Domain, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return path, nil
}

func csvRow(lead *core.Lead) []string {
	perf := ""
	if lead.PSI != nil && lead.PSI.Perf != nil {
		perf = strconv.Itoa(*lead.PSI.Perf)
	}
	return []string{
		lead.Domain,
		lead.BrandName,
		strconv.Itoa(lead.Score),
		lead.Tier,
		lead.VerticalTag,
		lead.Tech.CMS,
		lead.Tech.WPVersion,
		strconv.FormatBool(lead.Security.HTTPS),
		strconv.FormatBool(lead.Security.MixedContent),
		perf,
		lead.Contact.Phone,
		lead.Contact.Email,
		strconv.FormatBool(lead.Contact.Form),
		lead.SpamConfidence,
		lead.OverrideReason,
		strings.Join(lead.EvidenceURLs, " "),
	}
}

// WriteSummary emits the human-readable run digest.
func (e *Exporter) WriteSummary(leads []*core.Lead, rejected map[string]string, stats core.RunStats, ts string) (string, error) {
	path := e.path("summary", ts, "txt")

	tierCounts := make(map[string]int)
	for _, lead := range leads {
		tierCounts[lead.Tier]++
	}

	reasonCounts := make(map[string]int)
	for _, reason := range rejected {
		reasonCounts[collapseReason(reason)]++
	}
	reasons := make([]string, 0, len(reasonCounts))
	for r := range reasonCounts {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	var b strings.Builder
	fmt.Fprintf(&b, "Lead run %s\n", stats.RunID)
	fmt.Fprintf(&b, "Started:  %s\n", stats.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Searches: %d\n", stats.SearchesPerformed)
	fmt.Fprintf(&b, "Domains:  %d found, %d probed\n", stats.DomainsFound, stats.DomainsProbed)
	fmt.Fprintf(&b, "Leads:    %d accepted, %d rejected\n\n", stats.LeadsGenerated, stats.DomainsRejected)

	fmt.Fprintf(&b, "Tiers: A=%d B=%d C=%d D=%d\n\n",
		tierCounts["A"], tierCounts["B"], tierCounts["C"], tierCounts["D"])

	b.WriteString("Rejections by reason:\n")
	for _, r := range reasons {
		fmt.Fprintf(&b, "  %-24s %d\n", r, reasonCounts[r])
	}
	b.WriteString("\nTop leads:\n")
	for i, lead := range leads {
		if i == 20 {
			break
		}
		fmt.Fprintf(&b, "  %3d  %-4s %-40s %s\n", lead.Score, lead.Tier, lead.Domain, lead.BrandName)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func collapseReason(reason string) string {
	switch {
	case strings.HasPrefix(reason, "low_score"):
		return "low_score"
	case strings.HasPrefix(reason, "spam_confidence"):
		return "spam_confidence"
	case strings.HasPrefix(reason, "processing_error"):
		return "processing_error"
	default:
		return reason
	}
}
