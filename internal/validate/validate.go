package validate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/extract"
)

// Decision is the terminal admission outcome for one probed domain.
type Decision struct {
	Accept bool
	Reason string
}

// Gate applies the admission rules that turn a probed domain into a saved
// lead or a rejection entry.
type Gate struct {
	excludedTLDs      []string
	previouslyScanned map[string]struct{}
	scoreMin          int
	logger            *zap.Logger
}

// excludedTLDs here are the non-commercial suffixes a lead can never carry;
// the search-side junk filter uses a wider list.
var nonCommercialTLDs = []string{".org", ".edu", ".gov", ".mil", ".int", ".ac"}

func NewGate(cfg config.ExcludeConfig, scoring config.ScoringConfig, logger *zap.Logger) *Gate {
	scanned := make(map[string]struct{}, len(cfg.PreviouslyScanned))
	for _, d := range cfg.PreviouslyScanned {
		scanned[strings.ToLower(d)] = struct{}{}
	}
	return &Gate{
		excludedTLDs:      nonCommercialTLDs,
		previouslyScanned: scanned,
		scoreMin:          scoring.ScoreMin,
		logger:            logger,
	}
}

// PreviouslyScanned reports whether the domain was covered by a prior scan.
// Checked before any extraction work is spent on the domain.
func (g *Gate) PreviouslyScanned(domain string) bool {
	_, ok := g.previouslyScanned[strings.ToLower(domain)]
	return ok
}

// Screen applies the pre-scoring rejection rules: missing domain, excluded
// TLD, prior scan, platform subdomain, no evidence.
func (g *Gate) Screen(lead *core.Lead) *Decision {
	if lead.Domain == "" {
		return &Decision{Reason: "missing_domain"}
	}

	domain := strings.ToLower(lead.Domain)
	for _, tld := range g.excludedTLDs {
		if strings.HasSuffix(domain, tld) {
			return &Decision{Reason: "excluded_tld"}
		}
	}

	if g.PreviouslyScanned(domain) {
		return &Decision{Reason: "previously_scanned"}
	}

	if lead.PlatformSubdomain {
		return &Decision{Reason: "platform_subdomain"}
	}

	if len(lead.EvidenceURLs) == 0 {
		return &Decision{Reason: "no_evidence"}
	}

	return &Decision{Accept: true}
}

// Decide runs the full admission state machine. perfOverride marks a
// critical-performance site that bypasses the spam-confidence checks and the
// score floor; hidden injected spam still rejects even then, as the stricter
// of the two rules.
func (g *Gate) Decide(lead *core.Lead, perfOverride bool) *Decision {
	if d := g.Screen(lead); !d.Accept {
		return d
	}

	// Hidden spam is a stronger signal than keyword-density spam and is
	// evaluated before the override can short-circuit anything.
	if extract.HasHiddenSpam(lead.SpamSignals) {
		g.logger.Info("rejecting domain: hidden spam content",
			zap.String("domain", lead.Domain),
		)
		return &Decision{Reason: "hidden_spam"}
	}

	if perfOverride {
		g.logger.Info("performance override active, bypassing spam checks",
			zap.String("domain", lead.Domain),
			zap.String("reason", lead.OverrideReason),
		)
		return &Decision{Accept: true}
	}

	if len(lead.SpamSignals) > 0 {
		assessment := extract.AssessSpam(lead.SpamSignals)
		avg := assessment.AvgConfidence

		switch {
		case avg >= 90:
			g.logger.Info("rejecting domain: high confidence spam",
				zap.String("domain", lead.Domain),
				zap.Float64("confidence", avg),
			)
			return &Decision{Reason: fmt.Sprintf("spam_confidence_%.1f", avg)}
		case avg >= 40:
			if !extract.IsLegitimateBusiness(lead.BrandName) {
				g.logger.Info("rejecting domain: medium confidence spam, no business category",
					zap.String("domain", lead.Domain),
					zap.Float64("confidence", avg),
				)
				return &Decision{Reason: fmt.Sprintf("spam_confidence_%.1f", avg)}
			}
			g.logger.Info("medium spam confidence on recognized business, keeping for review",
				zap.String("domain", lead.Domain),
				zap.Float64("confidence", avg),
			)
		}
	}

	return &Decision{Accept: true}
}

// Admit applies the score floor after scoring. The floor is waived when the
// performance override is active.
func (g *Gate) Admit(lead *core.Lead, perfOverride bool) *Decision {
	if perfOverride {
		return &Decision{Accept: true}
	}
	if lead.Score < g.scoreMin {
		return &Decision{Reason: fmt.Sprintf("low_score_%d", lead.Score)}
	}
	return &Decision{Accept: true}
}
