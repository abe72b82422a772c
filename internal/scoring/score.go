package scoring

import (
	"strconv"
	"strings"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
)

// Scorer turns a lead's signal bundles into a 0-100 score and a tier under
// one of two mutually exclusive policies. Standard mode prices general
// technical and security decay; opportunity mode prices how fixable a
// near-page-1 listing's on-page SEO gaps are.
type Scorer struct {
	scoring config.ScoringConfig
	psi     config.PageSpeedConfig
}

func New(scoring config.ScoringConfig, psi config.PageSpeedConfig) *Scorer {
	return &Scorer{scoring: scoring, psi: psi}
}

// Score dispatches on run mode. Result is always clamped to [0,100] and the
// tier is a pure function of the score.
func (s *Scorer) Score(lead *core.Lead, opportunityMode bool) (int, string) {
	if opportunityMode {
		return s.opportunityScore(lead)
	}
	return s.standardScore(lead)
}

// Standard defect policy: additive weights over performance, security,
// builder debt and content-freshness signals. Never emits tier D.
func (s *Scorer) standardScore(lead *core.Lead) (int, string) {
	score := 0

	if psi := lead.PSI; psi != nil {
		if psi.Perf != nil && *psi.Perf < s.psi.PerfBad {
			score += 25
		}
		if psi.TTFBMs != nil && *psi.TTFBMs > s.psi.TTFBBadMs {
			score += 15
		}
		if psi.LCPMs != nil && *psi.LCPMs > s.psi.LCPBadMs {
			score += 15
		}
	}

	if lead.Security.MixedContent || !lead.Security.HTTPS {
		score += 15
	}
	if !lead.Security.HSTS {
		score += 5
	}

	if out := lead.Outdated; out != nil {
		switch out.Builder {
		case "divi":
			score += 20
		case "":
		default:
			score += 12
		}
		if out.OldJQuery {
			score += 10
		}
		if out.OldBootstrap {
			score += 6
		}
		if out.JS.LegacySlider {
			score += 15
		}
		if out.JS.FOUCRisk {
			score += 10
		}
		if out.JS.LegacyScriptVer {
			score += 8
		}
		if out.JS.ConsoleErrors {
			score += 5
		}
		if out.JS.ScriptOrdering {
			score += 6
		}
		if out.NoStructuredData {
			score += 5
		}
		if out.PoorImageAlt {
			score += 8
		}
		if out.StaleCopyright {
			score += 6
		}
		if out.BrokenLinksCount >= 2 {
			score += 10
		}
		score += out.LocaleBonus
	}

	if lead.SEO.TitleMissing {
		score += 8
	}
	if lead.SEO.MetaDescMissing {
		score += 6
	}

	score = clamp(score)
	return score, standardTier(score)
}

// Opportunity policy: rank proximity plus on-page fixability.
func (s *Scorer) opportunityScore(lead *core.Lead) (int, string) {
	score := 0

	switch {
	case lead.BestRank > 0 && lead.BestRank <= 20:
		score += 30
	case lead.BestRank > 0 && lead.BestRank <= 30:
		score += 20
	case lead.BestRank > 0 && lead.BestRank <= 40:
		score += 10
	}

	if lead.SEO.TitleMissing {
		score += 25
	}
	if lead.SEO.MetaDescMissing {
		score += 20
	}
	if lead.SEO.RobotsNoindex {
		score += 30
	}
	if lead.SEO.MultipleH1 {
		score += 15
	}
	if lead.SEO.ThinContent {
		score += 20
	}

	if lead.Tech.WPVersion != "" && versionBelow(lead.Tech.WPVersion, s.scoring.WPVersionBad) {
		score += 15
	}
	if lead.Tech.ReadmeAccessible {
		score += 20
	}

	if psi := lead.PSI; psi != nil && psi.Perf != nil {
		if *psi.Perf < 50 {
			score += 20
		} else if *psi.Perf < 70 {
			score += 10
		}
	}

	if !lead.Security.HTTPS {
		score += 10
	}
	if lead.Security.MixedContent {
		score += 5
	}

	if lead.Contact.Phone != "" || lead.Contact.Form {
		score += 10
	}

	score = clamp(score)
	return score, s.opportunityTier(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func standardTier(score int) string {
	switch {
	case score >= 70:
		return "A"
	case score >= 50:
		return "B"
	default:
		return "C"
	}
}

// Opportunity A/B cutoffs come from configuration; the C floor is fixed.
func (s *Scorer) opportunityTier(score int) string {
	switch {
	case score >= s.scoring.TierAMin:
		return "A"
	case score >= s.scoring.TierBMin:
		return "B"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

// versionBelow compares dotted version strings segment by segment. An
// unparseable version counts as below: a site that hides or mangles its
// version string is treated as outdated.
func versionBelow(version, cutoff string) bool {
	vParts := strings.Split(version, ".")
	cParts := strings.Split(cutoff, ".")

	for i := 0; i < len(vParts) || i < len(cParts); i++ {
		v, c := 0, 0
		var err error
		if i < len(vParts) {
			if v, err = strconv.Atoi(strings.TrimSpace(vParts[i])); err != nil {
				return true
			}
		}
		if i < len(cParts) {
			if c, err = strconv.Atoi(strings.TrimSpace(cParts[i])); err != nil {
				return true
			}
		}
		if v != c {
			return v < c
		}
	}
	return false
}
