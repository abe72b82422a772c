package extract

import (
	"fmt"
	"regexp"

	"github.com/webrenew/leadscout/internal/core"
)

var wpCriticalRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)There has been a critical error on this website`),
	regexp.MustCompile(`(?i)Error establishing a database connection`),
	regexp.MustCompile(`(?i)Briefly unavailable for scheduled maintenance`),
}

var phpErrorRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Warning|Deprecated|Notice|Fatal error):`),
	regexp.MustCompile(`(?i)Parse error:`),
}

// PageErrors collects visible CMS/interpreter error banners across the page
// set, capped at three matches per pattern per page.
func PageErrors(pages []core.PageResult) []string {
	var errors []string

	for _, page := range pages {
		if !page.OK() {
			continue
		}

		for _, re := range wpCriticalRes {
			if re.MatchString(page.Body) {
				errors = append(errors, fmt.Sprintf("WordPress critical error: %s", re.String()))
			}
		}

		for _, re := range phpErrorRes {
			matches := re.FindAllString(page.Body, 3)
			for _, m := range matches {
				errors = append(errors, fmt.Sprintf("PHP error: %s", m))
			}
		}
	}

	return errors
}
