package extract

import (
	"regexp"
	"strings"

	"github.com/webrenew/leadscout/internal/core"
)

var (
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tel:([+\d\s\-()]+)`),
		regexp.MustCompile(`(?i)phone[:\s]+([+\d\s\-()]{7,})`),
		regexp.MustCompile(`(?i)call[:\s]+([+\d\s\-()]{7,})`),
	}
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	formRe  = regexp.MustCompile(`(?i)<form[^>]*>`)

	addressRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)address[:\s]+([^<>\n]+)`),
		regexp.MustCompile(`(?i)location[:\s]+([^<>\n]+)`),
		regexp.MustCompile(`(?i)[0-9]+\s+[a-zA-Z\s]+(?:street|st|avenue|ave|road|rd|drive|dr)\b`),
	}
)

// Contact extracts the first-found phone, email and address fragment across
// the page set; a form anywhere sets the form flag.
func Contact(pages []core.PageResult) core.ContactInfo {
	var info core.ContactInfo

	for _, page := range pages {
		if !page.OK() {
			continue
		}

		if info.Phone == "" {
			for _, re := range phoneRes {
				if m := re.FindStringSubmatch(page.Body); m != nil {
					info.Phone = strings.TrimSpace(m[1])
					break
				}
			}
		}

		if info.Email == "" {
			if m := emailRe.FindString(page.Body); m != "" {
				info.Email = m
			}
		}

		if formRe.MatchString(page.Body) {
			info.Form = true
		}

		if info.Address == "" {
			for _, re := range addressRes {
				m := re.FindStringSubmatch(page.Body)
				if m == nil {
					continue
				}
				if len(m) > 1 {
					info.Address = strings.TrimSpace(m[1])
				} else {
					info.Address = strings.TrimSpace(m[0])
				}
				break
			}
		}
	}

	return info
}
