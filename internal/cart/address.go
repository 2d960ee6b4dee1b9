package cart

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var addressSelectors = []string{
	"#glow-ingress-line2",
	"#glow-ingress-line1",
	"#nav-global-location-popover-link",
	".nav-line-2",
	".nav-global-location-data-truncate",
	`[data-action="glow-show-address-modal"]`,
	".nav-line-1-container",
}

var (
	addressKeywords = regexp.MustCompile(`(?i)deliver|to|address`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// ExtractAddress reads the best-effort delivery address from the navigation
// header. The first candidate whose collapsed text mentions a delivery
// keyword or is longer than five characters wins; otherwise the chain
// continues and nil means no candidate qualified.
func ExtractAddress(doc *goquery.Document) *string {
	for _, selector := range addressSelectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(whitespaceRun.ReplaceAllString(node.Text(), " "))
		if text == "" {
			continue
		}
		if addressKeywords.MatchString(text) || utf8.RuneCountInString(text) > 5 {
			return &text
		}
	}
	return nil
}
