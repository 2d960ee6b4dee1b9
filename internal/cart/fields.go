package cart

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fieldRule is one step of an ordered fallback chain for a single field.
// The first rule that resolves a non-empty, accepted string wins; rules
// whose selector misses or whose text is rejected are skipped so the chain
// survives site markup drift.
type fieldRule struct {
	selector string
	attr     string            // read this attribute instead of the text
	accept   func(string) bool // optional filter; rejected text tries the next rule
}

func firstField(root *goquery.Selection, rules []fieldRule) string {
	for _, rule := range rules {
		node := root.Find(rule.selector).First()
		if node.Length() == 0 {
			continue
		}
		var raw string
		if rule.attr != "" {
			raw, _ = node.Attr(rule.attr)
		} else {
			raw = node.Text()
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if rule.accept != nil && !rule.accept(raw) {
			continue
		}
		return raw
	}
	return ""
}

// acceptDelivery drops stock-status noise that shares the delivery
// selectors on the cart page.
func acceptDelivery(text string) bool {
	lower := strings.ToLower(text)
	if lower == "in stock" {
		return false
	}
	return !strings.HasPrefix(lower, "free returns")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
