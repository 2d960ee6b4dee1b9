package cart

import (
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pandolabs/ecocart/internal/models"
)

// RowsSelector is the readiness predicate: any element matching it means
// the lazy-loaded cart list has rendered. The browser layer waits on the
// same selector the extractors read.
const RowsSelector = `[data-component-type="sc-list-item"], .sc-list-item, [data-test="cart-item"], [data-testid="cart-item"], .cart-item`

const (
	// Delivery windows sharing a 120-rune prefix merge into one group.
	groupKeyLimit     = 120
	unspecifiedWindow = "unspecified"
)

// HasCartRows reports whether at least one recognizable cart row exists.
func HasCartRows(doc *goquery.Document) bool {
	return doc.Find(RowsSelector).Length() > 0
}

// Scraper combines the address reader and both row extractors into one
// normalized snapshot of the current document.
type Scraper struct {
	logger *slog.Logger
}

func NewScraper() *Scraper {
	return &Scraper{
		logger: slog.Default().With("component", "cart_scraper"),
	}
}

// Scrape never fails: an empty document yields a snapshot with zero items
// and it is the caller's job to treat that as an error. DOM access is
// read-only and the result is deterministic for a fixed document.
func (s *Scraper) Scrape(doc *goquery.Document, pageURL string) *models.CartSnapshot {
	address := ExtractAddress(doc)

	items := make([]models.CartLineItem, 0)
	items = append(items, ExtractPrimeItems(doc)...)
	items = append(items, ExtractFreshItems(doc)...)

	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}

	snapshot := &models.CartSnapshot{
		URL:               pageURL,
		Timestamp:         time.Now().UTC(),
		AddressText:       address,
		Items:             items,
		InferredShipments: GroupShipments(items),
		Total:             total,
	}

	s.logger.Info("cart scraped",
		"url", pageURL,
		"items", len(snapshot.Items),
		"shipments", len(snapshot.InferredShipments),
		"hasAddress", address != nil,
	)

	return snapshot
}

// GroupShipments partitions items by delivery-window text, truncated to the
// grouping-key limit, in first-seen key order. Items without delivery text
// share the "unspecified" group.
func GroupShipments(items []models.CartLineItem) []models.ShipmentGroup {
	groups := make([]models.ShipmentGroup, 0)
	index := make(map[string]int)

	for _, item := range items {
		key := unspecifiedWindow
		if item.DeliveryText != nil {
			key = truncateRunes(*item.DeliveryText, groupKeyLimit)
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.ShipmentGroup{Window: key})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}
