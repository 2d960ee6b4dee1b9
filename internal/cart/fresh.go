package cart

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pandolabs/ecocart/internal/models"
)

const freshRowSelector = `[data-test="cart-item"], [data-testid="cart-item"], .cart-item, [data-component-type="fresh-cart-item"]`

var (
	freshTitleRules = []fieldRule{
		{selector: `[data-test="item-title"], [data-testid="item-title"], .a-truncate-full, .a-link-normal, .title`},
	}
	freshQuantityRules = []fieldRule{
		{selector: `[data-test="quantity"], [data-testid="quantity"], .quantity, .a-dropdown-prompt`},
		{selector: `select[name="quantity"] option[selected]`},
	}
	freshPriceRules = []fieldRule{
		{selector: `[data-test="price"], [data-testid="price"], .a-color-price, .price`},
	}
	// Fresh shows one delivery window for the whole order, so the lookup is
	// document-wide rather than per row.
	freshDeliveryRules = []fieldRule{
		{selector: `[data-test="delivery-window"], [data-testid="delivery-window"], .delivery-window, .a-color-success`},
	}
)

// ExtractFreshItems scrapes the Amazon Fresh cart layout. The same
// degrade-gracefully rules as the Prime extractor apply: only a missing
// title excludes a row.
func ExtractFreshItems(doc *goquery.Document) []models.CartLineItem {
	items := make([]models.CartLineItem, 0)
	doc.Find(freshRowSelector).Each(func(_ int, row *goquery.Selection) {
		title := firstField(row, freshTitleRules)
		if title == "" {
			return
		}
		item := models.CartLineItem{
			Source:   models.SourceFresh,
			Title:    title,
			Quantity: ParseQuantity(firstField(row, freshQuantityRules)),
			Price:    ParsePrice(firstField(row, freshPriceRules)),
		}
		if delivery := firstField(doc.Selection, freshDeliveryRules); delivery != "" {
			item.DeliveryText = &delivery
		}
		items = append(items, item)
	})
	return items
}
