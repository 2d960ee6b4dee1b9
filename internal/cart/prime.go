package cart

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pandolabs/ecocart/internal/models"
)

const primeRowSelector = `[data-component-type="sc-list-item"], .sc-list-item`

var (
	primeTitleRules = []fieldRule{
		{selector: ".sc-product-title, .a-truncate-full, .a-link-normal"},
		{selector: "[data-item-title]", attr: "data-item-title"},
	}
	primeQuantityRules = []fieldRule{
		{selector: `input[name="quantityBox"]`, attr: "value"},
		{selector: `select[name="quantity"] option[selected]`, attr: "value"},
		{selector: "span.a-dropdown-prompt"},
	}
	primePriceRules = []fieldRule{
		{selector: ".sc-product-price, .sc-price, .a-color-price, .a-size-base.a-color-price"},
	}
	primeDeliveryRules = []fieldRule{
		{selector: ".sc-delivery-date", accept: acceptDelivery},
		{selector: ".a-color-success", accept: acceptDelivery},
		{selector: "[data-csa-c-delivery-promise]", accept: acceptDelivery},
		{selector: ".delivery-message", accept: acceptDelivery},
		{selector: ".a-color-base", accept: acceptDelivery},
	}
)

// ExtractPrimeItems scrapes the regular ("Prime") cart layout. Rows without
// a resolvable title are skipped; a malformed price or quantity never drops
// a row. Output order follows document order.
func ExtractPrimeItems(doc *goquery.Document) []models.CartLineItem {
	items := make([]models.CartLineItem, 0)
	doc.Find(primeRowSelector).Each(func(_ int, row *goquery.Selection) {
		title := firstField(row, primeTitleRules)
		if title == "" {
			return
		}
		item := models.CartLineItem{
			Source:   models.SourcePrime,
			Title:    title,
			Quantity: ParseQuantity(firstField(row, primeQuantityRules)),
			Price:    ParsePrice(firstField(row, primePriceRules)),
		}
		if delivery := firstField(row, primeDeliveryRules); delivery != "" {
			item.DeliveryText = &delivery
		}
		items = append(items, item)
	})
	return items
}
