package models

import (
	"time"
)

// ItemSource identifies which cart variant an item was scraped from.
type ItemSource string

const (
	SourcePrime ItemSource = "prime"
	SourceFresh ItemSource = "fresh"
)

// CartLineItem is one scraped product row. Title is always non-empty;
// rows without a resolvable title never enter the model.
type CartLineItem struct {
	Source       ItemSource `json:"source"`
	Title        string     `json:"title"`
	Quantity     int        `json:"quantity"`
	Price        *float64   `json:"price"`
	DeliveryText *string    `json:"deliveryText"`
}

// ShipmentGroup holds the items sharing one inferred delivery window.
type ShipmentGroup struct {
	Window string         `json:"window"`
	Items  []CartLineItem `json:"items"`
}

// CartSnapshot is the immutable result of one scrape. It is created fresh
// on every scan and consumed by at most one suggestion request.
type CartSnapshot struct {
	URL               string          `json:"url"`
	Timestamp         time.Time       `json:"timestamp"`
	AddressText       *string         `json:"addressText"`
	Items             []CartLineItem  `json:"items"`
	InferredShipments []ShipmentGroup `json:"inferredShipments"`
	Total             float64         `json:"total"`
}

// LineTotal treats a missing price as zero.
func (it CartLineItem) LineTotal() float64 {
	if it.Price == nil {
		return 0
	}
	return *it.Price * float64(it.Quantity)
}
