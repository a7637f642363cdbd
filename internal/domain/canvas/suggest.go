package canvas

import (
	"fmt"

	"github.com/agrisiti/agrikit/internal/domain/hints"
	"github.com/agrisiti/agrikit/internal/domain/money"
)

var segmentSuggestions = map[string]string{
	"rice": "Market traders\nHotel/Restaurants\nRice mill\nSupermarket",
	"fish": "Pepper soup joint\nRestaurant\nMarket seller\nFish processor",
}

// Cost line items are not recoverable from the hints, only the total, so
// the prefix is fixed per domain.
const (
	fishCostPrefix = "Main costs: feed, fingerlings, labor, electricity"
	riceCostPrefix = "Main costs: seeds, fertilizer, labor, transport"
)

// Suggest returns the default answer offered for boxID given what the other
// activities recorded, falling back to the box's examples.
func Suggest(boxID string, h hints.Record) string {
	box, _, ok := Lookup(boxID)
	if !ok {
		return ""
	}
	switch boxID {
	case "segments":
		if s, ok := segmentSuggestions[h.Match()]; ok {
			return s
		}
	case "revenue":
		if p := h.Price(); p > 0 {
			return fmt.Sprintf("%s per unit, cash on delivery", money.Naira(p))
		}
	case "costs":
		if t := h.Total(); t > 0 {
			prefix := riceCostPrefix
			if h.Costs() == "fish" {
				prefix = fishCostPrefix
			}
			return fmt.Sprintf("%s\nTotal: %s", prefix, money.Naira(t))
		}
	}
	return box.Examples
}
