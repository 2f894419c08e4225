package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// SizeStock is the per-size stock record of a product. Two tracking modes
// exist in the catalog: counted entries carry a unit quantity and derive
// availability from it, boolean-only entries carry just the availability
// flag. Counted is the tag that separates the two.
type SizeStock struct {
	Size      string `json:"size"`
	Counted   bool   `json:"-"`
	Quantity  int    `json:"quantity,omitempty"`
	Available bool   `json:"available"`
}

// Filter is an ad-hoc facet pair (category, subCategory, ...) used by the
// storefront UI. Stored, never interpreted here.
type Filter struct {
	Facet string `json:"type"`
	Value string `json:"value"`
}

type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Images            []string         `json:"image"`
	RentalPricePerDay decimal.Decimal  `json:"rentalPricePerDay"`
	OriginalPrice     *decimal.Decimal `json:"originalPrice,omitempty"`
	MRP               *decimal.Decimal `json:"mrp,omitempty"`
	Gender            string           `json:"gender"`
	Sizes             []SizeStock      `json:"sizes"`
	Filters           []Filter         `json:"filters,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// SizeEntry returns the stock record for an exact size string, if present.
func (p *Product) SizeEntry(size string) (SizeStock, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s, true
		}
	}
	return SizeStock{}, false
}
