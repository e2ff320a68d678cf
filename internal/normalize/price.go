package normalize

import (
	"github.com/shopspring/decimal"

	"catalog-normalizer/internal/model"
)

// Price schema generations, newest first.
var priceGroups = []fieldGroup{
	group("price.current", "price.original"),
	group("pricing.selling", "pricing.mrp"),
	group("sellingPrice", "mrp"),
}

var hundred = decimal.NewFromInt(100)

// ProductPrice resolves the current and original price of a raw product and
// derives the discount percentage.
func ProductPrice(product any) model.Price {
	cur, orig := resolveGroup(product, priceGroups)
	p := model.Price{
		Current:  toNumber(cur),
		Original: toNumber(orig),
	}
	p.Discount = discountPercent(p.Current, p.Original)
	return p
}

// discountPercent returns round(100*(original-current)/original), or nil when
// either price is unknown, original is not above current, or the rounded
// percentage is zero.
func discountPercent(current, original *float64) *int {
	if current == nil || original == nil {
		return nil
	}
	if *original <= *current || *original <= 0 {
		return nil
	}
	cur := decimal.NewFromFloat(*current)
	orig := decimal.NewFromFloat(*original)
	pct := orig.Sub(cur).Mul(hundred).Div(orig).Round(0)
	d := int(pct.IntPart())
	if d == 0 {
		return nil
	}
	return &d
}
