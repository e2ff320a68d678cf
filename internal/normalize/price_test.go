package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalog-normalizer/internal/model"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func strp(v string) *string  { return &v }

func TestProductPrice(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want model.Price
	}{
		{
			name: "price group",
			raw:  map[string]any{"price": map[string]any{"current": 100.0, "original": 150.0}},
			want: model.Price{Current: f64(100), Original: f64(150), Discount: intp(33)},
		},
		{
			name: "pricing group",
			raw:  map[string]any{"pricing": map[string]any{"selling": 80.0, "mrp": 100.0}},
			want: model.Price{Current: f64(80), Original: f64(100), Discount: intp(20)},
		},
		{
			name: "legacy flat fields",
			raw:  map[string]any{"sellingPrice": 45, "mrp": 60},
			want: model.Price{Current: f64(45), Original: f64(60), Discount: intp(25)},
		},
		{
			name: "price group wins without original",
			raw: map[string]any{
				"price":   map[string]any{"current": 100.0},
				"pricing": map[string]any{"selling": 80.0, "mrp": 120.0},
			},
			want: model.Price{Current: f64(100)},
		},
		{
			name: "equal prices",
			raw:  map[string]any{"price": map[string]any{"current": 50.0, "original": 50.0}},
			want: model.Price{Current: f64(50), Original: f64(50)},
		},
		{
			name: "free item",
			raw:  map[string]any{"price": map[string]any{"current": 0.0, "original": 0.0}},
			want: model.Price{Current: f64(0), Original: f64(0)},
		},
		{
			name: "original below current",
			raw:  map[string]any{"price": map[string]any{"current": 120.0, "original": 100.0}},
			want: model.Price{Current: f64(120), Original: f64(100)},
		},
		{
			name: "discount rounds to zero",
			raw:  map[string]any{"price": map[string]any{"current": 999.0, "original": 1000.0}},
			want: model.Price{Current: f64(999), Original: f64(1000)},
		},
		{
			name: "original only",
			raw:  map[string]any{"mrp": 60.0},
			want: model.Price{Original: f64(60)},
		},
		{
			name: "numeric strings",
			raw:  map[string]any{"pricing": map[string]any{"selling": "80.00", "mrp": " 100 "}},
			want: model.Price{Current: f64(80), Original: f64(100), Discount: intp(20)},
		},
		{
			name: "unparseable current keeps group",
			raw: map[string]any{
				"price":        map[string]any{"current": "call us"},
				"sellingPrice": 10.0,
			},
			want: model.Price{},
		},
		{
			name: "mongo document",
			raw: bson.M{"pricing": primitive.D{
				{Key: "selling", Value: int32(75)},
				{Key: "mrp", Value: int64(100)},
			}},
			want: model.Price{Current: f64(75), Original: f64(100), Discount: intp(25)},
		},
		{name: "nil", raw: nil, want: model.Price{}},
		{name: "not an object", raw: "100", want: model.Price{}},
		{name: "empty object", raw: map[string]any{}, want: model.Price{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductPrice(tt.raw))
		})
	}
}

func TestProductPrice_PriceGroupWinsOverPricing(t *testing.T) {
	got := ProductPrice(map[string]any{
		"price":   map[string]any{"current": 100.0, "original": 150.0},
		"pricing": map[string]any{"selling": 80.0, "mrp": 120.0},
	})
	require.NotNil(t, got.Current)
	assert.Equal(t, 100.0, *got.Current)
}

func TestProductPrice_DiscountNilWhenNotCheaper(t *testing.T) {
	raws := []any{
		map[string]any{"price": map[string]any{"current": 10.0}},
		map[string]any{"price": map[string]any{"original": 10.0}},
		map[string]any{"sellingPrice": 10.0, "mrp": 10.0},
		map[string]any{"sellingPrice": 11.0, "mrp": 10.0},
		map[string]any{"sellingPrice": -5.0, "mrp": 0.0},
	}
	for _, raw := range raws {
		assert.Nil(t, ProductPrice(raw).Discount, "raw %v", raw)
	}
}

func TestDiscountPercent_RoundsHalfUp(t *testing.T) {
	// 12.5% off
	assert.Equal(t, intp(13), discountPercent(f64(70), f64(80)))
	// 0.5% off
	assert.Equal(t, intp(1), discountPercent(f64(199), f64(200)))
}

func TestToNumber_ExtendedJSONDecimal(t *testing.T) {
	assert.Equal(t, f64(12.5), toNumber(map[string]any{"$numberDecimal": "12.5"}))
	assert.Nil(t, toNumber(map[string]any{"$numberDecimal": "abc"}))
	assert.Nil(t, toNumber(map[string]any{"amount": 3}))
}
