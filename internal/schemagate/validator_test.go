package schemagate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-normalizer/internal/model"
)

func TestGateProduct_Accepts(t *testing.T) {
	p, rej := GateProduct(0, map[string]any{
		"id":     "p-1",
		"price":  map[string]any{"current": 80.0, "original": 100.0},
		"images": []any{"a.jpg"},
	})
	require.Nil(t, rej)
	require.NotNil(t, p)
	assert.Equal(t, "p-1", *p.ID)
}

func TestGateProduct_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		scope string
		why   string
	}{
		{"not an object", "p-1", "product:3", ReasonNotObject},
		{"nil", nil, "product:3", ReasonNotObject},
		{"no id", map[string]any{"name": "x"}, "product:3", ReasonIDMissing},
		{"blank id", map[string]any{"id": " "}, "product:3", ReasonIDMissing},
		{
			"negative price",
			map[string]any{"id": "p-9", "price": map[string]any{"current": -1.0}},
			"product:p-9",
			"price.current gte",
		},
		{
			"NaN passthrough field",
			map[string]any{"id": "p-7", "weight": math.NaN()},
			"product:p-7",
			ReasonUnencodable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rej := GateProduct(3, tt.raw)
			assert.Nil(t, p)
			require.NotNil(t, rej)
			assert.Equal(t, tt.scope, rej.Scope)
			assert.Equal(t, tt.why, rej.Reason)
		})
	}
}

func TestGateStore(t *testing.T) {
	s, rej := GateStore(0, map[string]any{"storeId": "s-1", "title": "Shop"})
	require.Nil(t, rej)
	assert.Equal(t, "Shop", *s.Name)

	s, rej = GateStore(1, map[string]any{"title": "Nameless"})
	assert.Nil(t, s)
	require.NotNil(t, rej)
	assert.Equal(t, Rejection{Scope: "store:1", Reason: ReasonIDMissing}, *rej)
}

func TestGateStore_Unencodable(t *testing.T) {
	s, rej := GateStore(2, map[string]any{"id": "s-2", "score": math.Inf(1)})
	assert.Nil(t, s)
	require.NotNil(t, rej)
	assert.Equal(t, Rejection{Scope: "store:s-2", Reason: ReasonUnencodable}, *rej)
}

func TestValidateProduct_ImageURLRequired(t *testing.T) {
	id := "p-1"
	valid, reason := ValidateProduct(&model.Product{
		ID:     &id,
		Images: []model.Image{{URL: "a.jpg"}, {URL: ""}},
	})
	assert.False(t, valid)
	assert.Equal(t, "images[1].url required", reason)
}

func TestRejection_String(t *testing.T) {
	assert.Equal(t, "store:9: id missing", Rejection{Scope: "store:9", Reason: ReasonIDMissing}.String())
}
