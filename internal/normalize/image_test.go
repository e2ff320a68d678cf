package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalog-normalizer/internal/model"
)

func TestProductImages_ObjectListNumbersMissingAlt(t *testing.T) {
	got := ProductImages(map[string]any{
		"name": "Test Product",
		"images": []any{
			map[string]any{"url": "image1.jpg", "alt": "Image 1"},
			map[string]any{"url": "image2.jpg"},
		},
	})

	require.Len(t, got, 2)
	assert.Equal(t, model.Image{URL: "image1.jpg", Alt: "Image 1"}, got[0])
	assert.Equal(t, model.Image{URL: "image2.jpg", Alt: "Test Product image 2"}, got[1])
}

func TestProductImages_DropsEntriesWithoutURL(t *testing.T) {
	got := ProductImages(map[string]any{
		"images": []any{
			map[string]any{"url": "image1.jpg"},
			map[string]any{"alt": "No URL"},
			map[string]any{"url": "image2.jpg"},
		},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "image1.jpg", got[0].URL)
	assert.Equal(t, "image2.jpg", got[1].URL)
	// numbering follows the kept images, not the raw positions
	assert.Equal(t, "Product image 2", got[1].Alt)
}

func TestProductImages_SrcFallbackAndSingleSurvivor(t *testing.T) {
	got := ProductImages(map[string]any{
		"name": "Mug",
		"images": []any{
			map[string]any{"src": "mug.png"},
			map[string]any{"url": ""},
			"not-an-object",
		},
	})

	require.Len(t, got, 1)
	assert.Equal(t, model.Image{URL: "mug.png", Alt: "Mug image"}, got[0])
}

func TestProductImages_Shapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []model.Image
	}{
		{
			name: "string list",
			raw:  map[string]any{"name": "Shoe", "images": []any{"a.jpg", "b.jpg"}},
			want: []model.Image{{URL: "a.jpg", Alt: "Shoe image 1"}, {URL: "b.jpg", Alt: "Shoe image 2"}},
		},
		{
			name: "string list keeps raw positions",
			raw:  map[string]any{"name": "Shoe", "images": []any{"", "b.jpg"}},
			want: []model.Image{{URL: "b.jpg", Alt: "Shoe image 2"}},
		},
		{
			name: "single object",
			raw:  map[string]any{"name": "Hat", "image": map[string]any{"src": "hat.jpg"}},
			want: []model.Image{{URL: "hat.jpg", Alt: "Hat image"}},
		},
		{
			name: "single object with alt",
			raw:  map[string]any{"name": "Hat", "image": map[string]any{"url": "hat.jpg", "alt": "Red hat"}},
			want: []model.Image{{URL: "hat.jpg", Alt: "Red hat"}},
		},
		{
			name: "single object without url",
			raw:  map[string]any{"name": "Hat", "image": map[string]any{"alt": "x"}, "imageUrl": "u.jpg"},
			want: []model.Image{},
		},
		{
			name: "single string",
			raw:  map[string]any{"name": "Hat", "image": "hat.jpg"},
			want: []model.Image{{URL: "hat.jpg", Alt: "Hat image"}},
		},
		{
			name: "imageUrl field",
			raw:  map[string]any{"name": "Hat", "imageUrl": "hat.jpg", "thumbnail": "t.jpg"},
			want: []model.Image{{URL: "hat.jpg", Alt: "Hat image"}},
		},
		{
			name: "thumbnail field",
			raw:  map[string]any{"name": "Hat", "thumbnail": "t.jpg"},
			want: []model.Image{{URL: "t.jpg", Alt: "Hat thumbnail"}},
		},
		{
			name: "empty images falls through",
			raw:  map[string]any{"name": "Hat", "images": []any{}, "image": "hat.jpg"},
			want: []model.Image{{URL: "hat.jpg", Alt: "Hat image"}},
		},
		{
			name: "blank image string falls through",
			raw:  map[string]any{"name": "Hat", "image": "  ", "thumbnail": "t.jpg"},
			want: []model.Image{{URL: "t.jpg", Alt: "Hat thumbnail"}},
		},
		{
			name: "mongo array of documents",
			raw: bson.M{"name": "Cap", "images": primitive.A{
				primitive.D{{Key: "url", Value: "c1.jpg"}},
				primitive.D{{Key: "url", Value: "c2.jpg"}},
			}},
			want: []model.Image{{URL: "c1.jpg", Alt: "Cap image 1"}, {URL: "c2.jpg", Alt: "Cap image 2"}},
		},
		{
			name: "mongo document with single image document",
			raw: bson.D{
				{Key: "name", Value: "Cap"},
				{Key: "image", Value: bson.D{{Key: "src", Value: "cap.jpg"}}},
			},
			want: []model.Image{{URL: "cap.jpg", Alt: "Cap image"}},
		},
		{
			name: "null images falls through",
			raw:  map[string]any{"name": "Hat", "images": nil, "image": "hat.jpg"},
			want: []model.Image{{URL: "hat.jpg", Alt: "Hat image"}},
		},
		{name: "no images", raw: map[string]any{"name": "Hat"}, want: []model.Image{}},
		{name: "nil", raw: nil, want: []model.Image{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductImages(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductImages_EveryURLNonEmpty(t *testing.T) {
	got := ProductImages(map[string]any{
		"images": []any{
			map[string]any{"url": "  "},
			map[string]any{"url": 12},
			map[string]any{"src": "ok.jpg"},
			nil,
		},
	})
	for _, img := range got {
		assert.NotEmpty(t, img.URL)
	}
	assert.Len(t, got, 1)
}
