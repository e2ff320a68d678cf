package normalize

import (
	"strconv"
	"strings"

	"catalog-normalizer/internal/model"
)

// imageShape tags the raw representation a product's images arrived in.
type imageShape int

const (
	shapeNone imageShape = iota
	shapeObjectList
	shapeStringList
	shapeObject
	shapeString
	shapeURLField
	shapeThumbnail
)

const defaultProductName = "Product"

var (
	imagesField    = Field("images")
	imageField     = Field("image")
	imageURLFields = []Accessor{nonBlank(Field("url")), nonBlank(Field("src"))}
	imageAltField  = nonBlank(Field("alt"))
	productName    = nonBlank(Field("name"))
)

// nonBlank narrows acc to string values with visible content.
func nonBlank(acc Accessor) Accessor {
	return func(obj map[string]any) (any, bool) {
		v, ok := acc(obj)
		if !ok {
			return nil, false
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		return s, true
	}
}

// classifyImages picks the first raw image shape present on the product.
func classifyImages(obj map[string]any) (imageShape, any) {
	images, _ := Resolve(obj, imagesField)
	if arr, ok := asArray(images); ok {
		for _, el := range arr {
			if el == nil {
				continue
			}
			if _, ok := asObject(el); ok {
				return shapeObjectList, arr
			}
			if _, ok := el.(string); ok {
				return shapeStringList, arr
			}
			break
		}
	}
	image, _ := Resolve(obj, imageField)
	if img, ok := asObject(image); ok {
		return shapeObject, img
	}
	if v, ok := nonBlank(imageField)(obj); ok {
		return shapeString, v
	}
	if v, ok := nonBlank(Field("imageUrl"))(obj); ok {
		return shapeURLField, v
	}
	if v, ok := nonBlank(Field("thumbnail"))(obj); ok {
		return shapeThumbnail, v
	}
	return shapeNone, nil
}

// ProductImages resolves a raw product's display images. Entries without a
// usable url are dropped; the result is never nil.
func ProductImages(product any) []model.Image {
	obj, ok := asObject(product)
	if !ok {
		return []model.Image{}
	}
	name := defaultProductName
	if v, ok := productName(obj); ok {
		name = v.(string)
	}

	shape, raw := classifyImages(obj)
	switch shape {
	case shapeObjectList:
		return imagesFromObjects(raw.([]any), name)
	case shapeStringList:
		return imagesFromStrings(raw.([]any), name)
	case shapeObject:
		return imagesFromObjects([]any{raw}, name)
	case shapeString, shapeURLField:
		return []model.Image{{URL: raw.(string), Alt: name + " image"}}
	case shapeThumbnail:
		return []model.Image{{URL: raw.(string), Alt: name + " thumbnail"}}
	default:
		return []model.Image{}
	}
}

// imagesFromObjects keeps the elements that carry a url. Missing alt text is
// numbered by position among the kept images when more than one is kept.
func imagesFromObjects(elems []any, name string) []model.Image {
	type kept struct {
		url string
		alt *string
	}
	ks := make([]kept, 0, len(elems))
	for _, el := range elems {
		u, ok := Resolve(el, imageURLFields...)
		if !ok {
			continue
		}
		k := kept{url: u.(string)}
		if a, ok := Resolve(el, imageAltField); ok {
			alt := a.(string)
			k.alt = &alt
		}
		ks = append(ks, k)
	}

	out := make([]model.Image, 0, len(ks))
	for i, k := range ks {
		img := model.Image{URL: k.url}
		switch {
		case k.alt != nil:
			img.Alt = *k.alt
		case len(ks) > 1:
			img.Alt = name + " image " + strconv.Itoa(i+1)
		default:
			img.Alt = name + " image"
		}
		out = append(out, img)
	}
	return out
}

// imagesFromStrings numbers alt text by position in the raw array.
func imagesFromStrings(elems []any, name string) []model.Image {
	out := make([]model.Image, 0, len(elems))
	for i, el := range elems {
		u, ok := el.(string)
		if !ok || strings.TrimSpace(u) == "" {
			continue
		}
		out = append(out, model.Image{URL: u, Alt: name + " image " + strconv.Itoa(i+1)})
	}
	return out
}
