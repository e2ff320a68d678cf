package normalize

import "catalog-normalizer/internal/model"

var (
	storeIDField = Field("storeId")
	storeField   = Field("store")
	nameField    = Field("name")
)

// Product assembles a normalized product from a raw record. It returns nil
// when raw is not an object.
func Product(raw any) *model.Product {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}
	return &model.Product{
		ID:      ProductID(obj),
		Name:    productNameOf(obj),
		Price:   ProductPrice(obj),
		Rating:  ProductRating(obj),
		Images:  ProductImages(obj),
		StoreID: productStoreID(obj),
		Fields:  copyFields(obj),
	}
}

func productNameOf(obj map[string]any) *string {
	v, ok := Resolve(obj, nameField)
	if !ok {
		return nil
	}
	return toText(v)
}

// productStoreID prefers the flat storeId field over the nested store object.
func productStoreID(obj map[string]any) *string {
	if v, ok := Resolve(obj, storeIDField); ok {
		return toIDString(v)
	}
	if s, ok := Resolve(obj, storeField); ok {
		return StoreID(s)
	}
	return nil
}

// Store assembles a normalized store from a raw record. It returns nil when
// raw is not an object.
func Store(raw any) *model.Store {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}
	return &model.Store{
		ID:     StoreID(obj),
		Name:   StoreName(obj),
		Rating: ProductRating(obj),
		Fields: copyFields(obj),
	}
}

func copyFields(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// Products normalizes every element of a raw array. Elements that are not
// objects are dropped; any input that is not an array yields an empty slice.
func Products(raw any) []model.Product {
	arr, ok := asArray(raw)
	if !ok {
		return []model.Product{}
	}
	out := make([]model.Product, 0, len(arr))
	for _, el := range arr {
		if p := Product(el); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Stores normalizes every element of a raw array, like Products.
func Stores(raw any) []model.Store {
	arr, ok := asArray(raw)
	if !ok {
		return []model.Store{}
	}
	out := make([]model.Store, 0, len(arr))
	for _, el := range arr {
		if s := Store(el); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
