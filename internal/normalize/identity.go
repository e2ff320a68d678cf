package normalize

var (
	productIDFields = Fields("id", "_id", "productId")
	storeIDFields   = Fields("id", "_id", "storeId")
	storeNameFields = Fields("name", "storeName", "title")
)

// ProductID returns the product's id as a string, or nil when none resolves.
func ProductID(product any) *string {
	v, ok := Resolve(product, productIDFields...)
	if !ok {
		return nil
	}
	return toIDString(v)
}

// StoreID returns the store's id as a string, or nil when none resolves.
func StoreID(store any) *string {
	v, ok := Resolve(store, storeIDFields...)
	if !ok {
		return nil
	}
	return toIDString(v)
}

// StoreName returns the store's display name.
func StoreName(store any) *string {
	v, ok := Resolve(store, storeNameFields...)
	if !ok {
		return nil
	}
	return toText(v)
}
