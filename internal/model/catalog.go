package model

import "encoding/json"

// Kind names the record family carried by a batch or event.
type Kind string

const (
	KindProduct Kind = "product"
	KindStore   Kind = "store"
)

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	return k == KindProduct || k == KindStore
}

// Price is the canonical product price. Discount is a whole percentage and is
// only set when Original is strictly greater than Current.
type Price struct {
	Current  *float64 `json:"current" validate:"omitempty,gte=0"`
	Original *float64 `json:"original" validate:"omitempty,gte=0"`
	Discount *int     `json:"discount" validate:"omitempty,min=1,max=100"`
}

// Rating is the canonical rating pair. Both halves resolve independently.
type Rating struct {
	Value *float64 `json:"value"`
	Count *float64 `json:"count" validate:"omitempty,gte=0"`
}

// Image is one display image of a product.
type Image struct {
	URL string `json:"url" validate:"required"`
	Alt string `json:"alt"`
}

// Product is a normalized product record.
//
// Fields holds a shallow copy of every raw field as received, including the
// raw "_id", so unknown fields survive normalization. The canonical fields
// override their raw counterparts when the record is encoded.
type Product struct {
	ID      *string `validate:"required"`
	Name    *string
	Price   Price
	Rating  Rating
	Images  []Image `validate:"dive"`
	StoreID *string
	Fields  map[string]any
}

// RawID returns the raw "_id" exactly as it arrived.
func (p *Product) RawID() any {
	return p.Fields["_id"]
}

// MarshalJSON flattens passthrough fields and canonical fields into one object.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+6)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["id"] = p.ID
	if p.Name != nil {
		out["name"] = *p.Name
	}
	out["price"] = p.Price
	out["rating"] = p.Rating
	images := p.Images
	if images == nil {
		images = []Image{}
	}
	out["images"] = images
	out["storeId"] = p.StoreID
	return json.Marshal(out)
}

// Store is a normalized store record. Fields follows the same passthrough
// rules as Product.Fields.
type Store struct {
	ID     *string `validate:"required"`
	Name   *string
	Rating Rating
	Fields map[string]any
}

// RawID returns the raw "_id" exactly as it arrived.
func (s *Store) RawID() any {
	return s.Fields["_id"]
}

// MarshalJSON flattens passthrough fields and canonical fields into one object.
func (s Store) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+3)
	for k, v := range s.Fields {
		out[k] = v
	}
	out["id"] = s.ID
	out["name"] = s.Name
	out["rating"] = s.Rating
	return json.Marshal(out)
}
