package schemagate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"catalog-normalizer/internal/model"
	"catalog-normalizer/internal/normalize"
)

// go-playground/validator/v10: struct tags on the canonical model carry the
// acceptance rules (id present, image urls present, discount in range).
var validate = validator.New()

// Rejection records a rejected record with reason.
type Rejection struct {
	Scope  string `json:"scope"`  // e.g. "product:12" (batch index) or "store:abc" (id)
	Reason string `json:"reason"` // e.g. "id missing"
}

const (
	ReasonNotObject   = "record.not_object"
	ReasonIDMissing   = "id missing"
	ReasonUnencodable = "record.unencodable"
)

// GateProduct normalizes the raw record at position index and decides
// whether the pipeline accepts it.
func GateProduct(index int, raw any) (*model.Product, *Rejection) {
	p := normalize.Product(raw)
	if p == nil {
		return nil, reject(model.KindProduct, index, nil, ReasonNotObject)
	}
	if valid, reason := ValidateProduct(p); !valid {
		return nil, reject(model.KindProduct, index, p.ID, reason)
	}
	if !encodable(p) {
		return nil, reject(model.KindProduct, index, p.ID, ReasonUnencodable)
	}
	return p, nil
}

// GateStore is GateProduct for stores.
func GateStore(index int, raw any) (*model.Store, *Rejection) {
	s := normalize.Store(raw)
	if s == nil {
		return nil, reject(model.KindStore, index, nil, ReasonNotObject)
	}
	if valid, reason := ValidateStore(s); !valid {
		return nil, reject(model.KindStore, index, s.ID, reason)
	}
	if !encodable(s) {
		return nil, reject(model.KindStore, index, s.ID, ReasonUnencodable)
	}
	return s, nil
}

// ValidateProduct performs record-level validation of a normalized product.
func ValidateProduct(p *model.Product) (valid bool, rejectReason string) {
	if p.ID == nil || strings.TrimSpace(*p.ID) == "" {
		return false, ReasonIDMissing
	}
	if err := validate.Struct(p); err != nil {
		return false, describe(err)
	}
	return true, ""
}

// ValidateStore performs record-level validation of a normalized store.
func ValidateStore(s *model.Store) (valid bool, rejectReason string) {
	if s.ID == nil || strings.TrimSpace(*s.ID) == "" {
		return false, ReasonIDMissing
	}
	if err := validate.Struct(s); err != nil {
		return false, describe(err)
	}
	return true, ""
}

// encodable reports whether v survives JSON encoding. Passthrough fields may
// hold values JSON cannot carry, such as a NaN double from Mongo.
func encodable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}

// describe turns the first validation error into a short dotted reason such
// as "price.discount max".
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns) + " " + fe.Tag()
}

// reject scopes a rejection by id when known, else by batch position.
func reject(kind model.Kind, index int, id *string, reason string) *Rejection {
	scope := string(kind) + ":" + strconv.Itoa(index)
	if id != nil && *id != "" {
		scope = string(kind) + ":" + *id
	}
	zap.L().Debug("SchemaGate: rejected record",
		zap.String("scope", scope),
		zap.String("reason", reason),
	)
	return &Rejection{Scope: scope, Reason: reason}
}

// String implements fmt.Stringer.
func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Scope, r.Reason)
}
