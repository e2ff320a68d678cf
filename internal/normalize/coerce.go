package normalize

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toNumber converts a resolved raw value to a finite float. Numeric strings
// and Decimal128 values are accepted, booleans are not.
func toNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil, bool:
		return nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		n, err := cast.ToFloat64E(s)
		if err != nil {
			return nil
		}
		f = n
	case primitive.Decimal128:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil
		}
		f = d.InexactFloat64()
	default:
		if obj, ok := asObject(x); ok {
			// extended JSON, as written by mongoexport
			s, ok := obj["$numberDecimal"].(string)
			if !ok {
				return nil
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil
			}
			f = d.InexactFloat64()
			break
		}
		n, err := cast.ToFloat64E(x)
		if err != nil {
			return nil
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// toIDString converts a resolved raw id to its string form: numbers in
// decimal, ObjectIDs and extended-JSON {"$oid": ...} in hex.
func toIDString(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case primitive.ObjectID:
		s = x.Hex()
	case *primitive.ObjectID:
		if x == nil {
			return nil
		}
		s = x.Hex()
	default:
		if obj, ok := asObject(x); ok {
			oid, ok := obj["$oid"].(string)
			if !ok {
				return nil
			}
			s = oid
			break
		}
		if _, ok := asArray(x); ok {
			return nil
		}
		str, err := cast.ToStringE(x)
		if err != nil {
			return nil
		}
		s = str
	}
	return &s
}

// toText returns v when it is a string.
func toText(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
