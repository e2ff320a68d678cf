// Package normalize turns raw storefront product and store records into the
// canonical model. Every function here is pure and total: malformed input
// yields nil, empty or all-nil results, never an error or a panic.
package normalize

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accessor reads one candidate field from a raw object. The boolean reports
// whether the field is present and non-nil.
type Accessor func(obj map[string]any) (any, bool)

// Field returns an accessor for a dot-separated path such as "price.current".
// Intermediate values may be JSON objects or MongoDB documents.
func Field(path string) Accessor {
	parts := strings.Split(path, ".")
	return func(obj map[string]any) (any, bool) {
		var cur any = obj
		for _, p := range parts {
			m, ok := asObject(cur)
			if !ok {
				return nil, false
			}
			v, ok := m[p]
			if !ok {
				return nil, false
			}
			cur = v
		}
		return cur, cur != nil
	}
}

// Fields builds one accessor per path, in order.
func Fields(paths ...string) []Accessor {
	out := make([]Accessor, len(paths))
	for i, p := range paths {
		out[i] = Field(p)
	}
	return out
}

// Resolve evaluates accessors left to right against src and returns the first
// present value. A src that is not an object resolves to absent.
//
// Only missing keys and nil count as absent; 0, false and "" are values.
func Resolve(src any, accessors ...Accessor) (any, bool) {
	obj, ok := asObject(src)
	if !ok {
		return nil, false
	}
	for _, acc := range accessors {
		if v, ok := acc(obj); ok {
			return v, true
		}
	}
	return nil, false
}

// ResolvePath is Resolve over plain dot paths.
func ResolvePath(src any, paths ...string) (any, bool) {
	return Resolve(src, Fields(paths...)...)
}

// fieldGroup pairs a primary field with the secondary field of the same
// schema generation. A group is selected by its primary field alone.
type fieldGroup struct {
	primary   Accessor
	secondary Accessor
}

func group(primary, secondary string) fieldGroup {
	return fieldGroup{primary: Field(primary), secondary: Field(secondary)}
}

// resolveGroup returns the primary and secondary values of the first group
// whose primary field is present. Fields of different groups are never
// mixed. When no primary is present anywhere, the first present secondary
// is returned on its own.
func resolveGroup(src any, groups []fieldGroup) (primary, secondary any) {
	if _, ok := asObject(src); !ok {
		return nil, nil
	}
	for _, g := range groups {
		if p, ok := Resolve(src, g.primary); ok {
			s, _ := Resolve(src, g.secondary)
			return p, s
		}
	}
	for _, g := range groups {
		if s, ok := Resolve(src, g.secondary); ok {
			return nil, s
		}
	}
	return nil, nil
}

// asObject views v as a field map. JSON objects and the MongoDB driver's
// document types are accepted.
func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, o != nil
	case bson.M:
		return map[string]any(o), o != nil
	case primitive.D:
		m := make(map[string]any, len(o))
		for _, e := range o {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

// asArray views v as a list. JSON arrays and MongoDB arrays are accepted.
func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, a != nil
	case primitive.A:
		return []any(a), a != nil
	case []map[string]any:
		out := make([]any, len(a))
		for i, m := range a {
			out[i] = m
		}
		return out, a != nil
	default:
		return nil, false
	}
}
