package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolvePath_FirstPresentWins(t *testing.T) {
	src := map[string]any{
		"a": nil,
		"b": map[string]any{"c": "nested"},
		"d": "flat",
	}

	v, ok := ResolvePath(src, "a", "missing", "b.c", "d")
	assert.True(t, ok)
	assert.Equal(t, "nested", v)
}

func TestResolvePath_ZeroValuesArePresent(t *testing.T) {
	tests := []struct {
		name string
		val  any
	}{
		{"zero", 0.0},
		{"false", false},
		{"empty string", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ResolvePath(map[string]any{"x": tt.val, "y": "fallback"}, "x", "y")
			assert.True(t, ok)
			assert.Equal(t, tt.val, v)
		})
	}
}

func TestResolvePath_NonObjectSource(t *testing.T) {
	for _, src := range []any{nil, "str", 42.0, []any{map[string]any{"x": 1}}} {
		_, ok := ResolvePath(src, "x")
		assert.False(t, ok, "source %v", src)
	}
}

func TestResolvePath_PathThroughScalar(t *testing.T) {
	_, ok := ResolvePath(map[string]any{"price": 10.0}, "price.current")
	assert.False(t, ok)
}

func TestResolvePath_MongoDocuments(t *testing.T) {
	src := bson.M{
		"price": primitive.D{{Key: "current", Value: int32(99)}},
	}
	v, ok := ResolvePath(src, "price.current")
	assert.True(t, ok)
	assert.Equal(t, int32(99), v)
}

func TestResolveGroup_DoesNotMixGroups(t *testing.T) {
	groups := []fieldGroup{group("a.p", "a.s"), group("b.p", "b.s")}
	src := map[string]any{
		"a": map[string]any{"p": 1.0},
		"b": map[string]any{"p": 2.0, "s": 3.0},
	}

	p, s := resolveGroup(src, groups)
	assert.Equal(t, 1.0, p)
	assert.Nil(t, s)
}

func TestResolveGroup_SecondaryOnly(t *testing.T) {
	groups := []fieldGroup{group("a.p", "a.s"), group("b.p", "b.s")}
	p, s := resolveGroup(map[string]any{"b": map[string]any{"s": 7.0}}, groups)
	assert.Nil(t, p)
	assert.Equal(t, 7.0, s)
}
