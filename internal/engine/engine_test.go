package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() map[string]any {
	return map[string]any{
		"name": "jex",
		"tags": []any{"json", "yaml", "toml"},
		"nested": map[string]any{
			"depth": float64(2),
			"ok":    true,
		},
		"items": []any{
			map[string]any{"id": float64(1), "active": true},
			map[string]any{"id": float64(2), "active": false},
		},
	}
}

func TestCelEvaluateNavigation(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "root passthrough", expr: "_", want: testDocument()},
		{name: "field select", expr: "_.name", want: "jex"},
		{name: "array index", expr: "_.tags[0]", want: "json"},
		{name: "nested field", expr: "_.nested.depth", want: float64(2)},
		{name: "bool leaf", expr: "_.nested.ok", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.Evaluate(tt.expr, testDocument())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCelEvaluateTransforms(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	t.Run("filter macro", func(t *testing.T) {
		got, err := eng.Evaluate("_.items.filter(x, x.active)", testDocument())
		require.NoError(t, err)

		list, ok := got.([]any)
		require.True(t, ok, "filter result should convert to []any, got %T", got)
		require.Len(t, list, 1)
		item, ok := list[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1), item["id"])
	})

	t.Run("map macro", func(t *testing.T) {
		got, err := eng.Evaluate("_.tags.map(s, s.size())", testDocument())
		require.NoError(t, err)

		list, ok := got.([]any)
		require.True(t, ok)
		assert.Equal(t, []any{int64(4), int64(4), int64(4)}, list)
	})

	t.Run("size", func(t *testing.T) {
		got, err := eng.Evaluate("size(_.tags)", testDocument())
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)
	})
}

func TestCelEvaluateErrors(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
	}{
		{name: "incomplete expression", expr: "_.items["},
		{name: "unknown identifier", expr: "bogus.path"},
		{name: "trailing dot", expr: "_.items."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Evaluate(tt.expr, testDocument())
			assert.Error(t, err, "expression %q must report, not panic", tt.expr)
		})
	}

	t.Run("runtime error on missing key", func(t *testing.T) {
		_, err := eng.Evaluate("_.missing.deeper", testDocument())
		assert.Error(t, err)
	})
}

func TestCelEvaluateNullResult(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	got, err := eng.Evaluate("_.maybe", map[string]any{"maybe": nil})
	require.NoError(t, err)
	assert.Nil(t, got, "CEL null converts to Go nil")
}

func TestFunctionNames(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	names := FunctionNames(eng.Env())
	require.NotEmpty(t, names)

	assert.Contains(t, names, "size")
	assert.Contains(t, names, "filter")
	assert.Contains(t, names, "map")
	assert.Contains(t, names, "has")

	for _, n := range names {
		assert.False(t, isOperator(n), "operator %q leaked into discovery", n)
	}

	// Sorted and deduplicated.
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
