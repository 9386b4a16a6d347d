package formatter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestFormatRowsExpanded(t *testing.T) {
	doc := mustDecode(t, `{"a":[1,2,3],"b":"x"}`)

	rows := FormatRows(doc, NewFoldState(-1))
	lines := PlainText(rows, 2)

	assert.Equal(t, []string{
		"{",
		`  "a": [`,
		"    1,",
		"    2,",
		"    3",
		"  ],",
		`  "b": "x"`,
		"}",
	}, lines)
}

func TestFormatRowsStyleClasses(t *testing.T) {
	doc := mustDecode(t, `{"s":"str","n":1.5,"b":true,"z":null,"o":{},"a":[]}`)

	rows := FormatRows(doc, NewFoldState(-1))

	kinds := map[string]RowKind{}
	for _, r := range rows {
		if r.Key != "" {
			kinds[r.Key] = r.Kind
		}
	}
	assert.Equal(t, KindString, kinds["s"])
	assert.Equal(t, KindNumber, kinds["n"])
	assert.Equal(t, KindBool, kinds["b"])
	assert.Equal(t, KindNull, kinds["z"])
	assert.Equal(t, KindBrace, kinds["o"])
	assert.Equal(t, KindBracket, kinds["a"])
}

func TestFormatRowsCollapsedRoot(t *testing.T) {
	doc := mustDecode(t, `[1,2,3]`)

	folds := NewFoldState(-1)
	folds.Toggle(RootPath, 0)
	rows := FormatRows(doc, folds)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Collapsed)
	assert.Equal(t, CollapsedArray, rows[0].Text)
	assert.Equal(t, KindBracket, rows[0].Kind)
}

func TestFormatRowsCollapsedSubtree(t *testing.T) {
	doc := mustDecode(t, `{"a":[1,2,3],"b":"x"}`)

	folds := NewFoldState(-1)
	folds.Collapse("_.a")
	lines := PlainText(FormatRows(doc, folds), 2)

	assert.Equal(t, []string{
		"{",
		`  "a": […],`,
		`  "b": "x"`,
		"}",
	}, lines)
}

func TestFormatRowsIsPure(t *testing.T) {
	doc := mustDecode(t, `{"a":{"b":[1,{"c":2}]},"d":null}`)
	folds := NewFoldState(-1)
	folds.Collapse("_.a.b")

	first := FormatRows(doc, folds)
	second := FormatRows(doc, folds)

	assert.Equal(t, first, second, "same value, folds, and indent must format identically")
}

func TestFormatRowsDepthPolicy(t *testing.T) {
	doc := mustDecode(t, `{"top":{"mid":{"leaf":1}}}`)

	// Depth 1 policy: containers at depth >= 1 start collapsed.
	rows := FormatRows(doc, NewFoldState(1))
	lines := PlainText(rows, 2)

	assert.Equal(t, []string{
		"{",
		`  "top": {…}`,
		"}",
	}, lines)
}

func TestCollapseAllRoundTrip(t *testing.T) {
	doc := mustDecode(t, `{"a":[1,2,3],"b":{"c":true},"d":"leaf"}`)

	folds := NewFoldState(-1)
	expanded := FormatRows(doc, folds)
	require.Greater(t, len(expanded), 1)

	// Collapse every container path seen in the expanded sequence.
	for _, r := range expanded {
		if r.Kind == KindBrace || r.Kind == KindBracket {
			folds.Collapse(r.Path)
		}
	}
	collapsed := FormatRows(doc, folds)
	require.Len(t, collapsed, 1, "collapsed root swallows every nested container")
	assert.Equal(t, CollapsedObject, collapsed[0].Text)

	// Collapsing already-collapsed paths again changes nothing.
	for _, r := range expanded {
		if r.Kind == KindBrace || r.Kind == KindBracket {
			folds.Collapse(r.Path)
		}
	}
	assert.Equal(t, collapsed, FormatRows(doc, folds))
}

func TestRowPathsAreNavigationExpressions(t *testing.T) {
	doc := mustDecode(t, `{"items":[{"name":"a"}],"with space":1}`)

	rows := FormatRows(doc, NewFoldState(-1))

	paths := make([]string, 0, len(rows))
	for _, r := range rows {
		paths = append(paths, r.Path)
	}
	assert.Contains(t, paths, "_.items[0].name")
	assert.Contains(t, paths, `_["with space"]`)
}

func TestPlainTextIndent(t *testing.T) {
	doc := mustDecode(t, `{"a":1}`)
	rows := FormatRows(doc, NewFoldState(-1))

	wide := PlainText(rows, 4)
	assert.Equal(t, `    "a": 1`, wide[1])

	flat := PlainText(rows, 0)
	assert.Equal(t, `"a": 1`, flat[1])
}

func TestScalarRowNumberFormats(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "integral float", in: float64(42), want: "42"},
		{name: "fractional float", in: float64(1.25), want: "1.25"},
		{name: "int64", in: int64(-7), want: "-7"},
		{name: "uint64", in: uint64(9), want: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text := scalarRow(tt.in)
			assert.Equal(t, KindNumber, kind)
			assert.Equal(t, tt.want, text)
		})
	}
}
