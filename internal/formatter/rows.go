// Package formatter turns an evaluation result into a foldable, line-oriented
// row sequence for the result pane, plus the one-shot output renderings. It
// is pure: the same value, fold state, and options always produce the same
// rows, so the caller re-formats on outcome or fold changes only, never per
// keystroke.
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RowKind classifies a row's value portion for styling.
type RowKind int

const (
	// KindBrace covers `{`, `}`, `{}` and the collapsed `{…}` placeholder.
	KindBrace RowKind = iota
	// KindBracket covers `[`, `]`, `[]` and the collapsed `[…]` placeholder.
	KindBracket
	KindString
	KindNumber
	KindBool
	KindNull
)

// Placeholder rows for collapsed containers.
const (
	CollapsedObject = "{…}"
	CollapsedArray  = "[…]"
)

// RootPath is the navigation path of the document root. Child paths use the
// same syntax the completion candidates use, so a row's path is directly
// usable as a filter expression.
const RootPath = "_"

// Row is one visible line of the lazy tree view. Depth positions it
// (indentation is depth × the configured indent width), Key is the object
// member name when there is one, Text is the value literal or delimiter, and
// Collapsed marks a placeholder row standing in for a whole subtree.
type Row struct {
	Path      string
	Depth     int
	Key       string
	Kind      RowKind
	Text      string
	Collapsed bool
	Comma     bool
}

// FormatRows renders value into its visible row sequence under folds. A
// container whose path is collapsed in folds becomes a single placeholder
// row; an expanded container contributes an open delimiter row, its
// children's rows, and a close delimiter row. Object keys are emitted in
// sorted order so the sequence is stable across calls.
func FormatRows(value any, folds *FoldState) []Row {
	var rows []Row
	walkRows(&rows, value, RootPath, "", 0, false, folds)
	return rows
}

func walkRows(out *[]Row, value any, path, key string, depth int, comma bool, folds *FoldState) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBrace, Text: "{}", Comma: comma})
			return
		}
		if folds.Collapsed(path, depth) {
			*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBrace, Text: CollapsedObject, Collapsed: true, Comma: comma})
			return
		}
		*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBrace, Text: "{"})
		keys := sortedKeys(v)
		for i, k := range keys {
			walkRows(out, v[k], ChildPath(path, k), k, depth+1, i < len(keys)-1, folds)
		}
		*out = append(*out, Row{Path: path, Depth: depth, Kind: KindBrace, Text: "}", Comma: comma})

	case []any:
		if len(v) == 0 {
			*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBracket, Text: "[]", Comma: comma})
			return
		}
		if folds.Collapsed(path, depth) {
			*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBracket, Text: CollapsedArray, Collapsed: true, Comma: comma})
			return
		}
		*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: KindBracket, Text: "["})
		for i, elem := range v {
			walkRows(out, elem, IndexPath(path, i), "", depth+1, i < len(v)-1, folds)
		}
		*out = append(*out, Row{Path: path, Depth: depth, Kind: KindBracket, Text: "]", Comma: comma})

	default:
		kind, text := scalarRow(v)
		*out = append(*out, Row{Path: path, Depth: depth, Key: key, Kind: kind, Text: text, Comma: comma})
	}
}

// scalarRow renders a leaf value as its JSON literal and style class.
func scalarRow(v any) (RowKind, string) {
	switch val := v.(type) {
	case nil:
		return KindNull, "null"
	case bool:
		if val {
			return KindBool, "true"
		}
		return KindBool, "false"
	case string:
		return KindString, strconv.Quote(val)
	case float64:
		if val == float64(int64(val)) {
			return KindNumber, strconv.FormatInt(int64(val), 10)
		}
		return KindNumber, strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return scalarRow(float64(val))
	case int:
		return KindNumber, strconv.Itoa(val)
	case int32:
		return KindNumber, strconv.FormatInt(int64(val), 10)
	case int64:
		return KindNumber, strconv.FormatInt(val, 10)
	case uint:
		return KindNumber, strconv.FormatUint(uint64(val), 10)
	case uint32:
		return KindNumber, strconv.FormatUint(uint64(val), 10)
	case uint64:
		return KindNumber, strconv.FormatUint(val, 10)
	default:
		return KindString, strconv.Quote(fmt.Sprintf("%v", val))
	}
}

// ChildPath returns the navigation path of an object member under parent.
// Bare identifiers use dot syntax; anything else is bracketed and quoted.
func ChildPath(parent, key string) string {
	if isBareKey(key) {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}

// IndexPath returns the navigation path of an array element under parent.
func IndexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PlainText renders rows to unstyled lines with the given indent width,
// including keys and trailing commas. It is what the clipboard copy and the
// row tests consume; the interactive view styles the same fields instead.
func PlainText(rows []Row, indent int) []string {
	if indent < 0 {
		indent = 0
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", indent*r.Depth))
		if r.Key != "" {
			b.WriteString(strconv.Quote(r.Key))
			b.WriteString(": ")
		}
		b.WriteString(r.Text)
		if r.Comma {
			b.WriteString(",")
		}
		lines[i] = b.String()
	}
	return lines
}
