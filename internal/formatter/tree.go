package formatter

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// maxArrayInline is the largest scalar array rendered inline as [a, b, c]
// instead of as a branch with indexed children.
const maxArrayInline = 3

// FormatTree renders a value as an ASCII tree for one-shot output. Maps
// become branches with keys as labels, arrays show indexed children, and
// short scalar arrays are inlined at the parent.
func FormatTree(value any) string {
	tree := treeprint.New()
	buildTree(tree, value)
	return tree.String()
}

func buildTree(branch treeprint.Tree, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			addTreeNode(branch, k, v[k])
		}
	case []any:
		for i, elem := range v {
			addTreeNode(branch, fmt.Sprintf("[%d]", i), elem)
		}
	default:
		branch.AddNode(treeScalar(v))
	}
}

func addTreeNode(branch treeprint.Tree, key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			branch.AddNode(key + ": {}")
			return
		}
		buildTree(branch.AddBranch(key), v)

	case []any:
		switch {
		case len(v) == 0:
			branch.AddNode(key + ": []")
		case isScalarArray(v) && len(v) <= maxArrayInline:
			branch.AddNode(key + ": " + inlineArray(v))
		case isScalarArray(v):
			branch.AddNode(fmt.Sprintf("%s: [%d items]", key, len(v)))
		default:
			buildTree(branch.AddBranch(key), v)
		}

	default:
		branch.AddNode(key + ": " + treeScalar(v))
	}
}

func isScalarArray(arr []any) bool {
	for _, elem := range arr {
		switch elem.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func inlineArray(arr []any) string {
	parts := make([]string, len(arr))
	for i, elem := range arr {
		parts[i] = treeScalar(elem)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func treeScalar(v any) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
