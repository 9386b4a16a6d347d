// Package completion builds the autocomplete candidate index and parses the
// expression under the cursor. The index is computed once per loaded document
// and consumed by the suggestion loader in fixed-size windows, so documents
// with hundreds of thousands of nodes never block the event loop.
package completion

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/oakwood-commons/jex/internal/engine"
	"github.com/oakwood-commons/jex/internal/formatter"
)

// Index is the precomputed candidate source: every reachable node path of the
// document rendered as a navigation expression, in document order, followed
// by the function names discovered from the engine environment. It satisfies
// the loader's CandidateSource contract (known size, windowed access).
type Index struct {
	candidates []string
}

// BuildIndex walks document in pre-order and collects one navigation
// expression per node (`_`, `_.a`, `_.a[0]`, ...). Object members are visited
// in sorted key order, matching the result pane. When env is non-nil the
// engine's function names are appended after the path candidates.
func BuildIndex(document any, env *cel.Env) *Index {
	ix := &Index{}
	ix.walk(document, formatter.RootPath)
	if env != nil {
		ix.candidates = append(ix.candidates, engine.FunctionNames(env)...)
	}
	return ix
}

func (ix *Index) walk(value any, path string) {
	ix.candidates = append(ix.candidates, path)
	switch v := value.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			ix.walk(v[k], formatter.ChildPath(path, k))
		}
	case []any:
		for i, elem := range v {
			ix.walk(elem, formatter.IndexPath(path, i))
		}
	}
}

// Size returns the total number of candidates.
func (ix *Index) Size() int {
	return len(ix.candidates)
}

// Window returns up to limit candidates starting at offset, in index order.
func (ix *Index) Window(offset, limit int) ([]string, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window: offset %d, limit %d", offset, limit)
	}
	if offset >= len(ix.candidates) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ix.candidates) {
		end = len(ix.candidates)
	}
	return ix.candidates[offset:end], nil
}

// Candidates exposes the full candidate list, for tests and one-shot use.
func (ix *Index) Candidates() []string {
	return ix.candidates
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
