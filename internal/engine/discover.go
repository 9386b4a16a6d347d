package engine

import (
	"sort"

	"github.com/google/cel-go/cel"
)

// FunctionNames returns the callable function and macro names declared in
// env, sorted and deduplicated, with operator-style internals filtered out.
// These feed the completion candidate index, so the environment is the single
// source of truth: a newly registered extension function surfaces in the
// suggestion popup without any manual list to maintain.
func FunctionNames(env *cel.Env) []string {
	seen := make(map[string]bool)
	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		seen[fn.Name()] = true
	}
	for _, m := range env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		seen[m.Function()] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
