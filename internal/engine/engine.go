// Package engine wraps the filter-evaluation engine the interactive pipeline
// calls into. The pipeline treats it as a black box: an expression and a
// document go in, a plain Go value or an error message comes out. The
// implementation is CEL with the document bound to the variable `_`, so
// `_.items[0].name` navigates and `_.items.filter(x, x.active)` transforms.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Engine is the single call contract the evaluator depends on. Error messages
// are surfaced to the user verbatim, never parsed.
type Engine interface {
	Evaluate(expr string, document any) (any, error)
}

// Cel compiles and evaluates CEL expressions against a document.
type Cel struct {
	env *cel.Env
}

// New builds a Cel engine with the standard extension libraries loaded. A
// construction failure means the engine is unavailable, not that any
// particular expression is bad.
func New() (*Cel, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Cel{env: env}, nil
}

// Env exposes the environment for completion-side introspection (function
// discovery, prefix parsing).
func (e *Cel) Env() *cel.Env {
	return e.env
}

// newEnv creates the CEL environment: the document variable plus the common
// extension libraries, so discovery surfaces a rich function set.
func newEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate compiles expr and runs it with document bound to `_`. The result
// comes back as plain Go types (map[string]any, []any, scalars). Compile and
// runtime failures are both expression errors; the caller shows the message
// and keeps the previous result visible.
func (e *Cel) Evaluate(expr string, document any) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	result, _, err := prg.Eval(map[string]any{
		"_": document,
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}

	converted := ToGo(result)
	if refVal, ok := converted.(ref.Val); ok {
		if valFunc, ok := refVal.(interface{ Value() any }); ok {
			converted = valFunc.Value()
		}
	}
	return converted, nil
}

// ToGo converts CEL values to native Go types recursively, covering both the
// primitive types and the collection wrappers CEL hands back.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	if valuer, ok := val.(interface{ Value() any }); ok {
		inner := valuer.Value()

		if refSlice, ok := inner.([]ref.Val); ok {
			result := make([]any, len(refSlice))
			for i, elem := range refSlice {
				result[i] = ToGo(elem)
			}
			return result
		}

		if slice, ok := inner.([]any); ok {
			result := make([]any, len(slice))
			for i, elem := range slice {
				if refVal, ok := elem.(ref.Val); ok {
					result[i] = ToGo(refVal)
				} else if elemMap, ok := elem.(map[string]any); ok {
					result[i] = convertMapValues(elemMap)
				} else {
					result[i] = elem
				}
			}
			return result
		}

		if m, ok := inner.(map[string]any); ok {
			return convertMapValues(m)
		}

		// CEL map literals come back keyed by ref.Val.
		if m, ok := inner.(map[ref.Val]ref.Val); ok {
			result := make(map[string]any)
			for k, v := range m {
				keyStr := ""
				if keyVal, ok := k.(interface{ Value() any }); ok {
					keyStr = fmt.Sprintf("%v", keyVal.Value())
				} else {
					keyStr = fmt.Sprintf("%v", k)
				}
				result[keyStr] = ToGo(v)
			}
			return result
		}

		return inner
	}

	return val
}

// convertMapValues recursively converts map values from CEL types.
func convertMapValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if refVal, ok := v.(ref.Val); ok {
			result[k] = ToGo(refVal)
		} else if innerMap, ok := v.(map[string]any); ok {
			result[k] = convertMapValues(innerMap)
		} else if slice, ok := v.([]any); ok {
			converted := make([]any, len(slice))
			for i, elem := range slice {
				if refVal, ok := elem.(ref.Val); ok {
					converted[i] = ToGo(refVal)
				} else {
					converted[i] = elem
				}
			}
			result[k] = converted
		} else {
			result[k] = v
		}
	}
	return result
}

// isOperator filters out operator-style declarations that should not surface
// as completion candidates.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	operators := map[string]bool{
		"!_": true, "-_": true, "@in": true,
		"_!=_": true, "_%_": true, "_&&_": true,
		"_*_": true, "_+_": true, "_-_": true,
		"_/_": true, "_<=_": true, "_<_": true,
		"_==_": true, "_>=_": true, "_>_": true,
		"_?_:_": true, "_[_]": true, "_||_": true,
		"_in_": true,
	}
	return operators[name]
}
