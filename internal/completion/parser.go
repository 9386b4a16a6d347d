package completion

import (
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// DefaultTokenBoundaries are the characters that end the token under
// completion when no word_breaks setting is configured.
const DefaultTokenBoundaries = ".|()[]"

// Prefix is the parsed shape of the expression under the cursor. Base is the
// text up to the last complete navigation step, Partial the token being
// completed. Accepting a candidate splices it over Partial.
type Prefix struct {
	// Input is the original expression text.
	Input string
	// Base is the expression up to and including the last token boundary.
	Base string
	// Partial is the incomplete token after the last boundary, if any.
	Partial string
	// HasRoot reports whether the input starts from the document root `_`.
	HasRoot bool
	// HasCalls reports whether the base expression contains function calls,
	// in which case plain path candidates no longer apply.
	HasCalls bool
}

// ParsePrefix splits input into base and partial token and, where the base
// parses as CEL, inspects its AST for function calls. boundaries is the
// configured word_breaks set; empty falls back to DefaultTokenBoundaries.
// Incomplete input (a trailing `.` or `[`, or a base that does not parse) is
// expected during typing; the string-level split is the fallback the AST
// walk refines.
func ParsePrefix(input string, env *cel.Env, boundaries string) Prefix {
	if boundaries == "" {
		boundaries = DefaultTokenBoundaries
	}
	trimmed := strings.TrimSpace(input)
	p := Prefix{
		Input:   input,
		HasRoot: strings.HasPrefix(trimmed, "_"),
	}

	if trimmed == "" {
		return p
	}

	boundary := strings.LastIndexAny(trimmed, boundaries)
	if boundary >= 0 && boundary < len(trimmed)-1 {
		p.Partial = trimmed[boundary+1:]
		p.Base = trimmed[:boundary+1]
	} else if boundary == len(trimmed)-1 {
		p.Base = trimmed
	} else {
		// No boundary at all: the whole input is the token under completion.
		p.Partial = trimmed
	}

	base := strings.TrimRight(p.Base, ".[")
	if base == "" || base == "_" || env == nil {
		return p
	}

	ast, issues := env.Parse(base)
	if issues != nil && issues.Err() != nil {
		// Parse failed (incomplete expression); fall back to a string hint.
		p.HasCalls = strings.Contains(base, "(")
		return p
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err == nil {
		p.HasCalls = hasCalls(parsed.GetExpr())
	}
	return p
}

// MatchPrefix is the loader-facing prefix for candidate matching: the full
// trimmed expression text, so path candidates (which are themselves full
// navigation expressions) match positionally.
func (p Prefix) MatchPrefix() string {
	return strings.TrimSpace(p.Input)
}

// Splice replaces the partial token in the input with candidate and returns
// the new expression text. Path candidates are full navigation expressions,
// so a candidate that extends the base simply becomes the new text; bare
// candidates (function names) are appended to the base.
func (p Prefix) Splice(candidate string) string {
	base := strings.TrimRight(p.Base, ".[")
	if base != "" && strings.HasPrefix(candidate, base) {
		return candidate
	}
	return p.Base + candidate
}

// hasCalls walks the parsed proto looking for real function calls, skipping
// operator-style internals.
func hasCalls(expr *exprpb.Expr) bool {
	if expr == nil {
		return false
	}

	switch expr.ExprKind.(type) {
	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		if call == nil {
			return false
		}
		if !isOperatorName(call.Function) {
			return true
		}
		for _, arg := range call.Args {
			if hasCalls(arg) {
				return true
			}
		}
		if call.Target != nil && hasCalls(call.Target) {
			return true
		}

	case *exprpb.Expr_SelectExpr:
		sel := expr.GetSelectExpr()
		if sel != nil && sel.Operand != nil {
			return hasCalls(sel.Operand)
		}

	case *exprpb.Expr_ComprehensionExpr:
		// Macro expansions (filter, map, ...) land here.
		return true

	case *exprpb.Expr_ListExpr:
		for _, elem := range expr.GetListExpr().Elements {
			if hasCalls(elem) {
				return true
			}
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range expr.GetStructExpr().Entries {
			if hasCalls(entry.GetMapKey()) || hasCalls(entry.GetValue()) {
				return true
			}
		}
	}

	return false
}

// isOperatorName reports whether a call name is an operator rather than a
// user-visible function.
func isOperatorName(name string) bool {
	operators := map[string]bool{
		"_[_]": true, "_==_": true, "_!=_": true,
		"_<_": true, "_<=_": true, "_>_": true, "_>=_": true,
		"_+_": true, "_-_": true, "_*_": true, "_/_": true, "_%_": true,
		"_&&_": true, "_||_": true, "!_": true, "-_": true,
		"_?_:_": true, "_in_": true, "@in": true,
	}
	return operators[name]
}
