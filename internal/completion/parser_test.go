package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jex/internal/engine"
)

func TestParsePrefixSplitsBaseAndPartial(t *testing.T) {
	eng, err := engine.New()
	require.NoError(t, err)
	env := eng.Env()

	tests := []struct {
		name        string
		input       string
		wantBase    string
		wantPartial string
		wantRoot    bool
	}{
		{name: "empty input", input: "", wantBase: "", wantPartial: ""},
		{name: "bare root", input: "_", wantBase: "", wantPartial: "_", wantRoot: true},
		{name: "trailing dot", input: "_.items.", wantBase: "_.items.", wantPartial: "", wantRoot: true},
		{name: "trailing bracket", input: "_.items[", wantBase: "_.items[", wantPartial: "", wantRoot: true},
		{name: "partial field", input: "_.items.na", wantBase: "_.items.", wantPartial: "na", wantRoot: true},
		{name: "partial after index", input: "_.items[0].act", wantBase: "_.items[0].", wantPartial: "act", wantRoot: true},
		{name: "bare function name", input: "siz", wantBase: "", wantPartial: "siz"},
		{name: "partial inside call", input: "size(_.ta", wantBase: "size(_.", wantPartial: "ta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePrefix(tt.input, env, "")
			assert.Equal(t, tt.wantBase, p.Base)
			assert.Equal(t, tt.wantPartial, p.Partial)
			assert.Equal(t, tt.wantRoot, p.HasRoot)
		})
	}
}

func TestParsePrefixDetectsFunctionCalls(t *testing.T) {
	eng, err := engine.New()
	require.NoError(t, err)
	env := eng.Env()

	tests := []struct {
		name      string
		input     string
		wantCalls bool
	}{
		{name: "pure navigation", input: "_.items[0].name", wantCalls: false},
		{name: "macro call", input: "_.items.filter(x, x.active).", wantCalls: true},
		{name: "global call", input: "size(_.tags).", wantCalls: true},
		{name: "incomplete call falls back to string hint", input: "_.items.filter(x, x.", wantCalls: true},
		{name: "comparison only", input: "_.count >", wantCalls: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePrefix(tt.input, env, "")
			assert.Equal(t, tt.wantCalls, p.HasCalls)
		})
	}
}

func TestPrefixSplice(t *testing.T) {
	eng, err := engine.New()
	require.NoError(t, err)
	env := eng.Env()

	tests := []struct {
		name      string
		input     string
		candidate string
		want      string
	}{
		{name: "full-path candidate replaces partial", input: "_.ite", candidate: "_.items", want: "_.items"},
		{name: "candidate after trailing dot", input: "_.items.", candidate: "_.items[0]", want: "_.items[0]"},
		{name: "function spliced over bare partial", input: "siz", candidate: "size", want: "size"},
		{name: "non-matching candidate appended to base", input: "_.items.na", candidate: "name", want: "_.items.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePrefix(tt.input, env, "")
			assert.Equal(t, tt.want, p.Splice(tt.candidate))
		})
	}
}

func TestMatchPrefix(t *testing.T) {
	p := ParsePrefix("  _.items  ", nil, "")
	assert.Equal(t, "_.items", p.MatchPrefix())
}

func TestParsePrefixConfiguredBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		boundaries  string
		wantBase    string
		wantPartial string
	}{
		{name: "empty set falls back to defaults", input: "_.items.na", boundaries: "", wantBase: "_.items.", wantPartial: "na"},
		{name: "dot only ignores brackets", input: "_.items[0", boundaries: ".", wantBase: "_.", wantPartial: "items[0"},
		{name: "extra boundary splits there", input: "_.a-b", boundaries: ".|()[]-", wantBase: "_.a-", wantPartial: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePrefix(tt.input, nil, tt.boundaries)
			assert.Equal(t, tt.wantBase, p.Base)
			assert.Equal(t, tt.wantPartial, p.Partial)
		})
	}
}
