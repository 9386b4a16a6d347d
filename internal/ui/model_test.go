package ui

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jex/internal/completion"
	"github.com/oakwood-commons/jex/internal/engine"
	"github.com/oakwood-commons/jex/internal/pipeline"
)

func testDoc() map[string]any {
	return map[string]any{
		"a": []any{float64(1), float64(2), float64(3)},
		"b": "x",
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	eng, err := engine.New()
	require.NoError(t, err)

	doc := testDoc()
	idx := completion.BuildIndex(doc, eng.Env())
	parse := func(s string) completion.Prefix { return completion.ParsePrefix(s, eng.Env(), "") }

	m := New(doc, eng, idx, parse, Config{
		QueryDebounce:   time.Millisecond,
		ResizeDebounce:  time.Millisecond,
		SpinnerInterval: time.Millisecond,
		SuggestionLines: 3,
		ExpandDepth:     -1,
		NoColor:         true,
	})
	m.applyLayout(80, 24)
	return m
}

func press(text string, code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: text}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		_, _ = m.Update(press(string(r), r))
	}
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{}.normalize()

	assert.Equal(t, 600*time.Millisecond, cfg.QueryDebounce)
	assert.Equal(t, 200*time.Millisecond, cfg.ResizeDebounce)
	assert.Equal(t, 300*time.Millisecond, cfg.SpinnerInterval)
	assert.Equal(t, 50000, cfg.LoadChunkSize)
	assert.Equal(t, 100, cfg.ResultChunkSize)
	assert.Equal(t, 3, cfg.SuggestionLines)
	assert.Equal(t, completion.DefaultTokenBoundaries, cfg.WordBreaks)
}

func TestInitialSnapshotShowsDocument(t *testing.T) {
	m := newTestModel(t)

	snap := m.Snapshot()
	assert.True(t, snap.HasResult)
	assert.NotEmpty(t, snap.Rows)
	assert.Equal(t, "_", m.Query())
}

func TestKeystrokeStartsGenerationAndArmsDebounce(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(press(".", '.'))
	require.NotNil(t, cmd)

	snap := m.Snapshot()
	assert.Equal(t, "_.", snap.Query.Text)
	assert.Equal(t, pipeline.OutcomePending, snap.Query.Outcome.Kind)
	assert.True(t, m.queryDebounce.Armed())
}

func TestStaleDebounceFireIsNoOp(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".a")
	// Two keystrokes armed twice; only the newest identifier fires.
	_, cmd := m.Update(queryDebounceMsg{armID: 1})
	assert.Nil(t, cmd, "stale arm resolves without starting runs")
	assert.True(t, m.queryDebounce.Armed())

	_, cmd = m.Update(queryDebounceMsg{armID: 2})
	require.NotNil(t, cmd, "newest arm starts the evaluation and suggestion runs")
	assert.False(t, m.queryDebounce.Armed())
	assert.True(t, m.Snapshot().Spinner.Active)
}

func TestEvalResultOnlyCurrentGenerationApplies(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".a")
	stale := m.agg.Generation() - 1
	before := m.Snapshot()

	_, _ = m.Update(evalResultMsg{outcome: pipeline.Ok("late"), gen: stale})
	assert.Equal(t, before.Version, m.Snapshot().Version, "stale result leaves the snapshot untouched")

	_, _ = m.Update(evalResultMsg{outcome: pipeline.Ok([]any{float64(1)}), gen: m.agg.Generation()})
	snap := m.Snapshot()
	assert.Equal(t, pipeline.OutcomeOk, snap.Query.Outcome.Kind)
	assert.Equal(t, []any{float64(1)}, snap.Result)
}

func TestSuggestionChunkContinuesUntilExhausted(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".")
	m.matchPrefix = "_."

	gen := m.agg.Generation()
	msg := tea.Msg(suggestionChunkMsg{
		chunk: pipeline.Chunk{Candidates: []string{"_.a"}, Generation: gen, NextOffset: 2, More: true},
		gen:   gen,
	})

	// Drive the window chain to completion; scan commands are synchronous.
	for i := 0; i < 100; i++ {
		chunkMsg, ok := msg.(suggestionChunkMsg)
		require.True(t, ok)
		_, cmd := m.Update(chunkMsg)
		if cmd == nil {
			break
		}
		msg = cmd()
	}

	page := m.Snapshot().Suggestions
	assert.False(t, page.More)
	assert.Contains(t, page.Candidates, "_.a")
	assert.Contains(t, page.Candidates, "_.b")
}

func TestSuggestionFailureKeepsPartialResults(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".")
	gen := m.agg.Generation()
	_, _ = m.Update(suggestionChunkMsg{
		chunk: pipeline.Chunk{Candidates: []string{"_.a"}, Generation: gen, More: true},
		gen:   gen,
	})
	_, _ = m.Update(suggestionChunkMsg{err: assert.AnError, gen: gen})

	page := m.Snapshot().Suggestions
	assert.Equal(t, []string{"_.a"}, page.Candidates)
	assert.False(t, page.More)
	assert.False(t, m.Snapshot().Spinner.Active)
}

func TestSpinnerTickChainDiesWhenIdle(t *testing.T) {
	m := newTestModel(t)

	m.agg.MarkBusy(pipeline.UnitEvaluator)
	_, cmd := m.Update(spinnerTickMsg{})
	assert.NotNil(t, cmd, "active spinner keeps the tick chain alive")

	m.agg.MarkIdle(pipeline.UnitEvaluator)
	_, cmd = m.Update(spinnerTickMsg{})
	assert.Nil(t, cmd, "idle tick lets the chain die")
}

func TestFocusSwitching(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, focusEditor, m.focus)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift})
	assert.Equal(t, focusViewer, m.focus)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModShift})
	assert.Equal(t, focusEditor, m.focus)
}

func TestViewerFoldToggle(t *testing.T) {
	m := newTestModel(t)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift})
	require.Equal(t, focusViewer, m.focus)
	require.Greater(t, len(m.Snapshot().Rows), 1)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Len(t, m.Snapshot().Rows, 1, "toggling the root collapses the tree to its placeholder")

	_, _ = m.Update(tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl})
	assert.Greater(t, len(m.Snapshot().Rows), 1, "ctrl+p expands everything again")

	_, _ = m.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	assert.Len(t, m.Snapshot().Rows, 1, "ctrl+n collapses everything")
}

func TestViewerCursorMovesAndClamps(t *testing.T) {
	m := newTestModel(t)
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift})

	_, _ = m.Update(press("j", 'j'))
	_, _ = m.Update(press("j", 'j'))
	assert.Equal(t, 2, m.cursor)

	for i := 0; i < 100; i++ {
		_, _ = m.Update(press("j", 'j'))
	}
	assert.Equal(t, len(m.Snapshot().Rows)-1, m.cursor, "cursor clamps to the last row")

	for i := 0; i < 100; i++ {
		_, _ = m.Update(press("k", 'k'))
	}
	assert.Zero(t, m.cursor)
}

func TestClipboardCopies(t *testing.T) {
	copied, restore := StubPlatformActions()
	defer restore()

	m := newTestModel(t)
	typeText(t, m, ".a")

	_, _ = m.Update(tea.KeyPressMsg{Code: 'q', Mod: tea.ModCtrl})
	require.NotEmpty(t, *copied)
	assert.Equal(t, "_.a", (*copied)[0])

	_, _ = m.Update(tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl})
	require.Len(t, *copied, 2)
	assert.Contains(t, (*copied)[1], "\"a\"", "result copy is pretty-printed JSON")
}

func TestAcceptSuggestionSplicesAndRestarts(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".")
	gen := m.agg.Generation()
	_, _ = m.Update(suggestionChunkMsg{
		chunk: pipeline.Chunk{Candidates: []string{"_.a", "_.b"}, Generation: gen, More: false},
		gen:   gen,
	})
	require.True(t, m.popup)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	require.NotNil(t, cmd, "accepting re-arms the query debounce")
	assert.Equal(t, "_.a", m.Query())
	assert.Greater(t, m.agg.Generation(), gen, "acceptance is a query edit and starts a new generation")
}

func TestTabCyclesWhenNotAtEndOfLine(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".")
	gen := m.agg.Generation()
	_, _ = m.Update(suggestionChunkMsg{
		chunk: pipeline.Chunk{Candidates: []string{"_.a", "_.b"}, Generation: gen, More: false},
		gen:   gen,
	})
	m.input.SetCursor(0)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	sel, ok := m.agg.SelectedSuggestion()
	require.True(t, ok)
	assert.Equal(t, "_.b", sel, "tab mid-line cycles instead of accepting")
	assert.Equal(t, "_.", m.Query())
}

func TestEscDismissesPopup(t *testing.T) {
	m := newTestModel(t)

	typeText(t, m, ".")
	require.True(t, m.popup)

	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, m.popup)
}

func TestResizeDebounced(t *testing.T) {
	m := newTestModel(t)
	m.sized = true

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	require.NotNil(t, cmd)
	assert.Equal(t, 80, m.width, "size applies only when the debounce fires")

	_, _ = m.Update(resizeDebounceMsg{armID: 1})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40, m.height)
}

func TestOverwriteEditMode(t *testing.T) {
	m := newTestModel(t)
	m.cfg.Overwrite = true

	m.input.SetValue("_.ab")
	m.input.SetCursor(2)

	_, _ = m.Update(press("x", 'x'))
	assert.Equal(t, "_.xb", m.Query(), "overwrite replaces the character under the cursor")
}

func TestEvaluateOutcome(t *testing.T) {
	eng, err := engine.New()
	require.NoError(t, err)
	doc := testDoc()

	tests := []struct {
		name string
		expr string
		want pipeline.OutcomeKind
	}{
		{name: "empty passes document through", expr: "", want: pipeline.OutcomeOk},
		{name: "root", expr: "_", want: pipeline.OutcomeOk},
		{name: "navigation", expr: "_.a[0]", want: pipeline.OutcomeOk},
		{name: "compile error", expr: "_.a |", want: pipeline.OutcomeEvalError},
		{name: "runtime error", expr: "_.missing", want: pipeline.OutcomeEvalError},
		{name: "null is empty", expr: "null", want: pipeline.OutcomeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evaluateOutcome(eng, tt.expr, doc)
			assert.Equal(t, tt.want, out.Kind)
		})
	}

	t.Run("nil engine is engine-down", func(t *testing.T) {
		out := evaluateOutcome(nil, "_", doc)
		assert.Equal(t, pipeline.OutcomeEngineDown, out.Kind)
	})
}
