// Package ui is the interactive terminal frontend: a bubbletea program
// whose Update loop funnels keystrokes, debounce fires, evaluation results,
// suggestion chunks, and spinner ticks into the pipeline aggregator, and
// whose View renders the latest published snapshot.
package ui

import (
	"encoding/json"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jex/internal/completion"
	"github.com/oakwood-commons/jex/internal/engine"
	"github.com/oakwood-commons/jex/internal/pipeline"
)

// Config carries the resolved settings the UI consumes. Zero values are
// replaced with the built-in defaults by normalize.
type Config struct {
	QueryDebounce   time.Duration
	ResizeDebounce  time.Duration
	SpinnerInterval time.Duration
	LoadChunkSize   int
	ResultChunkSize int
	Ranked          bool
	SuggestionLines int
	ExpandDepth     int
	Overwrite       bool
	ShowHints       bool
	NoColor         bool
	PromptFocused   string
	PromptDefocused string
	WordBreaks      string
	StreamCount     int
	Theme           Theme
	Logger          logr.Logger
}

func (c Config) normalize() Config {
	if c.QueryDebounce <= 0 {
		c.QueryDebounce = 600 * time.Millisecond
	}
	if c.ResizeDebounce <= 0 {
		c.ResizeDebounce = 200 * time.Millisecond
	}
	if c.SpinnerInterval <= 0 {
		c.SpinnerInterval = 300 * time.Millisecond
	}
	if c.LoadChunkSize <= 0 {
		c.LoadChunkSize = 50000
	}
	if c.ResultChunkSize <= 0 {
		c.ResultChunkSize = 100
	}
	if c.SuggestionLines <= 0 {
		c.SuggestionLines = 3
	}
	if c.PromptFocused == "" {
		c.PromptFocused = "❯❯ "
	}
	if c.PromptDefocused == "" {
		c.PromptDefocused = "▼ "
	}
	if c.WordBreaks == "" {
		c.WordBreaks = completion.DefaultTokenBoundaries
	}
	if c.Theme.Indent <= 0 {
		c.Theme = DefaultTheme()
	}
	return c
}

// PrefixParser resolves the token under completion for the current
// expression text.
type PrefixParser func(input string) completion.Prefix

// queryArm is the debouncer payload for one keystroke: the text it carried
// and the generation token it started.
type queryArm struct {
	text  string
	token pipeline.Token
}

// Messages produced by the async commands. Every result message carries the
// generation it was started for; the aggregator applies or discards it.
type (
	queryDebounceMsg  struct{ armID int }
	resizeDebounceMsg struct{ armID int }
	evalResultMsg     struct {
		outcome pipeline.Outcome
		gen     pipeline.Generation
	}
	suggestionChunkMsg struct {
		chunk pipeline.Chunk
		err   error
		gen   pipeline.Generation
	}
	spinnerTickMsg struct{}
)

// Model is the bubbletea model. All state transitions happen inside Update;
// the async work (evaluation, one scan window, one sleep) runs in commands
// that report back through the messages above.
type Model struct {
	cfg    Config
	eng    engine.Engine
	agg    *pipeline.Aggregator
	source pipeline.CandidateSource
	parse  PrefixParser
	log    logr.Logger

	input textinput.Model
	focus focusTarget
	popup bool

	queryDebounce  *pipeline.Debouncer
	resizeDebounce *pipeline.Debouncer

	matchPrefix string

	cursor    int
	rowOffset int
	width     int
	height    int
	sized     bool

	snap pipeline.RenderSnapshot
	st   styles
}

// New wires a model around the loaded document. source and parse come from
// the completion index; both may be nil, which disables suggestions.
func New(document any, eng engine.Engine, source pipeline.CandidateSource, parse PrefixParser, cfg Config) *Model {
	cfg = cfg.normalize()

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.SetWidth(80)
	ti.SetValue("_")
	ti.SetCursor(1)
	ti.Focus()

	m := &Model{
		cfg:            cfg,
		eng:            eng,
		source:         source,
		parse:          parse,
		log:            cfg.Logger,
		input:          ti,
		focus:          focusEditor,
		queryDebounce:  pipeline.NewDebouncer(cfg.QueryDebounce),
		resizeDebounce: pipeline.NewDebouncer(cfg.ResizeDebounce),
		width:          80,
		height:         24,
		st:             newStyles(cfg.Theme, cfg.NoColor || NoColorRequested()),
	}
	m.agg = pipeline.NewAggregator(document, pipeline.NewSpinnerCoordinator(cfg.SpinnerInterval), cfg.ExpandDepth)
	m.agg.Subscribe(func(s pipeline.RenderSnapshot) { m.snap = s })
	return m
}

// Init starts the cursor blink; no work is in flight until the first edit.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update is the single mutation point. Stale debounce fires, stale
// generations, and idle ticks all resolve to no-ops here.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.sized {
			// First size report applies at once; later ones are debounced.
			m.sized = true
			m.applyLayout(msg.Width, msg.Height)
			return m, nil
		}
		armID, ok := m.resizeDebounce.Schedule(msg)
		if !ok {
			return m, nil
		}
		return m, sleepCmd(m.resizeDebounce.Quiet(), resizeDebounceMsg{armID: armID})

	case resizeDebounceMsg:
		payload, ok := m.resizeDebounce.Fire(msg.armID)
		if !ok {
			return m, nil
		}
		size := payload.(tea.WindowSizeMsg)
		m.applyLayout(size.Width, size.Height)
		return m, nil

	case queryDebounceMsg:
		payload, ok := m.queryDebounce.Fire(msg.armID)
		if !ok {
			return m, nil
		}
		arm := payload.(queryArm)
		if !arm.token.IsCurrent() {
			return m, nil
		}
		return m, m.startRuns(arm.text, arm.token)

	case evalResultMsg:
		m.agg.MarkIdle(pipeline.UnitEvaluator)
		if m.agg.OnEvalResult(msg.outcome, msg.gen) {
			m.clampCursor()
		}
		return m, nil

	case suggestionChunkMsg:
		if msg.err != nil {
			m.agg.OnSuggestionsFailed(msg.gen)
			m.agg.MarkIdle(pipeline.UnitLoader)
			m.log.V(1).Info("suggestion load failed", "error", msg.err.Error())
			return m, nil
		}
		applied := m.agg.OnSuggestionChunk(msg.chunk)
		if applied && msg.chunk.More {
			return m, m.scanCmd(msg.chunk.NextOffset, m.agg.CurrentToken())
		}
		m.agg.MarkIdle(pipeline.UnitLoader)
		return m, nil

	case spinnerTickMsg:
		if m.agg.OnSpinnerTick() {
			return m, m.tickCmd()
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Snapshot exposes the latest published snapshot, for tests and the
// one-shot exit path.
func (m *Model) Snapshot() pipeline.RenderSnapshot { return m.snap }

// Query returns the current editor text.
func (m *Model) Query() string { return m.input.Value() }

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+q":
		_ = CopyToClipboard(m.input.Value())
		return m, nil
	case "ctrl+o":
		if text, ok := m.prettyResult(); ok {
			_ = CopyToClipboard(text)
		}
		return m, nil
	case "shift+down":
		if m.focus == focusEditor {
			m.focus = focusViewer
			m.popup = false
			m.input.Blur()
		}
		return m, nil
	case "shift+up":
		if m.focus == focusViewer {
			m.focus = focusEditor
			m.input.Focus()
		}
		return m, nil
	}

	if m.focus == focusViewer {
		return m.handleViewerKey(msg)
	}
	return m.handleEditorKey(msg)
}

func (m *Model) handleViewerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.viewportHeight())
	case "pgdown":
		m.moveCursor(m.viewportHeight())
	case "enter":
		rows := m.snap.Rows
		if m.cursor >= 0 && m.cursor < len(rows) {
			if m.agg.OnFoldToggle(rows[m.cursor].Path) {
				m.clampCursor()
			}
		}
	case "ctrl+p":
		m.agg.ExpandAll()
		m.clampCursor()
	case "ctrl+n":
		m.agg.CollapseAll()
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	candidates := m.snap.Suggestions.Candidates
	atEOL := m.input.Position() >= len([]rune(m.input.Value()))

	switch msg.String() {
	case "esc":
		m.popup = false
		return m, nil
	case "tab":
		if m.popup && len(candidates) > 0 {
			if atEOL {
				return m.acceptSuggestion()
			}
			m.agg.MoveSuggestionCursor(1)
		}
		return m, nil
	case "down":
		if m.popup && len(candidates) > 0 {
			m.agg.MoveSuggestionCursor(1)
			return m, nil
		}
	case "up":
		if m.popup && len(candidates) > 0 {
			m.agg.MoveSuggestionCursor(-1)
			return m, nil
		}
	case "right":
		if m.popup && len(candidates) > 0 && atEOL {
			return m.acceptSuggestion()
		}
	}

	if m.cfg.Overwrite && msg.Text != "" {
		runes := []rune(m.input.Value())
		pos := m.input.Position()
		if pos >= 0 && pos < len(runes) {
			m.input.SetValue(string(append(runes[:pos:pos], runes[pos+1:]...)))
			m.input.SetCursor(pos)
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, tea.Batch(cmd, m.onQueryEdited(after))
	}
	return m, cmd
}

// onQueryEdited starts a fresh generation for the new text and arms the
// query debouncer. The evaluation and suggestion runs start only when the
// quiet period elapses with this arm still the newest.
func (m *Model) onQueryEdited(text string) tea.Cmd {
	tok := m.agg.OnQueryChanged(text)
	m.popup = true
	armID, ok := m.queryDebounce.Schedule(queryArm{text: text, token: tok})
	if !ok {
		return nil
	}
	return sleepCmd(m.queryDebounce.Quiet(), queryDebounceMsg{armID: armID})
}

// startRuns launches the evaluation and the suggestion load for the fired
// keystroke. Each busy mark that turns the spinner on also starts the tick
// chain.
func (m *Model) startRuns(text string, tok pipeline.Token) tea.Cmd {
	var cmds []tea.Cmd

	if m.agg.MarkBusy(pipeline.UnitEvaluator) {
		cmds = append(cmds, m.tickCmd())
	}
	cmds = append(cmds, m.evalCmd(text, tok))

	if m.source != nil && m.parse != nil {
		m.matchPrefix = m.parse(text).MatchPrefix()
		if m.agg.MarkBusy(pipeline.UnitLoader) {
			cmds = append(cmds, m.tickCmd())
		}
		cmds = append(cmds, m.scanCmd(0, tok))
	}
	return tea.Batch(cmds...)
}

func (m *Model) evalCmd(expr string, tok pipeline.Token) tea.Cmd {
	eng := m.eng
	doc := m.agg.Document()
	return func() tea.Msg {
		return evalResultMsg{outcome: evaluateOutcome(eng, expr, doc), gen: tok.Generation()}
	}
}

// evaluateOutcome runs one evaluation and captures the result as data. An
// empty expression passes the document through; a null result is the empty
// outcome.
func evaluateOutcome(eng engine.Engine, expr string, doc any) pipeline.Outcome {
	if eng == nil {
		return pipeline.EngineDown("filter engine unavailable")
	}
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return pipeline.Ok(doc)
	}
	val, err := eng.Evaluate(trimmed, doc)
	if err != nil {
		return pipeline.EvalError(err.Error())
	}
	if val == nil {
		return pipeline.Empty()
	}
	return pipeline.Ok(val)
}

// scanCmd runs one window of the suggestion scan. The continuation for the
// next window is issued from Update, so a superseding keystroke stops the
// chain at the window boundary.
func (m *Model) scanCmd(offset int, tok pipeline.Token) tea.Cmd {
	src := m.source
	prefix := m.matchPrefix
	cfg := pipeline.LoaderConfig{
		LoadChunkSize:   m.cfg.LoadChunkSize,
		ResultChunkSize: m.cfg.ResultChunkSize,
		Ranked:          m.cfg.Ranked,
	}
	return func() tea.Msg {
		if !tok.IsCurrent() {
			return suggestionChunkMsg{chunk: pipeline.Chunk{Generation: tok.Generation()}, gen: tok.Generation()}
		}
		chunk, err := pipeline.ScanWindow(src, prefix, offset, cfg, tok.Generation())
		return suggestionChunkMsg{chunk: chunk, err: err, gen: tok.Generation()}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return sleepCmd(m.cfg.SpinnerInterval, spinnerTickMsg{})
}

func (m *Model) acceptSuggestion() (tea.Model, tea.Cmd) {
	sel, ok := m.agg.SelectedSuggestion()
	if !ok {
		return m, nil
	}
	next := m.parse(m.input.Value()).Splice(sel)
	m.input.SetValue(next)
	m.input.SetCursor(len([]rune(next)))
	return m, m.onQueryEdited(next)
}

func (m *Model) prettyResult() (string, bool) {
	if !m.snap.HasResult {
		return "", false
	}
	out, err := json.MarshalIndent(m.snap.Result, "", "  ")
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (m *Model) applyLayout(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	promptWidth := len([]rune(m.cfg.PromptFocused))
	m.input.SetWidth(width - promptWidth - 2)
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the viewer cursor on a real row and scrolls the visible
// window to contain it.
func (m *Model) clampCursor() {
	n := len(m.snap.Rows)
	if n == 0 {
		m.cursor, m.rowOffset = 0, 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	vh := m.viewportHeight()
	if vh < 1 {
		vh = 1
	}
	if m.cursor < m.rowOffset {
		m.rowOffset = m.cursor
	}
	if m.cursor >= m.rowOffset+vh {
		m.rowOffset = m.cursor - vh + 1
	}
}

// viewportHeight is the row count available to the result pane after the
// fixed panes take their lines.
func (m *Model) viewportHeight() int {
	h := m.height - 2 // editor line + status line
	h -= m.popupLines()
	if m.cfg.ShowHints {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) popupLines() int {
	if !m.popup || m.focus != focusEditor {
		return 0
	}
	n := len(m.snap.Suggestions.Candidates)
	if n > m.cfg.SuggestionLines {
		n = m.cfg.SuggestionLines
	}
	return n
}

// sleepCmd delivers msg after d. The sleep happens off the event loop; the
// debouncers and the spinner decide on arrival whether the message still
// means anything.
func sleepCmd(d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(d)
		return msg
	}
}
