// Package pipeline is the reactive core of jex: it turns a stream of
// keystroke and resize events into a debounced, cancellable evaluation of
// the current filter expression, a chunked background load of autocomplete
// candidates, a spinner synchronized with in-flight work, and one immutable
// render snapshot at a time.
//
// Everything here is driven from the single event-loop goroutine. The
// asynchronous parts (an evaluation run, one suggestion scan window) execute
// as event-loop commands whose results come back as messages tagged with the
// generation they were started for; the Aggregator applies or discards them
// at its single mutation point, so no two state transitions ever interleave.
package pipeline

import (
	"github.com/oakwood-commons/jex/internal/formatter"
)

// OutcomeKind enumerates the result states of one evaluation.
type OutcomeKind int

const (
	// OutcomePending is set from the keystroke until its evaluation lands.
	OutcomePending OutcomeKind = iota
	// OutcomeOk carries the value the engine produced.
	OutcomeOk
	// OutcomeEmpty means the engine produced no output for the expression.
	OutcomeEmpty
	// OutcomeEvalError means the engine rejected the expression or failed
	// evaluating it. Recoverable: the previous result stays on screen.
	OutcomeEvalError
	// OutcomeEngineDown means the engine itself could not be invoked. Shown
	// as a persistent error; every keystroke is still a fresh attempt.
	OutcomeEngineDown
)

// String returns the lowercase name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeOk:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeEvalError:
		return "eval-error"
	case OutcomeEngineDown:
		return "engine-down"
	default:
		return "unknown"
	}
}

// Outcome is one evaluation result as data. Value is set for OutcomeOk;
// Message carries the engine's text verbatim for the two error kinds.
// Errors travel through the same snapshot path as successes — there is no
// separate error channel that could bypass the generation checks.
type Outcome struct {
	Kind    OutcomeKind
	Value   any
	Message string
}

// Ok wraps an engine value in an outcome.
func Ok(value any) Outcome { return Outcome{Kind: OutcomeOk, Value: value} }

// Empty is the outcome for an evaluation that produced no output.
func Empty() Outcome { return Outcome{Kind: OutcomeEmpty} }

// EvalError wraps an engine error message in an outcome.
func EvalError(message string) Outcome {
	return Outcome{Kind: OutcomeEvalError, Message: message}
}

// EngineDown is the outcome for an engine that could not be invoked at all.
func EngineDown(message string) Outcome {
	return Outcome{Kind: OutcomeEngineDown, Message: message}
}

// QueryState is the latest expression text, the generation it started, and
// where its evaluation stands.
type QueryState struct {
	Text       string
	Generation Generation
	Outcome    Outcome
}

// SuggestionPage is the autocomplete state for the current generation. The
// loader grows Candidates chunk by chunk in document order; More reports
// whether further chunks may still arrive.
type SuggestionPage struct {
	Candidates []string
	Generation Generation
	Cursor     int
	More       bool
}

// RenderSnapshot is an immutable point-in-time composite of everything the
// renderer needs. The aggregator never mutates a published snapshot — every
// accepted mutation builds and publishes a new one, with a strictly
// increasing Version so consumers (and tests) can tell frames apart.
type RenderSnapshot struct {
	Query       QueryState
	Suggestions SuggestionPage
	Spinner     SpinnerState
	Rows        []formatter.Row
	Result      any
	HasResult   bool
	Version     uint64
}

// Aggregator is the sole owner and single mutation point of the render
// state: query, suggestion page, spinner, fold state, and the formatted
// rows. All On* methods are event-loop-confined; concurrency enters only
// through the generation-tagged messages they consume.
type Aggregator struct {
	gens    GenSource
	spinner *SpinnerCoordinator

	document    any
	expandDepth int

	query QueryState
	page  SuggestionPage

	displayed    any
	hasDisplayed bool
	folds        *formatter.FoldState
	rows         []formatter.Row

	version uint64
	snap    RenderSnapshot
	notify  func(RenderSnapshot)
}

// NewAggregator returns an aggregator displaying the loaded document as the
// empty expression's result, with folds reset to the expandDepth policy
// (negative means fully expanded).
func NewAggregator(document any, spinner *SpinnerCoordinator, expandDepth int) *Aggregator {
	if spinner == nil {
		spinner = NewSpinnerCoordinator(0)
	}
	a := &Aggregator{
		spinner:      spinner,
		document:     document,
		expandDepth:  expandDepth,
		displayed:    document,
		hasDisplayed: true,
		folds:        formatter.NewFoldState(expandDepth),
	}
	a.query = QueryState{Outcome: Ok(document)}
	a.rows = formatter.FormatRows(document, a.folds)
	a.publish()
	return a
}

// Subscribe registers the push target for snapshots and immediately
// publishes the current one to it, so the subscriber never starts blind.
func (a *Aggregator) Subscribe(fn func(RenderSnapshot)) {
	a.notify = fn
	if fn != nil {
		fn(a.snap)
	}
}

// Snapshot returns the latest published snapshot.
func (a *Aggregator) Snapshot() RenderSnapshot { return a.snap }

// Document returns the loaded document; evaluation runs borrow it read-only.
func (a *Aggregator) Document() any { return a.document }

// Generation returns the current generation.
func (a *Aggregator) Generation() Generation { return a.gens.Current() }

// CurrentToken returns a cancellation token for the current generation.
func (a *Aggregator) CurrentToken() Token {
	return a.gens.TokenFor(a.gens.Current())
}

// OnQueryChanged starts a fresh generation for the new expression text:
// every earlier token goes stale at once, the suggestion page resets, and
// the query becomes pending. The returned token is what this keystroke's
// evaluation and suggestion runs must carry. Arming those runs (through the
// debouncers) is the caller's side of the contract.
func (a *Aggregator) OnQueryChanged(text string) Token {
	gen := a.gens.Next()
	a.query = QueryState{Text: text, Generation: gen, Outcome: Outcome{Kind: OutcomePending}}
	a.page = SuggestionPage{Generation: gen, More: true}
	a.publish()
	return a.gens.TokenFor(gen)
}

// OnEvalResult applies outcome if gen is still current and reports whether
// it did. A stale delivery is discarded with no observable transition: no
// state change, no new snapshot. A fresh Ok replaces the displayed tree and
// resets folds to the configured policy; Empty clears the pane; the error
// outcomes keep the previous tree visible under the error indicator.
func (a *Aggregator) OnEvalResult(outcome Outcome, gen Generation) bool {
	if gen != a.gens.Current() {
		return false
	}
	a.query.Outcome = outcome
	switch outcome.Kind {
	case OutcomeOk:
		a.displayed = outcome.Value
		a.hasDisplayed = true
		a.folds = formatter.NewFoldState(a.expandDepth)
		a.rows = formatter.FormatRows(a.displayed, a.folds)
	case OutcomeEmpty:
		a.displayed = nil
		a.hasDisplayed = false
		a.folds = formatter.NewFoldState(a.expandDepth)
		a.rows = nil
	}
	a.publish()
	return true
}

// OnSuggestionChunk appends a loader chunk to the page if its generation is
// still current, and reports whether it was applied. Stale chunks vanish
// without a trace.
func (a *Aggregator) OnSuggestionChunk(chunk Chunk) bool {
	if chunk.Generation != a.gens.Current() {
		return false
	}
	a.page.Candidates = append(a.page.Candidates, chunk.Candidates...)
	a.page.More = chunk.More
	if a.page.Cursor >= len(a.page.Candidates) {
		a.page.Cursor = 0
	}
	a.publish()
	return true
}

// OnSuggestionsFailed ends the page's growth after a candidate source
// failure. Chunks already delivered stay — partial results are valid.
func (a *Aggregator) OnSuggestionsFailed(gen Generation) bool {
	if gen != a.gens.Current() {
		return false
	}
	a.page.More = false
	a.publish()
	return true
}

// MoveSuggestionCursor moves the selection by delta, wrapping at both ends.
func (a *Aggregator) MoveSuggestionCursor(delta int) {
	n := len(a.page.Candidates)
	if n == 0 {
		return
	}
	a.page.Cursor = ((a.page.Cursor+delta)%n + n) % n
	a.publish()
}

// SelectedSuggestion returns the candidate under the cursor.
func (a *Aggregator) SelectedSuggestion() (string, bool) {
	if len(a.page.Candidates) == 0 {
		return "", false
	}
	return a.page.Candidates[a.page.Cursor], true
}

// MarkBusy brackets the start of an async span and republishes, since the
// active flag is render-relevant. It returns true when this span turned the
// spinner on — the caller's cue to start the tick chain.
func (a *Aggregator) MarkBusy(u Unit) bool {
	started := a.spinner.MarkBusy(u)
	a.publish()
	return started
}

// MarkIdle brackets the end of an async span, on every exit path.
func (a *Aggregator) MarkIdle(u Unit) {
	a.spinner.MarkIdle(u)
	a.publish()
}

// OnSpinnerTick advances the animation while work is in flight. An idle
// tick changes nothing and returns false, letting the tick chain die.
func (a *Aggregator) OnSpinnerTick() bool {
	if !a.spinner.Tick() {
		return false
	}
	a.publish()
	return true
}

// OnFoldToggle flips the fold of the container at path on the currently
// displayed tree. Fold state is independent of generations — toggling never
// re-triggers evaluation, only re-formats the rows.
func (a *Aggregator) OnFoldToggle(path string) bool {
	if !a.hasDisplayed {
		return false
	}
	depth, ok := a.depthOf(path)
	if !ok {
		return false
	}
	a.folds.Toggle(path, depth)
	a.rows = formatter.FormatRows(a.displayed, a.folds)
	a.publish()
	return true
}

// ExpandAll opens every container of the displayed tree.
func (a *Aggregator) ExpandAll() {
	if !a.hasDisplayed {
		return
	}
	a.folds.ExpandAll()
	a.rows = formatter.FormatRows(a.displayed, a.folds)
	a.publish()
}

// CollapseAll folds the displayed tree down to its root placeholder.
func (a *Aggregator) CollapseAll() {
	if !a.hasDisplayed {
		return
	}
	a.folds.CollapseAll()
	a.rows = formatter.FormatRows(a.displayed, a.folds)
	a.publish()
}

// depthOf finds the depth of the row at path in the current row sequence.
func (a *Aggregator) depthOf(path string) (int, bool) {
	for _, r := range a.rows {
		if r.Path == path {
			return r.Depth, true
		}
	}
	return 0, false
}

// publish builds a fresh snapshot and pushes it to the subscriber. Never
// called for discarded (stale) deliveries.
func (a *Aggregator) publish() {
	a.version++
	a.snap = RenderSnapshot{
		Query:       a.query,
		Suggestions: a.page,
		Spinner:     a.spinner.State(),
		Rows:        a.rows,
		Result:      a.displayed,
		HasResult:   a.hasDisplayed,
		Version:     a.version,
	}
	if a.notify != nil {
		a.notify(a.snap)
	}
}
