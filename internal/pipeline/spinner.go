package pipeline

import "time"

// Unit names an async work source tracked by the spinner coordinator.
type Unit string

const (
	// UnitEvaluator brackets one filter evaluation run.
	UnitEvaluator Unit = "evaluator"
	// UnitLoader brackets one suggestion load (all of its chunk windows).
	UnitLoader Unit = "loader"
)

// SpinnerState is the render-relevant spinner snapshot: whether any work is
// in flight and which animation frame to show.
type SpinnerState struct {
	Active bool
	Phase  int
}

// SpinnerCoordinator keeps a reference count of in-flight async units and
// advances the animation phase while the count is positive. Units call
// MarkBusy when they start and MarkIdle on every exit path — success, error,
// or cancellation — so the count can never stay stuck above zero, and
// per-unit floors keep a stray MarkIdle from driving it negative.
type SpinnerCoordinator struct {
	interval time.Duration
	busy     map[Unit]int
	count    int
	phase    int
}

// NewSpinnerCoordinator returns an idle coordinator ticking at the given
// interval while busy.
func NewSpinnerCoordinator(interval time.Duration) *SpinnerCoordinator {
	return &SpinnerCoordinator{
		interval: interval,
		busy:     make(map[Unit]int),
	}
}

// MarkBusy records that one span of work for u is in flight. It returns true
// when this call transitioned the coordinator from idle to active, which is
// the moment the caller should start the tick chain.
func (c *SpinnerCoordinator) MarkBusy(u Unit) bool {
	c.busy[u]++
	c.count++
	return c.count == 1
}

// MarkIdle records that one span of work for u has finished. Calls beyond
// the number of outstanding MarkBusy calls for u are ignored; the count
// never goes negative.
func (c *SpinnerCoordinator) MarkIdle(u Unit) {
	if c.busy[u] <= 0 {
		return
	}
	c.busy[u]--
	c.count--
}

// Active reports whether any unit is in flight.
func (c *SpinnerCoordinator) Active() bool {
	return c.count > 0
}

// Tick advances the animation phase and reports whether it did. An idle
// coordinator does not advance, which is the signal to let the tick chain
// die.
func (c *SpinnerCoordinator) Tick() bool {
	if c.count <= 0 {
		return false
	}
	c.phase++
	return true
}

// State returns the current render snapshot of the spinner.
func (c *SpinnerCoordinator) State() SpinnerState {
	return SpinnerState{Active: c.count > 0, Phase: c.phase}
}

// Interval returns the configured tick interval.
func (c *SpinnerCoordinator) Interval() time.Duration {
	return c.interval
}
