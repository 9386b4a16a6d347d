package pipeline

import "time"

// Debouncer coalesces a rapid series of events into at most one trigger per
// quiet period. It is a two-state machine: idle, or armed with the newest
// payload. Schedule arms (or re-arms) it and hands back an arm identifier;
// the caller delivers that identifier back to Fire once the quiet period has
// slept through. Only the newest arm fires — an identifier from an earlier
// Schedule call resolves as stale and changes nothing, so a burst of N
// schedules produces exactly one fire, carrying the Nth payload.
//
// The query and resize debouncers are two independent instances of this
// type; a burst on one never delays the other. All methods are meant to be
// called from the event loop goroutine (the sleeping happens elsewhere, in
// the command that carries the arm identifier back).
type Debouncer struct {
	quiet   time.Duration
	armID   int
	payload any
	armed   bool
	closed  bool
}

// NewDebouncer returns an idle debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Schedule records payload as the newest pending event and (re)arms the
// timer. It returns the identifier the caller must pass to Fire after
// sleeping the quiet period. A closed debouncer schedules nothing and
// returns ok=false.
func (d *Debouncer) Schedule(payload any) (armID int, ok bool) {
	if d.closed {
		return 0, false
	}
	d.armID++
	d.payload = payload
	d.armed = true
	return d.armID, true
}

// Fire resolves an elapsed timer. The scheduled payload is returned with
// ok=true only when armID identifies the newest arm and the debouncer is
// still armed; a stale or unknown identifier returns ok=false with no state
// change. After a successful fire the debouncer is idle again.
func (d *Debouncer) Fire(armID int) (payload any, ok bool) {
	if d.closed || !d.armed || armID != d.armID {
		return nil, false
	}
	d.armed = false
	p := d.payload
	d.payload = nil
	return p, true
}

// Armed reports whether a fire is outstanding.
func (d *Debouncer) Armed() bool {
	return d.armed && !d.closed
}

// Quiet returns the configured quiet period.
func (d *Debouncer) Quiet() time.Duration {
	return d.quiet
}

// Close tears the debouncer down. Pending arms never fire and later
// Schedule calls are no-ops.
func (d *Debouncer) Close() {
	d.closed = true
	d.armed = false
	d.payload = nil
}
