package pipeline

import "sync/atomic"

// Generation identifies the batch of asynchronous work started for a single
// user-visible change (one keystroke). Async results carry the generation
// they were started for; anything older than the current generation is
// discarded on delivery.
type Generation uint64

// GenSource issues generations and answers whether a generation is still the
// newest one. The event loop advances it; async units poll tokens from their
// own goroutines, so the counter is atomic.
type GenSource struct {
	current atomic.Uint64
}

// Current returns the most recently issued generation.
func (s *GenSource) Current() Generation {
	return Generation(s.current.Load())
}

// Next advances to a fresh generation and returns it. Every token issued for
// an earlier generation stops being current at that instant.
func (s *GenSource) Next() Generation {
	return Generation(s.current.Add(1))
}

// TokenFor returns a cancellation token bound to gen.
func (s *GenSource) TokenFor(gen Generation) Token {
	return Token{gen: gen, src: s}
}

// Token is the cooperative cancellation handle for one generation's async
// work. It never interrupts anything in flight: units check IsCurrent before
// publishing a result and before starting the next unit of work, and a unit
// stuck in an uncancellable call simply has its result dropped on arrival.
type Token struct {
	gen Generation
	src *GenSource
}

// Generation returns the generation this token was issued for.
func (t Token) Generation() Generation { return t.gen }

// IsCurrent reports whether the token's generation is still the newest one.
// The zero Token is never current.
func (t Token) IsCurrent() bool {
	return t.src != nil && t.src.Current() == t.gen
}
