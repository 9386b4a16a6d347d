// Package limiter windows the slice of input streams before the document
// root is assembled, so huge multi-stream inputs (NDJSON logs, concatenated
// JSON) can be cut down from the command line.
package limiter

import "fmt"

// Config holds the stream-windowing parameters.
type Config struct {
	// MaxStreams caps how many streams survive (0 = unlimited).
	MaxStreams int
	// Offset skips the first N streams before the cap applies.
	Offset int
	// Tail keeps the last MaxStreams streams instead of the first.
	Tail bool
}

// Validate rejects conflicting or negative parameters.
func (c Config) Validate() error {
	if c.MaxStreams < 0 {
		return fmt.Errorf("--max-streams must be non-negative, got %d", c.MaxStreams)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--stream-offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail && c.MaxStreams == 0 {
		return fmt.Errorf("--tail requires --max-streams")
	}
	if c.Tail && c.Offset > 0 {
		return fmt.Errorf("--tail and --stream-offset are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.MaxStreams > 0 || c.Offset > 0
}

// Apply returns the windowed stream slice. The input slice is never mutated.
func (c Config) Apply(streams []any) []any {
	if !c.IsActive() {
		return streams
	}

	if c.Tail {
		start := len(streams) - c.MaxStreams
		if start < 0 {
			start = 0
		}
		return streams[start:]
	}

	start := c.Offset
	if start > len(streams) {
		start = len(streams)
	}

	end := len(streams)
	if c.MaxStreams > 0 && start+c.MaxStreams < end {
		end = start + c.MaxStreams
	}
	return streams[start:end]
}
