package pipeline

import (
	"sort"
	"strings"
)

// CandidateSource is a restartable cursor over candidate strings with a
// known total size. Window returns up to limit candidates starting at
// offset, in document order; it is called once per scan window, never
// concurrently for the same load.
type CandidateSource interface {
	Size() int
	Window(offset, limit int) ([]string, error)
}

// LoaderConfig sizes the incremental suggestion scan.
type LoaderConfig struct {
	// LoadChunkSize is the number of raw source items scanned per window.
	LoadChunkSize int
	// ResultChunkSize caps the matches emitted per window.
	ResultChunkSize int
	// Ranked re-sorts each window's matches by (length, lexical) instead of
	// preserving source order. Off by default: stable document order is the
	// contract unless ranking is configured.
	Ranked bool
}

// Chunk is one bounded batch of suggestion matches, tagged with the
// generation it was loaded for. NextOffset is where the following window
// starts; More is false once the source is exhausted.
type Chunk struct {
	Candidates []string
	Generation Generation
	NextOffset int
	More       bool
}

// ScanWindow scans a single window of the candidate source and filters it
// against prefix. One call per window keeps the worst-case time spent
// between event-loop yields bounded by the window size, regardless of how
// large the source is; the caller decides between windows whether the
// generation is still current and simply stops scheduling the next window
// when it is not. An empty prefix matches everything.
func ScanWindow(src CandidateSource, prefix string, offset int, cfg LoaderConfig, gen Generation) (Chunk, error) {
	load := cfg.LoadChunkSize
	if load <= 0 {
		load = 1
	}
	items, err := src.Window(offset, load)
	if err != nil {
		return Chunk{Generation: gen, NextOffset: offset, More: false}, err
	}

	matches := make([]string, 0, min(len(items), cfg.ResultChunkSize))
	for _, cand := range items {
		if prefix != "" && !strings.HasPrefix(cand, prefix) {
			continue
		}
		matches = append(matches, cand)
		if cfg.ResultChunkSize > 0 && len(matches) >= cfg.ResultChunkSize {
			break
		}
	}
	if cfg.Ranked {
		sort.SliceStable(matches, func(i, j int) bool {
			if len(matches[i]) != len(matches[j]) {
				return len(matches[i]) < len(matches[j])
			}
			return matches[i] < matches[j]
		})
	}

	next := offset + load
	return Chunk{
		Candidates: matches,
		Generation: gen,
		NextOffset: next,
		More:       next < src.Size(),
	}, nil
}

// RunLoad drives ScanWindow window-by-window for one generation, delivering
// each chunk through deliver, until the source is exhausted, the token goes
// stale, or the source fails. It returns the number of windows scanned and
// the source error, if any. The interactive path schedules each window as
// its own event-loop command instead of calling this, but the semantics are
// the same: the token is consulted only at window boundaries, and nothing is
// delivered for a stale generation.
func RunLoad(src CandidateSource, prefix string, tok Token, cfg LoaderConfig, deliver func(Chunk)) (windows int, err error) {
	offset := 0
	for tok.IsCurrent() {
		chunk, scanErr := ScanWindow(src, prefix, offset, cfg, tok.Generation())
		if scanErr != nil {
			return windows, scanErr
		}
		windows++
		if !tok.IsCurrent() {
			// Superseded during the scan: abandon at the window boundary,
			// deliver nothing further.
			return windows, nil
		}
		deliver(chunk)
		if !chunk.More {
			return windows, nil
		}
		offset = chunk.NextOffset
	}
	return windows, nil
}
