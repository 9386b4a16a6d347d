// Package loader turns raw input bytes into the document the explorer
// operates on. The format is auto-detected: JWT tokens, newline-delimited
// JSON, multi-document YAML, TOML, plain or concatenated JSON, and a YAML
// fallback. Every format decodes to one or more streams; the document root is
// the single stream, or the array of streams when more than one survives
// limiting.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadStreams parses input into its constituent streams, auto-detecting the
// format. Single-document inputs yield one stream.
func LoadStreams(input string) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	if IsJWT(input) {
		return loadJWT(input)
	}

	// Multi-document YAML is the most restrictive shape, so it goes first.
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return loadMultiDocYAML(input)
	}

	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return loadNDJSON(input)
	}

	// TOML before JSON: [section] headers look like JSON arrays.
	if isLikelyTOML(input) {
		return loadTOML(input)
	}

	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return loadJSONStreams(input)
	}

	return loadYAML(input)
}

// Root collapses a stream slice into the document root: the single stream,
// or the array of streams when more than one is present.
func Root(streams []any) any {
	if len(streams) == 1 {
		return streams[0]
	}
	out := make([]any, len(streams))
	copy(out, streams)
	return out
}

// LoadRoot parses input and returns its document root.
func LoadRoot(input string) (any, error) {
	streams, err := LoadStreams(input)
	if err != nil {
		return nil, err
	}
	return Root(streams), nil
}

// LoadFile reads path and parses it into streams.
func LoadFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadStreams(string(data))
}

// loadJSONStreams decodes one or more concatenated top-level JSON values
// (`{"a":1}{"b":2}` or `[1][2]`) into one stream per value.
func loadJSONStreams(input string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	var streams []any
	for {
		var value any
		if err := dec.Decode(&value); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		streams = append(streams, value)
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("no JSON values found in input")
	}
	return streams, nil
}

// loadYAML parses a single YAML document into one stream.
func loadYAML(input string) ([]any, error) {
	var data any
	if err := yaml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return []any{data}, nil
}

// loadMultiDocYAML parses YAML with `---` separators into one stream per
// document.
func loadMultiDocYAML(input string) ([]any, error) {
	var streams []any
	decoder := yaml.NewDecoder(strings.NewReader(input))

	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) || err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if doc != nil {
			streams = append(streams, doc)
		}
	}

	if len(streams) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return streams, nil
}

// loadNDJSON parses newline-delimited JSON into one stream per line. Lines
// that fail to parse are kept as plain strings, so interleaved log noise
// stays visible instead of failing the whole load.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	streams := make([]any, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			streams = append(streams, line)
			continue
		}
		streams = append(streams, obj)
	}

	if len(streams) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return streams, nil
}

// loadTOML parses TOML content into one stream.
func loadTOML(input string) ([]any, error) {
	var data any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{data}, nil
}

// isLikelyNDJSON returns true when a majority of non-empty lines start with
// '{' or '['. Positive matching keeps YAML list files (many bare "- item"
// lines) from being misclassified.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}

	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// tomlSectionPattern matches TOML section headers ([server], [[items]],
// [database."host.name"]) while excluding JSON arrays like [1, 2, 3].
var tomlSectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)

// tomlKeyValuePattern matches TOML `key = value` lines (not YAML's
// `key: value`), including quoted and dotted keys.
var tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)

// isLikelyTOML returns true when the input has TOML section headers or a
// majority of key = value lines.
func isLikelyTOML(input string) bool {
	lines := strings.Split(input, "\n")

	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
