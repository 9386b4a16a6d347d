package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jex/internal/formatter"
)

// outputFormats lists the accepted --output values.
var outputFormats = []string{"json", "yaml", "toml", "tree"}

func validOutputFormat(format string) bool {
	for _, f := range outputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// printResult writes one evaluation result to out in the requested format.
// warn receives fallback notices so they never mix into the data stream.
func printResult(out, warn io.Writer, value any, format string) error {
	switch format {
	case "json":
		return printJSON(out, value)
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "toml":
		// TOML can only represent tables at the top level; anything else
		// falls back to JSON with a notice.
		if _, ok := value.(map[string]any); !ok {
			fmt.Fprintln(warn, "warning: result is not a table, falling back to json for --output toml")
			return printJSON(out, value)
		}
		data, err := toml.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "tree":
		tree := formatter.FormatTree(value)
		if !strings.HasSuffix(tree, "\n") {
			tree += "\n"
		}
		_, err := io.WriteString(out, tree)
		return err
	default:
		return fmt.Errorf("unknown output format %q (expected %s)", format, strings.Join(outputFormats, "|"))
	}
}

func printJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
