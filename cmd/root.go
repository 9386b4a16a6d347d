// Package cmd wires the CLI: flag parsing, config resolution, input
// loading, and either the one-shot evaluation path or the interactive
// terminal program.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	rdebug "runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jex/internal/completion"
	"github.com/oakwood-commons/jex/internal/engine"
	"github.com/oakwood-commons/jex/internal/limiter"
	"github.com/oakwood-commons/jex/internal/pipeline"
	"github.com/oakwood-commons/jex/internal/ui"
	"github.com/oakwood-commons/jex/pkg/loader"
	"github.com/oakwood-commons/jex/pkg/logger"
	"github.com/oakwood-commons/jex/pkg/settings"
)

var (
	configFile   string
	query        string
	output       string
	editMode     string
	noHint       bool
	suggestions  int
	maxStreams   int
	streamOffset int
	tailStreams  bool
	expandDepth  int
	noColor      bool
	logLevel     int8
	showVersion  bool

	rootCtx = context.Background()

	// Swapped out by tests.
	stdinIsPiped = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	readStdin    = func() ([]byte, error) { return io.ReadAll(os.Stdin) }
	runProgram   = ui.Run
)

// usageError marks errors that should exit with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:   "jex [flags] [FILE]",
	Short: "interactive JSON explorer with CEL filtering",
	Long: `jex loads JSON (or YAML, TOML, NDJSON, JWT) from a file or stdin and opens
an interactive explorer: type a CEL expression with '_' as the document root,
get the result as a foldable tree while you type, with path autocompletion.

With --query it evaluates once and prints the result instead.`,
	Example: "\n  jex data.json\n  cat data.json | jex\n  jex data.json -q '_.items[0].name'\n  jex logs.ndjson --max-streams 100 --tail -q '_' -o yaml\n",
	Args:    cobra.MaximumNArgs(1),

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		lgr := logger.Get(logLevel)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName)
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},

	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/jex/config.yaml)")
	f.StringVarP(&query, "query", "q", "", "evaluate a CEL expression and print the result instead of opening the UI")
	f.StringVarP(&output, "output", "o", "json", "one-shot output format: json|yaml|toml|tree")
	f.StringVar(&editMode, "edit-mode", "insert", "editor behavior: insert|overwrite")
	f.BoolVar(&noHint, "no-hint", false, "hide the keybind hint bar")
	f.IntVar(&suggestions, "suggestions", 3, "suggestion popup height in lines")
	f.IntVar(&maxStreams, "max-streams", 0, "cap the number of input streams (0 = unlimited)")
	f.IntVar(&streamOffset, "stream-offset", 0, "skip the first N input streams")
	f.BoolVar(&tailStreams, "tail", false, "with --max-streams, keep the last N streams instead of the first")
	f.IntVar(&expandDepth, "expand-depth", -1, "initial fold depth (-1 = fully expanded)")
	f.BoolVar(&noColor, "no-color", false, "disable styling (NO_COLOR is also honored)")
	f.Int8Var(&logLevel, "log-level", 0, "log verbosity (higher = more verbose, negative disables)")
	f.BoolVarP(&showVersion, "version", "V", false, "print version information")
}

// Execute runs the root command. Usage errors exit 2 here; other errors are
// returned for main to report and exit 1.
func Execute() error {
	err := rootCmd.Execute()
	var uerr usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	return err
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		printVersion(cmd.OutOrStdout())
		return nil
	}

	lim := limiter.Config{MaxStreams: maxStreams, Offset: streamOffset, Tail: tailStreams}
	if err := lim.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	if editMode != "insert" && editMode != "overwrite" {
		return usageError{msg: fmt.Sprintf("invalid --edit-mode %q (expected insert|overwrite)", editMode)}
	}
	if !validOutputFormat(output) {
		return usageError{msg: fmt.Sprintf("invalid --output %q (expected %s)", output, strings.Join(outputFormats, "|"))}
	}

	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}

	params := settings.NewCliParams()
	params.MinLogLevel = logLevel
	params.NoColor = noColor
	params.IsQuiet = cmd.Flags().Changed("query")
	if len(args) == 1 {
		params.InputPath = args[0]
	} else if stdinIsPiped() {
		params.InputPath = "-"
	}
	rootCtx = settings.IntoContext(rootCtx, params)

	data, err := loadInput(params)
	if err != nil {
		return err
	}
	streams, err := loader.LoadStreams(string(data))
	if err != nil {
		return err
	}
	streams = lim.Apply(streams)
	if len(streams) == 0 {
		return usageError{msg: "no input streams left after limiting"}
	}
	root := loader.Root(streams)

	lgr := logger.FromContext(rootCtx)
	lgr.V(1).Info("input loaded", "streams", len(streams))

	eng, engErr := engine.New()

	if cmd.Flags().Changed("query") {
		if engErr != nil {
			return fmt.Errorf("starting filter engine: %w", engErr)
		}
		value, err := eng.Evaluate(query, root)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), value, output)
	}

	uiCfg := uiConfigFrom(cfg)
	uiCfg.NoColor = noColor
	uiCfg.StreamCount = len(streams)
	uiCfg.Logger = *lgr
	applyFlagOverrides(cmd, &uiCfg)

	var (
		e      engine.Engine
		source pipeline.CandidateSource
		parse  ui.PrefixParser
	)
	if engErr != nil {
		// The UI still opens; every evaluation reports the engine as down.
		lgr.Error(engErr, "filter engine unavailable")
	} else {
		e = eng
		source = completion.BuildIndex(root, eng.Env())
		parse = func(s string) completion.Prefix { return completion.ParsePrefix(s, eng.Env(), uiCfg.WordBreaks) }
	}

	m := ui.New(root, e, source, parse, uiCfg)
	return runProgram(m)
}

// applyFlagOverrides lets explicitly set flags win over config file values.
func applyFlagOverrides(cmd *cobra.Command, uiCfg *ui.Config) {
	if cmd.Flags().Changed("edit-mode") {
		uiCfg.Overwrite = editMode == "overwrite"
	}
	if noHint {
		uiCfg.ShowHints = false
	}
	if cmd.Flags().Changed("suggestions") {
		uiCfg.SuggestionLines = suggestions
	}
	if cmd.Flags().Changed("expand-depth") {
		uiCfg.ExpandDepth = expandDepth
	}
}

// loadInput resolves the document bytes from the run settings: an explicit
// FILE path, `-` for stdin (also used when stdin is piped with no argument).
// An empty path means a TTY stdin with no FILE, which is a usage error.
func loadInput(params *settings.Run) ([]byte, error) {
	switch params.InputPath {
	case "":
		return nil, usageError{msg: "no input: pass a FILE argument or pipe data to stdin"}
	case "-":
		data, err := readStdin()
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(params.InputPath)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
}

func printVersion(w io.Writer) {
	v := settings.VersionInformation
	goVersion := "unknown"
	if info, ok := rdebug.ReadBuildInfo(); ok && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	fmt.Fprintf(w, "%s %s (commit %s, built %s, %s)\n",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, goVersion)
}
