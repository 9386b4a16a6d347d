package cmd

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jex/internal/ui"
	"github.com/oakwood-commons/jex/pkg/settings"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// fileConfig mirrors the YAML config schema. Every field is optional; the
// embedded defaults define the full set and a user file overrides
// field-by-field (nil = keep default).
type fileConfig struct {
	App   appConfig   `yaml:"app"`
	UI    uiConfig    `yaml:"ui"`
	Theme themeConfig `yaml:"theme"`
}

type appConfig struct {
	LogLevel *int8 `yaml:"log_level"`
}

type uiConfig struct {
	QueryDebounce   *string `yaml:"query_debounce"`
	ResizeDebounce  *string `yaml:"resize_debounce"`
	SpinnerInterval *string `yaml:"spinner_interval"`
	LoadChunkSize   *int    `yaml:"search_load_chunk_size"`
	ResultChunkSize *int    `yaml:"search_result_chunk_size"`
	Ranked          *bool   `yaml:"ranked"`
	SuggestionLines *int    `yaml:"suggestion_lines"`
	ExpandDepth     *int    `yaml:"expand_depth"`
	EditMode        *string `yaml:"edit_mode"`
	ShowHints       *bool   `yaml:"show_hints"`
	PromptFocused   *string `yaml:"prompt_focused"`
	PromptDefocused *string `yaml:"prompt_defocused"`
	WordBreaks      *string `yaml:"word_breaks"`
}

type themeConfig struct {
	Indent    *int    `yaml:"indent"`
	Key       *string `yaml:"key"`
	String    *string `yaml:"string"`
	Number    *string `yaml:"number"`
	Bool      *string `yaml:"bool"`
	Null      *string `yaml:"null"`
	Accent    *string `yaml:"accent"`
	Dim       *string `yaml:"dim"`
	Error     *string `yaml:"error"`
	Selection *string `yaml:"selection"`
}

// loadMergedConfig decodes the embedded defaults, then the user file at
// cfgPath (if any), and overlays the user values field-by-field.
func loadMergedConfig(cfgPath string) (fileConfig, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode embedded default config: %w", err)
	}

	if cfgPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", cfgPath, err)
	}
	var user fileConfig
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", cfgPath, err)
	}
	mergeConfig(&cfg, user)
	return cfg, nil
}

func mergeConfig(dst *fileConfig, src fileConfig) {
	if src.App.LogLevel != nil {
		dst.App.LogLevel = src.App.LogLevel
	}

	u, s := &dst.UI, src.UI
	if s.QueryDebounce != nil {
		u.QueryDebounce = s.QueryDebounce
	}
	if s.ResizeDebounce != nil {
		u.ResizeDebounce = s.ResizeDebounce
	}
	if s.SpinnerInterval != nil {
		u.SpinnerInterval = s.SpinnerInterval
	}
	if s.LoadChunkSize != nil {
		u.LoadChunkSize = s.LoadChunkSize
	}
	if s.ResultChunkSize != nil {
		u.ResultChunkSize = s.ResultChunkSize
	}
	if s.Ranked != nil {
		u.Ranked = s.Ranked
	}
	if s.SuggestionLines != nil {
		u.SuggestionLines = s.SuggestionLines
	}
	if s.ExpandDepth != nil {
		u.ExpandDepth = s.ExpandDepth
	}
	if s.EditMode != nil {
		u.EditMode = s.EditMode
	}
	if s.ShowHints != nil {
		u.ShowHints = s.ShowHints
	}
	if s.PromptFocused != nil {
		u.PromptFocused = s.PromptFocused
	}
	if s.PromptDefocused != nil {
		u.PromptDefocused = s.PromptDefocused
	}
	if s.WordBreaks != nil {
		u.WordBreaks = s.WordBreaks
	}

	t, st := &dst.Theme, src.Theme
	if st.Indent != nil {
		t.Indent = st.Indent
	}
	if st.Key != nil {
		t.Key = st.Key
	}
	if st.String != nil {
		t.String = st.String
	}
	if st.Number != nil {
		t.Number = st.Number
	}
	if st.Bool != nil {
		t.Bool = st.Bool
	}
	if st.Null != nil {
		t.Null = st.Null
	}
	if st.Accent != nil {
		t.Accent = st.Accent
	}
	if st.Dim != nil {
		t.Dim = st.Dim
	}
	if st.Error != nil {
		t.Error = st.Error
	}
	if st.Selection != nil {
		t.Selection = st.Selection
	}
}

// resolveConfigPath returns the config file to load. An explicit flag value
// wins; otherwise the XDG location is used, and the embedded defaults are
// written there on first run so users have a commented starting point.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	path := filepath.Join(base, settings.CliBinaryName, "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeDefaultConfig(path)
	}
	return path
}

func writeDefaultConfig(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, defaultConfigYAML, 0o644)
}

// uiConfigFrom maps the merged file config onto the UI settings.
func uiConfigFrom(cfg fileConfig) ui.Config {
	out := ui.Config{
		QueryDebounce:   durationOf(cfg.UI.QueryDebounce),
		ResizeDebounce:  durationOf(cfg.UI.ResizeDebounce),
		SpinnerInterval: durationOf(cfg.UI.SpinnerInterval),
		LoadChunkSize:   intOf(cfg.UI.LoadChunkSize),
		ResultChunkSize: intOf(cfg.UI.ResultChunkSize),
		Ranked:          boolOf(cfg.UI.Ranked),
		SuggestionLines: intOf(cfg.UI.SuggestionLines),
		ExpandDepth:     intOf(cfg.UI.ExpandDepth),
		Overwrite:       stringOf(cfg.UI.EditMode) == "overwrite",
		ShowHints:       boolOf(cfg.UI.ShowHints),
		PromptFocused:   stringOf(cfg.UI.PromptFocused),
		PromptDefocused: stringOf(cfg.UI.PromptDefocused),
		WordBreaks:      stringOf(cfg.UI.WordBreaks),
		Theme:           themeFrom(cfg.Theme),
	}
	return out
}

func themeFrom(cfg themeConfig) ui.Theme {
	th := ui.DefaultTheme()
	if cfg.Indent != nil && *cfg.Indent > 0 {
		th.Indent = *cfg.Indent
	}
	if c, ok := colorOf(cfg.Key); ok {
		th.Key = c
	}
	if c, ok := colorOf(cfg.String); ok {
		th.String = c
	}
	if c, ok := colorOf(cfg.Number); ok {
		th.Number = c
	}
	if c, ok := colorOf(cfg.Bool); ok {
		th.Bool = c
	}
	if c, ok := colorOf(cfg.Null); ok {
		th.Null = c
	}
	if c, ok := colorOf(cfg.Accent); ok {
		th.Accent = c
	}
	if c, ok := colorOf(cfg.Dim); ok {
		th.Dim = c
	}
	if c, ok := colorOf(cfg.Error); ok {
		th.Error = c
	}
	if c, ok := colorOf(cfg.Selection); ok {
		th.Selection = c
	}
	return th
}

// colorOf converts a config color string. A set-but-empty value means
// "terminal default" and comes back as (nil, true); an unset field is
// (nil, false) so the built-in theme value is kept.
func colorOf(v *string) (color.Color, bool) {
	if v == nil {
		return nil, false
	}
	if *v == "" {
		return nil, true
	}
	return lipgloss.Color(*v), true
}

func durationOf(v *string) time.Duration {
	if v == nil {
		return 0
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return 0
	}
	return d
}

func intOf(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func boolOf(v *bool) bool {
	return v != nil && *v
}

func stringOf(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
