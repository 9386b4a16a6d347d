package ui

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/jex/internal/formatter"
)

// Theme defines the colors and text styles used across the UI: the JSON
// syntax palette for the result pane plus the editor, popup, and status
// accents. Config values override individual fields; a nil color means
// "terminal default".
type Theme struct {
	Indent int // spaces per tree depth level

	Brace  color.Color // `{` `}` `[` `]` and collapsed placeholders
	Key    color.Color // object member names
	String color.Color
	Number color.Color
	Bool   color.Color
	Null   color.Color

	Accent    color.Color // focused editor prompt, popup cursor
	Dim       color.Color // defocused prompt, hint bar
	Error     color.Color // EvalError / EngineDown status text
	Selection color.Color // viewer cursor row background
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Indent: 2,
		Brace:  nil, // bold, default color
		Key:    lipgloss.Color("81"),  // cyan
		String: lipgloss.Color("114"), // green
		Number: nil,
		Bool:   nil,
		Null:   lipgloss.Color("244"), // grey
		Accent: lipgloss.Color("33"),  // blue
		Dim:    lipgloss.Color("244"),
		Error:  lipgloss.Color("203"),
		Selection: lipgloss.Color("24"),
	}
}

// NoColorRequested reports whether styling should be stripped, honoring the
// NO_COLOR convention in addition to the --no-color flag.
func NoColorRequested() bool {
	return os.Getenv("NO_COLOR") != ""
}

// styles is the resolved set of lipgloss styles for one render pass.
type styles struct {
	brace     lipgloss.Style
	key       lipgloss.Style
	str       lipgloss.Style
	num       lipgloss.Style
	boolean   lipgloss.Style
	null      lipgloss.Style
	accent    lipgloss.Style
	dim       lipgloss.Style
	errText   lipgloss.Style
	selection lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			brace: plain, key: plain, str: plain, num: plain,
			boolean: plain, null: plain, accent: plain, dim: plain,
			errText: plain, selection: plain,
		}
	}
	fg := func(c color.Color) lipgloss.Style {
		s := lipgloss.NewStyle()
		if c != nil {
			s = s.Foreground(c)
		}
		return s
	}
	st := styles{
		brace:   fg(th.Brace).Bold(true),
		key:     fg(th.Key),
		str:     fg(th.String),
		num:     fg(th.Number),
		boolean: fg(th.Bool),
		null:    fg(th.Null),
		accent:  fg(th.Accent),
		dim:     fg(th.Dim),
		errText: fg(th.Error),
	}
	st.selection = lipgloss.NewStyle()
	if th.Selection != nil {
		st.selection = st.selection.Background(th.Selection)
	}
	return st
}

// valueStyle maps a row kind to its syntax style.
func (s styles) valueStyle(kind formatter.RowKind) lipgloss.Style {
	switch kind {
	case formatter.KindBrace, formatter.KindBracket:
		return s.brace
	case formatter.KindString:
		return s.str
	case formatter.KindNumber:
		return s.num
	case formatter.KindBool:
		return s.boolean
	case formatter.KindNull:
		return s.null
	default:
		return lipgloss.NewStyle()
	}
}
