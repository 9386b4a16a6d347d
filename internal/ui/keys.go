package ui

import "strings"

// focusTarget identifies which pane receives keystrokes.
type focusTarget int

const (
	focusEditor focusTarget = iota
	focusViewer
)

// binding pairs a key label with its hint text for the hint bar.
type binding struct {
	key  string
	hint string
}

var editorBindings = []binding{
	{key: "tab", hint: "complete"},
	{key: "↓", hint: "next suggestion"},
	{key: "esc", hint: "dismiss"},
	{key: "shift+↓", hint: "viewer"},
}

var viewerBindings = []binding{
	{key: "↑/↓", hint: "move"},
	{key: "enter", hint: "fold"},
	{key: "ctrl+p", hint: "expand all"},
	{key: "ctrl+n", hint: "collapse all"},
	{key: "shift+↑", hint: "editor"},
}

var globalBindings = []binding{
	{key: "ctrl+q", hint: "copy query"},
	{key: "ctrl+o", hint: "copy result"},
	{key: "ctrl+c", hint: "quit"},
}

// hintLine renders the hint bar text for the focused pane. Styling is
// applied by the view; this is the plain content.
func hintLine(focus focusTarget) string {
	bindings := editorBindings
	if focus == focusViewer {
		bindings = viewerBindings
	}
	parts := make([]string, 0, len(bindings)+len(globalBindings))
	for _, b := range append(bindings, globalBindings...) {
		parts = append(parts, b.key+" "+b.hint)
	}
	return strings.Join(parts, "  ·  ")
}
