package ui

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the interactive program. The terminal size is probed up front
// so the first frame is laid out correctly even before the size message
// arrives; 80x24 is the fallback for exotic terminals.
func Run(m *Model) error {
	runW, runH := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		runW, runH = w, h
	}

	prog := tea.NewProgram(m, tea.WithWindowSize(runW, runH))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running terminal program: %w", err)
	}
	return nil
}
