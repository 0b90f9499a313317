package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithWork drives a progress program while workFn runs in the background.
// workFn gets a send function for posting messages to the program; when it
// returns, the program is told to quit. The error the model collected from
// an ErrorMsg, if any, is returned after the program exits.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg))) error {
	program := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		// Give the program a frame to paint before updates arrive.
		time.Sleep(50 * time.Millisecond)
		workFn(func(msg tea.Msg) {
			program.Send(msg)
			// A short pause per update keeps short-circuited steps readable
			// instead of flashing past; real downloads swallow it.
			time.Sleep(5 * time.Millisecond)
		})
		program.Send(DoneMsg{})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ProgressModel); ok {
		return m.Err()
	}
	return nil
}
