package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StepReporter turns step callbacks into StepUpdateMsg values. The caller
// supplies the mapping from (status, detail) to column fields, so this
// package stays ignorant of any particular table layout.
type StepReporter struct {
	send   func(tea.Msg)
	fields func(status, detail string) map[string]string
}

// NewStepReporter builds a reporter posting through send with the given
// field mapping.
func NewStepReporter(send func(tea.Msg), fields func(status, detail string) map[string]string) *StepReporter {
	return &StepReporter{send: send, fields: fields}
}

// Step forwards one update for the named step.
func (r *StepReporter) Step(key, status, detail string) {
	r.send(StepUpdateMsg{
		Step:   key,
		Fields: r.fields(status, detail),
	})
}
