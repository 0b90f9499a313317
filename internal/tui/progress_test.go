package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var testColumns = []Column{
	{Header: "STEP", Width: 12},
	{Header: "STATUS", Width: 12, Status: true},
	{Header: "DETAIL", Width: 24},
}

func seededModel() ProgressModel {
	m := NewProgressModel(testColumns)
	m.AddRow("binary", []string{"binary", "pending", "-"})
	m.AddRow("certificate", []string{"certificate", "pending", "localhost 127.0.0.1"})
	return m
}

func TestStepUpdateTargetsOneRow(t *testing.T) {
	m := seededModel()

	updated, _ := m.Update(StepUpdateMsg{
		Step:   "binary",
		Fields: map[string]string{"STATUS": "complete", "DETAIL": "mkcert 1.4.4"},
	})
	m = updated.(ProgressModel)

	if got := m.cells["binary"][1]; got != "complete" {
		t.Errorf("binary STATUS = %q, want complete", got)
	}
	if got := m.cells["binary"][2]; got != "mkcert 1.4.4" {
		t.Errorf("binary DETAIL = %q, want mkcert 1.4.4", got)
	}
	if got := m.cells["certificate"][1]; got != "pending" {
		t.Errorf("certificate STATUS = %q, want pending untouched", got)
	}
}

func TestStepUpdateUnknownStepDropped(t *testing.T) {
	m := seededModel()

	updated, _ := m.Update(StepUpdateMsg{
		Step:   "nonexistent",
		Fields: map[string]string{"STATUS": "complete"},
	})
	m = updated.(ProgressModel)

	for _, step := range []string{"binary", "certificate"} {
		if got := m.cells[step][1]; got != "pending" {
			t.Errorf("%s STATUS = %q, want pending", step, got)
		}
	}
}

func TestDoneMsgQuits(t *testing.T) {
	m := seededModel()

	updated, cmd := m.Update(DoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("Done() = false after DoneMsg")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestErrorMsgRecordsFailure(t *testing.T) {
	m := seededModel()
	boom := errors.New("download failed")

	updated, cmd := m.Update(ErrorMsg{Err: boom})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("Done() = false after ErrorMsg")
	}
	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v, want %v", m.Err(), boom)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if view := m.View(); !strings.Contains(view, "download failed") {
		t.Errorf("view %q does not surface the error", view)
	}
}

func TestViewListsHeadersAndRows(t *testing.T) {
	m := seededModel()

	view := m.View()
	for _, want := range []string{"STEP", "STATUS", "DETAIL", "binary", "certificate", "pending", "localhost 127.0.0.1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewFooterTracksFinishedSteps(t *testing.T) {
	m := seededModel()

	if view := m.View(); !strings.Contains(view, "0 of 2 steps done") {
		t.Errorf("view missing starting footer:\n%s", view)
	}

	updated, _ := m.Update(StepUpdateMsg{Step: "binary", Fields: map[string]string{"STATUS": "skipped"}})
	m = updated.(ProgressModel)
	if view := m.View(); !strings.Contains(view, "1 of 2 steps done") {
		t.Errorf("view missing advanced footer:\n%s", view)
	}

	updated, _ = m.Update(DoneMsg{})
	m = updated.(ProgressModel)
	if view := m.View(); strings.Contains(view, "steps done") {
		t.Errorf("footer still present after done:\n%s", view)
	}
}

func TestStepCounts(t *testing.T) {
	m := NewProgressModel(testColumns)
	m.AddRow("a", []string{"a", "complete", ""})
	m.AddRow("b", []string{"b", "skipped", ""})
	m.AddRow("c", []string{"c", "downloading", ""})
	m.AddRow("d", []string{"d", "pending", ""})

	finished, total := m.stepCounts()
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if finished != 2 {
		t.Errorf("finished = %d, want 2", finished)
	}
}

func TestFrameAdvancesUntilDone(t *testing.T) {
	m := seededModel()

	updated, cmd := m.Update(frameMsg{})
	m = updated.(ProgressModel)
	if m.frame != 1 {
		t.Errorf("frame = %d, want 1", m.frame)
	}
	if cmd == nil {
		t.Error("expected a follow-up frame command")
	}

	updated, _ = m.Update(DoneMsg{})
	m = updated.(ProgressModel)
	updated, cmd = m.Update(frameMsg{})
	m = updated.(ProgressModel)
	if cmd != nil {
		t.Error("expected no frame command after done")
	}
	if m.frame != 1 {
		t.Errorf("frame advanced to %d after done", m.frame)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := seededModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("Done() = false after ctrl+c")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		text  string
		width int
		frame int
		want  string
	}{
		{"hello world here", 5, 0, "hello"},
		{"hello world here", 5, 1, "ello "},
		{"hello world here", 5, 5, " worl"},
		{"hello world here", 5, 12, "here "},
		// Wraps through the gap back to the start.
		{"abcdef", 4, 6, "   a"},
		{"abcdef", 4, 9, "abcd"},
	}
	for _, tt := range tests {
		if got := scroll(tt.text, tt.width, tt.frame); got != tt.want {
			t.Errorf("scroll(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.frame, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := clip(tt.input, tt.max); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"localhost", "localhost"},
		{" localhost ", "localhost"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.input); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStepReporterSendsUpdates(t *testing.T) {
	var got []tea.Msg
	r := NewStepReporter(
		func(msg tea.Msg) { got = append(got, msg) },
		func(status, detail string) map[string]string {
			return map[string]string{"STATUS": status, "DETAIL": detail}
		},
	)

	r.Step("binary", "downloading", "mkcert 1.4.4")

	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
	msg, ok := got[0].(StepUpdateMsg)
	if !ok {
		t.Fatalf("sent %T, want StepUpdateMsg", got[0])
	}
	if msg.Step != "binary" {
		t.Errorf("Step = %q, want binary", msg.Step)
	}
	if msg.Fields["STATUS"] != "downloading" || msg.Fields["DETAIL"] != "mkcert 1.4.4" {
		t.Errorf("Fields = %v", msg.Fields)
	}
}
