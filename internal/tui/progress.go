package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StepUpdateMsg carries new cell values for one step row, keyed by column
// header. Headers absent from Fields leave their cells alone.
type StepUpdateMsg struct {
	Step   string
	Fields map[string]string
}

// DoneMsg tells the program the background work finished.
type DoneMsg struct{}

// ErrorMsg tells the program the background work failed. The program quits
// and the error surfaces through Err.
type ErrorMsg struct {
	Err error
}

// frameMsg advances the spinner and the scroll offset.
type frameMsg time.Time

const frameInterval = 150 * time.Millisecond

// spinGlyphs is the braille spinner shared by the step table footer and the
// standalone status line.
var spinGlyphs = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// doneStatuses are the step states the footer counts as finished.
var doneStatuses = map[string]bool{
	"complete": true,
	"skipped":  true,
	"error":    true,
}

// Column describes one column of the step table. Status marks the column
// holding step states; its cells get colored and drive the footer count.
type Column struct {
	Header string
	Width  int
	Status bool
}

// ProgressModel renders one row per step while background work posts
// StepUpdateMsg values. Seed the rows with AddRow before handing the model
// to RunWithWork; updates for steps without a row are dropped.
type ProgressModel struct {
	columns []Column
	steps   []string
	cells   map[string][]string

	frame  int
	done   bool
	failed error
}

// NewProgressModel builds an empty step table with the given columns.
func NewProgressModel(columns []Column) ProgressModel {
	return ProgressModel{
		columns: columns,
		cells:   make(map[string][]string),
	}
}

// AddRow appends a step row with its starting cell values, one per column.
func (m *ProgressModel) AddRow(step string, values []string) {
	row := make([]string, len(m.columns))
	copy(row, values)
	m.steps = append(m.steps, step)
	m.cells[step] = row
}

// Done reports whether the program has quit, cleanly or not.
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns the failure delivered by an ErrorMsg, if any.
func (m ProgressModel) Err() error {
	return m.failed
}

func (m ProgressModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m ProgressModel) nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, m.nextFrame()

	case StepUpdateMsg:
		row, ok := m.cells[msg.Step]
		if !ok {
			return m, nil
		}
		for i, col := range m.columns {
			if v, ok := msg.Fields[col.Header]; ok {
				row[i] = v
			}
		}
		return m, nil

	case DoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.failed = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if k := msg.String(); k == "ctrl+c" || k == "q" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.failed != nil {
		return "Error: " + m.failed.Error() + "\n"
	}

	lines := make([]string, 0, len(m.steps)+3)
	lines = append(lines, m.headerLine())
	for _, step := range m.steps {
		lines = append(lines, m.rowLine(step))
	}
	if !m.done {
		finished, total := m.stepCounts()
		glyph := spinGlyphs[m.frame%len(spinGlyphs)]
		lines = append(lines, "", fmt.Sprintf("%s %d of %d steps done", glyph, finished, total))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m ProgressModel) headerLine() string {
	parts := make([]string, len(m.columns))
	for i, col := range m.columns {
		parts[i] = HeaderStyle.Render(pad(col.Header, m.width(i)))
	}
	return strings.Join(parts, "  ")
}

func (m ProgressModel) rowLine(step string) string {
	row := m.cells[step]
	parts := make([]string, len(m.columns))
	for i, col := range m.columns {
		val := strings.TrimSpace(row[i])
		// Overflowing cells scroll while work runs and get clipped once the
		// table is final.
		var cell string
		if !m.done && len(val) > m.width(i) {
			cell = scroll(val, m.width(i), m.frame)
		} else {
			cell = pad(clip(val, m.width(i)), m.width(i))
		}
		if col.Status {
			cell = StatusStyle(val).Render(cell)
		}
		parts[i] = cell
	}
	return strings.Join(parts, "  ")
}

// width returns the rendered width of column i, never narrower than its
// header.
func (m ProgressModel) width(i int) int {
	w := m.columns[i].Width
	if hw := len(m.columns[i].Header); hw > w {
		w = hw
	}
	return w
}

// stepCounts tallies the rows whose status cell reached a final state.
func (m ProgressModel) stepCounts() (finished, total int) {
	total = len(m.steps)
	statusCol := -1
	for i, col := range m.columns {
		if col.Status {
			statusCol = i
			break
		}
	}
	if statusCol < 0 {
		return 0, total
	}
	for _, step := range m.steps {
		if doneStatuses[strings.TrimSpace(m.cells[step][statusCol])] {
			finished++
		}
	}
	return finished, total
}

const scrollGap = "   "

// scroll returns a width-sized window into text that slides one byte per
// frame, wrapping through a gap. Callers guarantee len(text) > width.
func scroll(text string, width, frame int) string {
	loop := text + scrollGap
	start := frame % len(loop)
	doubled := loop + loop
	return doubled[start : start+width]
}

// clip shortens s to at most max bytes, marking the cut with "...".
func clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// NonEmptyOrDash substitutes "-" for blank detail text so table cells never
// render empty.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
