package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devcert/internal/config"
)

// SetupResult holds the values selected in the setup carousel.
type SetupResult struct {
	Cancelled   bool
	Source      string
	AutoUpgrade bool
	LogLevel    string
}

var sourceInfo = []struct{ name, desc string }{
	{"github", "Latest mkcert release from the GitHub API.\nBest choice when api.github.com is reachable."},
	{"coding", "Pinned release from the Coding.net mirror.\nFor networks where GitHub is blocked or slow."},
	{"local", "Never downloads. Bring your own binary via\nmkcert_path or drop one in the save directory."},
}

var autoUpgradeInfo = []struct{ name, desc string }{
	{"enabled", "Check for a newer mkcert on startup and take\nminor releases automatically"},
	{"disabled", "Keep the installed binary until an explicit\nupgrade"},
}

const autoUpgradeNote = "A release across a major version is never taken\n" +
	"automatically; those need devcert upgrade --allow-major."

var logLevelInfo = []struct{ name, desc string }{
	{"debug", "Everything, including mkcert's own output"},
	{"info", "Normal operation"},
	{"warn", "Problems that were worked around"},
	{"error", "Failures only"},
}

const logLevelNote = "The log file under logs/ always captures debug,\n" +
	"whatever level the console shows."

const (
	setupLabelWidth  = 13
	setupOptionWidth = 9
)

type carouselRow struct {
	label   string
	options []string
	current int
}

// cycle moves the selection by delta, wrapping at either end.
func (r *carouselRow) cycle(delta int) {
	n := len(r.options)
	r.current = (r.current + delta + n) % n
}

func (r carouselRow) value() string {
	return r.options[r.current]
}

type setupModel struct {
	rows      []carouselRow
	focused   int
	done      bool
	cancelled bool
}

func newSetupModel(current config.Config) setupModel {
	sources := []string{config.SourceGitHub, config.SourceCoding, config.SourceLocal}
	toggles := []string{"enabled", "disabled"}
	levels := []string{"debug", "info", "warn", "error"}

	auto := "disabled"
	if current.AutoUpgrade {
		auto = "enabled"
	}
	return setupModel{
		rows: []carouselRow{
			{label: "Source", options: sources, current: optionIndex(sources, current.Source, 0)},
			{label: "Auto upgrade", options: toggles, current: optionIndex(toggles, auto, 1)},
			{label: "Log level", options: levels, current: optionIndex(levels, current.LogLevel, 1)},
		},
	}
}

// optionIndex locates value among options, falling back when the value is
// blank or unrecognized.
func optionIndex(options []string, value string, fallback int) int {
	if value == "" {
		return fallback
	}
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return fallback
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.focused > 0 {
			m.focused--
		}
	case "down", "j":
		if m.focused+1 < len(m.rows) {
			m.focused++
		}
	case "left", "h":
		m.rows[m.focused].cycle(-1)
	case "right", "l":
		m.rows[m.focused].cycle(1)
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	setupFaint   = lipgloss.NewStyle().Faint(true)
	setupFocused = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	setupBold    = lipgloss.NewStyle().Bold(true)
)

func (m setupModel) View() string {
	if m.cancelled {
		return setupFaint.Render("  cancelled") + "\n"
	}
	if m.done {
		return m.summaryView()
	}

	var sb strings.Builder
	sb.WriteByte('\n')
	for i, row := range m.rows {
		sb.WriteString(m.carouselLine(i, row))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(m.helpPanel())
	sb.WriteByte('\n')
	sb.WriteString(setupFaint.Render("  [↑↓] Navigate  [←→] Change  [Enter] Save  [Esc] Cancel"))
	sb.WriteByte('\n')
	return sb.String()
}

// carouselLine renders one selectable row, marking the focused one.
func (m setupModel) carouselLine(i int, row carouselRow) string {
	label := pad(row.label, setupLabelWidth)
	if i == m.focused {
		label = setupFocused.Render(label)
	} else {
		label = setupFaint.Render(label)
	}
	marker := "  "
	if i == m.focused {
		marker = "❯ "
	}
	return fmt.Sprintf("%s%s ◂ %s▸", marker, label, pad(row.value(), setupOptionWidth))
}

// summaryView echoes the saved selections after enter.
func (m setupModel) summaryView() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for _, row := range m.rows {
		sb.WriteString("  ")
		sb.WriteString(setupFaint.Render(pad(row.label, setupLabelWidth)))
		sb.WriteByte(' ')
		sb.WriteString(row.value())
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (m setupModel) helpPanel() string {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		BorderForeground(lipgloss.Color("8"))

	current := m.rows[m.focused].value()
	switch m.focused {
	case 0:
		return frame.Render(describeOptions(current, sourceInfo, ""))
	case 1:
		return frame.Render(describeOptions(current, autoUpgradeInfo, autoUpgradeNote))
	case 2:
		return frame.Render(describeOptions(current, logLevelInfo, logLevelNote))
	}
	return ""
}

// describeOptions lists every option with its description, pointing at the
// currently selected one, with an optional trailing note.
func describeOptions(current string, items []struct{ name, desc string }, note string) string {
	var lines []string
	for _, info := range items {
		marker, name := "  ", setupFaint.Render(pad(info.name, 9))
		if info.name == current {
			marker, name = "❯ ", setupBold.Render(pad(info.name, 9))
		}
		for j, descLine := range strings.Split(info.desc, "\n") {
			if j == 0 {
				lines = append(lines, fmt.Sprintf("%s%s %s", marker, name, descLine))
			} else {
				lines = append(lines, strings.Repeat(" ", 12)+descLine)
			}
		}
	}
	if note != "" {
		lines = append(lines, "")
		for _, noteLine := range strings.Split(note, "\n") {
			lines = append(lines, setupFaint.Render("  "+noteLine))
		}
	}
	return strings.Join(lines, "\n")
}

func (m setupModel) result() SetupResult {
	if m.cancelled {
		return SetupResult{Cancelled: true}
	}
	return SetupResult{
		Source:      m.rows[0].value(),
		AutoUpgrade: m.rows[1].value() == "enabled",
		LogLevel:    m.rows[2].value(),
	}
}

// RunSetup runs the interactive configuration carousel and returns the
// selections.
func RunSetup(w io.Writer, current config.Config) (SetupResult, error) {
	program := tea.NewProgram(newSetupModel(current), tea.WithOutput(w))
	final, err := program.Run()
	if err != nil {
		return SetupResult{}, err
	}
	return final.(setupModel).result(), nil
}
