package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"devcert/internal/config"
)

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// driveSetup applies the given keys to the model and returns the result.
func driveSetup(m setupModel, keys ...string) SetupResult {
	model := tea.Model(m)
	for _, k := range keys {
		model, _ = model.Update(key(k))
	}
	return model.(setupModel).result()
}

func TestSetupModelPreselectsCurrentConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Source = config.SourceCoding
	cfg.AutoUpgrade = true
	cfg.LogLevel = "debug"

	res := driveSetup(newSetupModel(cfg), "enter")
	if res.Source != config.SourceCoding {
		t.Errorf("Source = %q, want %q", res.Source, config.SourceCoding)
	}
	if !res.AutoUpgrade {
		t.Error("AutoUpgrade = false, want true")
	}
	if res.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", res.LogLevel, "debug")
	}
}

func TestSetupModelCyclesOptions(t *testing.T) {
	// Source starts at github; one step right lands on coding.
	res := driveSetup(newSetupModel(config.Default()), "right", "enter")
	if res.Source != config.SourceCoding {
		t.Errorf("Source = %q, want %q after one step", res.Source, config.SourceCoding)
	}

	// Wrapping left from github lands on local.
	res = driveSetup(newSetupModel(config.Default()), "left", "enter")
	if res.Source != config.SourceLocal {
		t.Errorf("Source = %q, want %q after wrap", res.Source, config.SourceLocal)
	}
}

func TestSetupModelNavigatesRows(t *testing.T) {
	res := driveSetup(newSetupModel(config.Default()), "down", "left", "enter")
	if !res.AutoUpgrade {
		t.Error("AutoUpgrade = false, want true after toggling")
	}
}

func TestSetupModelCancel(t *testing.T) {
	res := driveSetup(newSetupModel(config.Default()), "esc")
	if !res.Cancelled {
		t.Error("expected Cancelled after esc")
	}
}

func TestOptionIndex(t *testing.T) {
	options := []string{"github", "coding", "local"}
	if got := optionIndex(options, "coding", 0); got != 1 {
		t.Errorf("optionIndex(coding) = %d, want 1", got)
	}
	if got := optionIndex(options, "", 2); got != 2 {
		t.Errorf("optionIndex(empty) = %d, want fallback 2", got)
	}
	if got := optionIndex(options, "gitlab", 0); got != 0 {
		t.Errorf("optionIndex(unknown) = %d, want fallback 0", got)
	}
}
