// Package version decides whether a newer mkcert release warrants an upgrade
// and whether the jump crosses a major version.
package version

import (
	"strconv"
	"strings"

	"devcert/internal/store"
)

// Comparison is the outcome of weighing the recorded version against the
// latest release.
type Comparison struct {
	CurrentVersion string `json:"current_version"`
	NextVersion    string `json:"next_version"`
	ShouldUpdate   bool   `json:"should_update"`
	BreakingChange bool   `json:"breaking_change"`
}

// Manager reads and writes the recorded tool version through the config
// store.
type Manager struct {
	config *store.ConfigStore
}

// NewManager wraps an initialized config store.
func NewManager(config *store.ConfigStore) *Manager {
	return &Manager{config: config}
}

// Compare weighs the latest release against the recorded version. An absent
// recorded version counts as older than anything and never breaking, since
// there is nothing to break.
func (m *Manager) Compare(latest string) Comparison {
	current := m.config.Version()
	cmp := Comparison{
		CurrentVersion: current,
		NextVersion:    latest,
	}

	if current == "" {
		cmp.ShouldUpdate = true
		return cmp
	}

	currentParts := numericParts(current)
	latestParts := numericParts(latest)

	cmp.ShouldUpdate = compareParts(latestParts, currentParts) > 0
	cmp.BreakingChange = major(currentParts) != major(latestParts)
	return cmp
}

// Update persists the new version. Call only after a successful binary swap.
func (m *Manager) Update(version string) error {
	return m.config.SetVersion(version)
}

// Current returns the recorded version, empty when never recorded.
func (m *Manager) Current() string {
	return m.config.Version()
}

func major(parts []int) int {
	if len(parts) == 0 {
		return 0
	}
	return parts[0]
}

// compareParts orders two version component lists, padding the shorter with
// zeros. Returns -1, 0, or 1.
func compareParts(a, b []int) int {
	for len(a) < len(b) {
		a = append(a, 0)
	}
	for len(b) < len(a) {
		b = append(b, 0)
	}
	for i := range a {
		if a[i] > b[i] {
			return 1
		}
		if a[i] < b[i] {
			return -1
		}
	}
	return 0
}

// numericParts extracts the numeric runs from a version string, so "v1.4.4"
// and "1.4.4" compare equal.
func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}
