package mkcert

import (
	"devcert/internal/paths"
	"devcert/internal/store"
)

// Health is a read-only snapshot of the managed state, for status output.
// Gathering it never creates files in the save directory.
type Health struct {
	BinaryPath   string   `json:"binary_path"`
	BinaryExists bool     `json:"binary_exists"`
	External     bool     `json:"external"`
	Version      string   `json:"version"`
	CAPresent    bool     `json:"ca_present"`
	KeyPath      string   `json:"key_path"`
	CertPath     string   `json:"cert_path"`
	KeyExists    bool     `json:"key_exists"`
	CertExists   bool     `json:"cert_exists"`
	Hosts        []string `json:"hosts"`
	Fresh        bool     `json:"fresh"`
}

// Health inspects the save directory and reports what is there.
func (m *Manager) Health() Health {
	m.configStore.Load()
	m.recordStore.Load()

	binary, external, found := m.resolveBinary()
	h := Health{
		BinaryPath:   binary,
		BinaryExists: found,
		External:     external,
		Version:      m.configStore.Version(),
		KeyPath:      m.paths.KeyFile,
		CertPath:     m.paths.CertFile,
		Hosts:        m.recordStore.Hosts(),
	}
	h.CAPresent, _ = hasRootCA(m.paths.Root)
	h.KeyExists, _ = paths.FileExists(m.paths.KeyFile)
	h.CertExists, _ = paths.FileExists(m.paths.CertFile)
	if h.KeyExists && h.CertExists {
		if hash, err := store.HashFiles(m.paths.KeyFile, m.paths.CertFile); err == nil {
			h.Fresh = m.recordStore.Equal(hash)
		}
	}
	return h
}
