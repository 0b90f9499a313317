package store

// configDoc is the persisted shape of the tool-version record.
type configDoc struct {
	Version string `json:"version"`
}

// ConfigStore tracks the last-known mkcert version for a save directory.
type ConfigStore struct {
	path string
	data configDoc
}

// NewConfigStore creates a store bound to the given backing file. Call Init
// before reading or writing.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Init loads prior state into memory, creating the backing file with an empty
// record when it is missing. A corrupt file loads as empty; an unknown version
// reads as older than anything, which is the safe direction.
func (s *ConfigStore) Init() error {
	if loadJSON(s.path, &s.data) {
		return nil
	}
	s.data = configDoc{}
	return saveJSON(s.path, &s.data)
}

// Load reads prior state into memory without creating the backing file.
// Missing or corrupt files load as empty.
func (s *ConfigStore) Load() {
	if !loadJSON(s.path, &s.data) {
		s.data = configDoc{}
	}
}

// Version returns the recorded tool version, empty when never recorded.
func (s *ConfigStore) Version() string {
	return s.data.Version
}

// SetVersion persists a new tool version. Call only after a successful
// binary swap.
func (s *ConfigStore) SetVersion(version string) error {
	s.data.Version = version
	return saveJSON(s.path, &s.data)
}
