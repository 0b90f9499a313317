package store

import "sort"

// Hash pairs the content digests of the key and certificate files.
type Hash struct {
	Key  string `json:"key"`
	Cert string `json:"cert"`
}

// recordDoc is the persisted shape of the certificate record.
type recordDoc struct {
	Hosts []string `json:"hosts"`
	Hash  Hash     `json:"hash"`
}

// RecordStore tracks which hosts the current certificate covers and the
// content hashes of the files as written. It must only be updated alongside a
// successful certificate write.
type RecordStore struct {
	path string
	data recordDoc
}

// NewRecordStore creates a store bound to the given backing file. Call Init
// before reading or writing.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Init loads prior state into memory, creating the backing file with an empty
// record when it is missing. A corrupt file loads as empty, which forces
// regeneration on the next renew.
func (s *RecordStore) Init() error {
	if loadJSON(s.path, &s.data) {
		s.normalize()
		return nil
	}
	s.data = recordDoc{}
	s.normalize()
	return saveJSON(s.path, &s.data)
}

// Load reads prior state into memory without creating the backing file.
// Missing or corrupt files load as empty.
func (s *RecordStore) Load() {
	if !loadJSON(s.path, &s.data) {
		s.data = recordDoc{}
	}
	s.normalize()
}

func (s *RecordStore) normalize() {
	if s.data.Hosts == nil {
		s.data.Hosts = []string{}
	}
}

// Hosts returns a copy of the recorded host set.
func (s *RecordStore) Hosts() []string {
	hosts := make([]string, len(s.data.Hosts))
	copy(hosts, s.data.Hosts)
	return hosts
}

// Hash returns the recorded key/cert digests.
func (s *RecordStore) Hash() Hash {
	return s.data.Hash
}

// Contains reports whether the recorded host set exactly equals the requested
// set, ignoring order. A subset does not match.
func (s *RecordStore) Contains(hosts []string) bool {
	return hostsMatch(s.data.Hosts, hosts)
}

// Equal reports whether both digests match the recorded values exactly.
func (s *RecordStore) Equal(h Hash) bool {
	return s.data.Hash.Key == h.Key && s.data.Hash.Cert == h.Cert
}

// Update persists a new host set and hash pair atomically.
func (s *RecordStore) Update(hosts []string, h Hash) error {
	s.data.Hosts = make([]string, len(hosts))
	copy(s.data.Hosts, hosts)
	s.data.Hash = h
	s.normalize()
	return saveJSON(s.path, &s.data)
}

// hostsMatch compares two host lists as sets without mutating either.
func hostsMatch(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	as := make([]string, len(a))
	bs := make([]string, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Strings(as)
	sort.Strings(bs)

	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
