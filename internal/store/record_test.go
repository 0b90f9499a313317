package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordInitMissingFileCreatesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	rs := NewRecordStore(path)

	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(rs.Hosts()) != 0 {
		t.Errorf("expected empty hosts, got %v", rs.Hosts())
	}
	if rs.Hash() != (Hash{}) {
		t.Errorf("expected empty hash, got %+v", rs.Hash())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected backing file to exist: %v", err)
	}
}

func TestRecordInitCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs := NewRecordStore(path)
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(rs.Hosts()) != 0 {
		t.Errorf("expected empty hosts, got %v", rs.Hosts())
	}
}

func TestRecordUpdateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	rs := NewRecordStore(path)
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	h := Hash{Key: "aaa", Cert: "bbb"}
	if err := rs.Update([]string{"localhost", "dev.test"}, h); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded := NewRecordStore(path)
	if err := reloaded.Init(); err != nil {
		t.Fatalf("reload Init: %v", err)
	}
	if !reloaded.Contains([]string{"localhost", "dev.test"}) {
		t.Errorf("expected reloaded record to contain hosts")
	}
	if !reloaded.Equal(h) {
		t.Errorf("expected reloaded hash to match, got %+v", reloaded.Hash())
	}
}

func TestContainsIgnoresOrder(t *testing.T) {
	rs := NewRecordStore(filepath.Join(t.TempDir(), "record.json"))
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := rs.Update([]string{"b", "a"}, Hash{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !rs.Contains([]string{"a", "b"}) {
		t.Error("expected reordered hosts to match")
	}
	if rs.Contains([]string{"a"}) {
		t.Error("subset must not match")
	}
	if rs.Contains([]string{"a", "b", "c"}) {
		t.Error("superset must not match")
	}
	if rs.Contains([]string{"a", "c"}) {
		t.Error("different set must not match")
	}
}

func TestHostsMatchDoesNotMutateArgs(t *testing.T) {
	a := []string{"z", "a", "m"}
	b := []string{"m", "z", "a"}

	if !hostsMatch(a, b) {
		t.Fatal("expected match")
	}
	if a[0] != "z" || a[1] != "a" || a[2] != "m" {
		t.Errorf("first argument mutated: %v", a)
	}
	if b[0] != "m" || b[1] != "z" || b[2] != "a" {
		t.Errorf("second argument mutated: %v", b)
	}
}

func TestEqualRequiresBothDigests(t *testing.T) {
	rs := NewRecordStore(filepath.Join(t.TempDir(), "record.json"))
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := rs.Update([]string{"localhost"}, Hash{Key: "k1", Cert: "c1"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !rs.Equal(Hash{Key: "k1", Cert: "c1"}) {
		t.Error("expected exact hash to match")
	}
	if rs.Equal(Hash{Key: "k1", Cert: "other"}) {
		t.Error("cert mismatch must not match")
	}
	if rs.Equal(Hash{Key: "other", Cert: "c1"}) {
		t.Error("key mismatch must not match")
	}
}

func TestUpdateCopiesHosts(t *testing.T) {
	rs := NewRecordStore(filepath.Join(t.TempDir(), "record.json"))
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	hosts := []string{"localhost"}
	if err := rs.Update(hosts, Hash{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	hosts[0] = "mutated"

	if got := rs.Hosts(); got[0] != "localhost" {
		t.Errorf("record shares caller slice: %v", got)
	}
}

func TestUpdateAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.json")

	rs := NewRecordStore(path)
	if err := rs.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := rs.Update([]string{"localhost"}, Hash{Key: "k", Cert: "c"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected .tmp file to not exist, but it does")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected record file to exist: %v", err)
	}
}
