package mkcert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"devcert/internal/paths"
)

// RootCAMarker is the filename fragment mkcert uses for its CA material
// (rootCA.pem, rootCA-key.pem).
const RootCAMarker = "rootCA"

// retainExistingCA copies the CA from mkcert's default CAROOT into the save
// directory, so regenerated certificates chain to a root the machine
// already trusts. Retention is skipped when the save directory already
// holds CA material, when the default CAROOT is the save directory itself,
// or when no prior CA exists.
func (m *Manager) retainExistingCA(ctx context.Context, binary string) error {
	has, err := hasRootCA(m.paths.Root)
	if err != nil {
		return err
	}
	if has {
		m.log.Debugf("CA already present in %s", m.paths.Root)
		m.reporter.Step(StepCA, StatusSkipped, "CA already in the save directory")
		return nil
	}

	m.reporter.Step(StepCA, StatusResolving, "locating existing CA")
	res, err := m.runner.Run(ctx, binary, []string{"-CAROOT"}, RunOptions{})
	if err != nil {
		m.log.Debugf("mkcert -CAROOT failed (%v), skipping CA retention", err)
		m.reporter.Step(StepCA, StatusSkipped, "no existing CA found")
		return nil
	}

	caroot := strings.TrimSpace(res.Stdout)
	if caroot == "" || filepath.Clean(caroot) == filepath.Clean(m.paths.Root) {
		m.reporter.Step(StepCA, StatusSkipped, "CA lives in the save directory")
		return nil
	}
	ok, err := paths.DirExists(caroot)
	if err != nil {
		return err
	}
	if !ok {
		m.reporter.Step(StepCA, StatusSkipped, "no existing CA found")
		return nil
	}

	m.log.Infof("retaining existing CA from %s", caroot)
	if err := copyDir(caroot, m.paths.Root); err != nil {
		m.reporter.Step(StepCA, StatusError, err.Error())
		return fmt.Errorf("copy existing CA: %w", err)
	}
	m.reporter.Step(StepCA, StatusComplete, "reused CA from "+caroot)
	return nil
}

// hasRootCA reports whether any file in dir carries the CA marker name.
func hasRootCA(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("scan save dir: %w", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), RootCAMarker) {
			return true, nil
		}
	}
	return false, nil
}

// copyDir copies the contents of src into dst recursively, preserving file
// modes.
func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies src over dst through a temp file and rename, keeping the
// source file mode. CA keys stay 0600 that way.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp dest: %w", err)
	}
	if err := os.Chmod(tmpPath, fi.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp dest: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dest: %w", err)
	}
	return nil
}
