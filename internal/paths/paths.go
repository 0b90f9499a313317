package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SavePaths captures canonical locations inside a devcert save directory.
type SavePaths struct {
	Root             string
	ConfigFile       string
	ConfigRecordFile string
	CertRecordFile   string
	KeyFile          string
	CertFile         string
	BinaryFile       string
	LogsDir          string
}

const (
	defaultKeyFileName  = "dev.pem"
	defaultCertFileName = "cert.pem"
)

// Resolve determines the save directory using the optional --save-dir flag,
// the DEVCERT_HOME environment variable, or the per-user default location.
func Resolve(saveFlag string) (SavePaths, error) {
	root, err := resolveRoot(saveFlag)
	if err != nil {
		return SavePaths{}, err
	}
	return newSavePaths(root), nil
}

func resolveRoot(saveFlag string) (string, error) {
	if saveFlag != "" {
		abs, err := filepath.Abs(saveFlag)
		if err != nil {
			return "", fmt.Errorf("resolve save dir: %w", err)
		}
		return abs, nil
	}

	if override, ok := os.LookupEnv("DEVCERT_HOME"); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve DEVCERT_HOME: %w", err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "devcert"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "devcert"), nil
		}
		return filepath.Join(home, "AppData", "Local", "devcert"), nil
	default:
		return filepath.Join(home, ".local", "share", "devcert"), nil
	}
}

func newSavePaths(root string) SavePaths {
	return SavePaths{
		Root:             root,
		ConfigFile:       filepath.Join(root, "devcert.yaml"),
		ConfigRecordFile: filepath.Join(root, "config.json"),
		CertRecordFile:   filepath.Join(root, "record.json"),
		KeyFile:          filepath.Join(root, defaultKeyFileName),
		CertFile:         filepath.Join(root, defaultCertFileName),
		BinaryFile:       filepath.Join(root, ExecutableName("mkcert")),
		LogsDir:          filepath.Join(root, "logs"),
	}
}

// ApplyFileNames overrides the key and certificate file locations from
// configured names. Relative names resolve under the save directory.
func ApplyFileNames(sp SavePaths, keyName, certName string) SavePaths {
	if keyName != "" {
		sp.KeyFile = resolveSavePath(sp.Root, keyName)
	}
	if certName != "" {
		sp.CertFile = resolveSavePath(sp.Root, certName)
	}
	return sp
}

func resolveSavePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the save directory exists on disk.
func (p SavePaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	return nil
}

// EnsureLogsDir creates the logs directory under the save directory.
func (p SavePaths) EnsureLogsDir() error {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// ExecutableName appends the platform executable suffix where required.
func ExecutableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
