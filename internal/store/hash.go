package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile returns the lower-case hex SHA-256 digest of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hash: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFiles digests the key and certificate files into a Hash pair.
func HashFiles(keyPath, certPath string) (Hash, error) {
	keySum, err := HashFile(keyPath)
	if err != nil {
		return Hash{}, err
	}
	certSum, err := HashFile(certPath)
	if err != nil {
		return Hash{}, err
	}
	return Hash{Key: keySum, Cert: certSum}, nil
}
