package file

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/spf13/afero"
)

// DigestFile returns a self describing xxh64 digest (e.g. "xxh64:a1b2...") of the file contents.
func DigestFile(fs afero.Fs, path string) (string, error) {
	value, err := HashFile(fs, path, xxhash.New64())
	if err != nil {
		return "", err
	}
	return "xxh64:" + value, nil
}

func HashFile(fs afero.Fs, path string, hasher hash.Hash) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash file '%s': %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
