package common

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// GetFileSHA256Hex hashes a file's full contents and returns the lowercase hex digest.
//
// The ModuleDep label recorded in an InfoRecord ("module:NAME@<hex sha256>")
// needs the full 256-bit content hash, not a compacted dedup key: the module
// registry only ever compares two hex strings for equality (spec.md §4.3, §4.2
// decision rule 6), so the plain stdlib digest is enough.
func GetFileSHA256Hex(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashString hashes an in-memory string, used for short cache-invalidation
// keys (e.g. a directory descriptor's fingerprint) where there is no file to open.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
