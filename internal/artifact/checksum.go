package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ChecksumManifest is the name of the checksum file written next to the
// staged artifacts.
const ChecksumManifest = "SHA256SUMS"

// WriteChecksums writes a SHA256SUMS manifest in dir covering the named
// files. Lines follow the sha256sum text format, sorted by file name,
// so the manifest is byte-identical across runs and verifiable with
// `sha256sum -c`.
func WriteChecksums(dir string, names []string) error {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	for _, name := range sorted {
		sum, err := fileSHA256(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("checksum %s: %w", name, err)
		}
		fmt.Fprintf(&b, "%s  %s\n", sum, name)
	}

	if err := os.WriteFile(filepath.Join(dir, ChecksumManifest), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write checksum manifest: %w", err)
	}
	return nil
}

// fileSHA256 returns the lowercase hex SHA-256 digest of the file at
// path.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
