// Package artifact locates PlatformIO build output and stages it into
// the published project tree.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// ErrFirmwareMissing indicates a build output directory without the one
// artifact that cannot be optional.
var ErrFirmwareMissing = errors.New("firmware image missing from build output")

// optionalArtifacts are staged from the build output when present.
var optionalArtifacts = []string{
	"boot_app0.bin",
	"bootloader.bin",
	"partitions.bin",
	"partitions.csv",
}

// filesystemImageCandidates maps build output names to published
// names. The first existing source wins. Littlefs images are published
// under the LittleFS.bin spelling regardless of how the build spells
// them; flasher tooling expects that exact name.
var filesystemImageCandidates = []struct {
	source string
	dest   string
}{
	{source: "spiffs.bin", dest: "spiffs.bin"},
	{source: "littlefs.bin", dest: "LittleFS.bin"},
	{source: "LittleFS.bin", dest: "LittleFS.bin"},
}

// Result describes what Collect staged.
type Result struct {
	Files           []string // staged file names in destDir, in staging order
	Notes           []string // remarks worth recording in the build log
	FilesystemImage string   // published filesystem image name, empty when none was found
}

// Collect stages the build artifacts for one environment into destDir:
// the firmware image (required), the optional boot and partition
// images, and the filesystem image when one was built. When
// partitionsSource names an existing file it overrides the
// partitions.csv staged from the build output.
func Collect(buildDir, destDir, partitionsSource string) (Result, error) {
	var res Result

	firmware := filepath.Join(buildDir, "firmware.bin")
	if !fileExists(firmware) {
		return res, fmt.Errorf("%w: %s", ErrFirmwareMissing, buildDir)
	}
	if err := copyFile(firmware, filepath.Join(destDir, "firmware.bin")); err != nil {
		return res, fmt.Errorf("stage firmware.bin: %w", err)
	}
	res.Files = append(res.Files, "firmware.bin")

	for _, name := range optionalArtifacts {
		copied, err := copyIfExists(filepath.Join(buildDir, name), filepath.Join(destDir, name))
		if err != nil {
			return res, fmt.Errorf("stage %s: %w", name, err)
		}
		if copied {
			res.Files = append(res.Files, name)
		}
	}

	if partitionsSource != "" && fileExists(partitionsSource) {
		if err := copyFile(partitionsSource, filepath.Join(destDir, "partitions.csv")); err != nil {
			return res, fmt.Errorf("stage partitions.csv: %w", err)
		}
		if !slices.Contains(res.Files, "partitions.csv") {
			res.Files = append(res.Files, "partitions.csv")
		}
		res.Notes = append(res.Notes, "Using partitions source: "+partitionsSource)
	}

	for _, candidate := range filesystemImageCandidates {
		copied, err := copyIfExists(filepath.Join(buildDir, candidate.source), filepath.Join(destDir, candidate.dest))
		if err != nil {
			return res, fmt.Errorf("stage %s: %w", candidate.dest, err)
		}
		if copied {
			res.Files = append(res.Files, candidate.dest)
			res.FilesystemImage = candidate.dest
			break
		}
	}

	return res, nil
}

// copyIfExists copies src to dst when src is an existing regular file
// and reports whether it did.
func copyIfExists(src, dst string) (bool, error) {
	if !fileExists(src) {
		return false, nil
	}
	if err := copyFile(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// copyFile copies src to dst, preserving the file mode and modification
// time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
