// Package flash infers flash offsets for firmware artifacts and
// synthesizes the flash.json descriptor that flashing tools consume.
package flash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wvdveer/fwpack/internal/partition"
)

// FileEntry is one element of the flash_files sequence: a binary and
// the offset it is written to.
type FileEntry struct {
	Offset string `json:"offset"`
	File   string `json:"file"`
}

// Descriptor is the flash.json manifest. Field names and the
// flash_files order are an external contract; flashing tools walk the
// entries front to back and write each binary at its offset.
type Descriptor struct {
	Board      string      `json:"board"`
	Version    string      `json:"version"`
	FlashFiles []FileEntry `json:"flash_files"`
}

// filesystemImages lists the filesystem image names to probe for, in
// order of preference.
var filesystemImages = []string{"LittleFS.bin", "spiffs.bin"}

// Synthesize builds the flash descriptor for the artifacts present in
// dir. Entries appear in flashing order: bootloader, partition table,
// boot app pointer, application image, filesystem image. Only files
// that actually exist get an entry. The returned warnings describe
// degradations worth surfacing in the build log.
func Synthesize(dir, boardID, version string, table *partition.Table) (Descriptor, []string) {
	desc := Descriptor{Board: boardID, Version: version, FlashFiles: []FileEntry{}}
	var warnings []string

	if fileExists(filepath.Join(dir, "bootloader.bin")) {
		desc.FlashFiles = append(desc.FlashFiles, FileEntry{Offset: BootloaderOffset(boardID), File: "bootloader.bin"})
	}
	if fileExists(filepath.Join(dir, "partitions.bin")) {
		desc.FlashFiles = append(desc.FlashFiles, FileEntry{Offset: PartitionTableOffset, File: "partitions.bin"})
	}
	if fileExists(filepath.Join(dir, "boot_app0.bin")) {
		desc.FlashFiles = append(desc.FlashFiles, FileEntry{Offset: BootApp0Offset, File: "boot_app0.bin"})
	}
	if fileExists(filepath.Join(dir, "firmware.bin")) {
		desc.FlashFiles = append(desc.FlashFiles, FileEntry{Offset: AppOffset(table), File: "firmware.bin"})
	}

	for _, name := range filesystemImages {
		if !fileExists(filepath.Join(dir, name)) {
			continue
		}
		if offset, ok := FilesystemOffset(table); ok {
			desc.FlashFiles = append(desc.FlashFiles, FileEntry{Offset: offset, File: name})
		} else {
			warnings = append(warnings, fmt.Sprintf("no filesystem offset found in partition table for %s", name))
		}
		break
	}

	return desc, warnings
}

// WriteFile writes the descriptor to path as two-space indented JSON
// with a trailing newline.
func (d Descriptor) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create flash descriptor: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		f.Close()
		return fmt.Errorf("encode flash descriptor: %w", err)
	}
	return f.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
