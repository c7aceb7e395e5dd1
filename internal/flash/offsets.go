package flash

import (
	"strings"

	"github.com/wvdveer/fwpack/internal/partition"
)

// Well-known flash offsets for ESP32 class chips.
const (
	// DefaultAppOffset is where the application image lives when the
	// partition table does not say otherwise.
	DefaultAppOffset = "0x10000"

	// PartitionTableOffset is where the partition table binary lives.
	PartitionTableOffset = "0x8000"

	// BootApp0Offset is where the OTA boot selector image lives.
	BootApp0Offset = "0xe000"

	// ClassicBootloaderOffset is where the original ESP32 expects its
	// second-stage bootloader.
	ClassicBootloaderOffset = "0x1000"
)

// bootloaderOffsets maps chip families to their bootloader offset.
// Rules are matched in order against the normalized board identifier;
// new chip families extend this table. The ESP32-S3 generation moved
// the bootloader to the very start of flash.
var bootloaderOffsets = []struct {
	family string
	offset string
}{
	{family: "esp32s3", offset: "0x0000"},
}

// BootloaderOffset returns the bootloader flash offset for a board
// identifier. Unrecognized boards get the classic ESP32 offset.
func BootloaderOffset(boardID string) string {
	id := normalizeBoard(boardID)
	for _, rule := range bootloaderOffsets {
		if strings.Contains(id, rule.family) {
			return rule.offset
		}
	}
	return ClassicBootloaderOffset
}

// AppOffset infers the flash offset for the application image. A
// factory partition wins, then the first OTA slot, then any partition
// of type app; a table without usable entries yields the conventional
// default. Records with an empty offset never match.
func AppOffset(t *partition.Table) string {
	if rec, ok := t.Get("factory"); ok && rec.Offset != "" {
		return rec.Offset
	}
	if rec, ok := t.Get("app0"); ok && rec.Offset != "" {
		return rec.Offset
	}
	for _, rec := range t.Records() {
		if rec.Type == "app" && rec.Offset != "" {
			return rec.Offset
		}
	}
	return DefaultAppOffset
}

// FilesystemOffset infers the flash offset for the filesystem image.
// Partitions named after the common filesystems are checked first, then
// any partition whose subtype names one. There is no default: a table
// without a filesystem partition yields no offset.
func FilesystemOffset(t *partition.Table) (string, bool) {
	for _, name := range []string{"spiffs", "littlefs", "fatfs"} {
		if rec, ok := t.Get(name); ok && rec.Offset != "" {
			return rec.Offset, true
		}
	}
	for _, rec := range t.Records() {
		switch strings.ToLower(rec.Subtype) {
		case "spiffs", "littlefs", "fatfs":
			if rec.Offset != "" {
				return rec.Offset, true
			}
		}
	}
	return "", false
}

// normalizeBoard lower-cases a board identifier and strips everything
// that is not a letter or digit, so ESP32-S3-DevKitC-1 and esp32s3box
// land on the same family substring.
func normalizeBoard(boardID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(boardID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
