// Package pioconf parses platformio.ini project configuration and answers
// the questions the packaging pipeline asks of it.
//
// # Overview
//
// PlatformIO projects describe their build environments in an INI-style
// file. This package reads that file once into a Document and exposes
// typed accessors for the handful of keys the packager cares about:
//   - Board(env): the board identifier for an environment
//   - PartitionsSource(env): the configured partition table file
//   - WorkspaceDir(): the workspace directory override
//
// Accessors resolve environment keys with PlatformIO's inheritance rule:
// the [env:<name>] section is consulted first, then the shared [env]
// section. A key that is present but empty in [env:<name>] still shadows
// the shared value.
//
// # Parsing model
//
// Parsing is deliberately tolerant and total. Real platformio.ini files in
// the wild carry stray lines, duplicated sections and loose whitespace, and
// a packager that rejects them helps nobody. Malformed lines are skipped,
// duplicate sections are merged, and later duplicate keys win. The only
// errors ParseFile can return are I/O errors.
//
// Section and key names are folded to lower case. Environment names keep
// the exact spelling of their [env:<name>] declaration, because that
// spelling is what `pio run -e` expects on the command line.
package pioconf
