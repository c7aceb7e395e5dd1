// Package partition parses ESP-IDF style partition tables.
//
// A partition table is a small CSV file with one partition per row:
//
//	# Name,   Type, SubType, Offset,   Size,     Flags
//	nvs,      data, nvs,     0x9000,   0x5000,
//	otadata,  data, ota,     0xe000,   0x2000,
//	app0,     app,  ota_0,   0x10000,  0x140000,
//	spiffs,   data, spiffs,  0x290000, 0x170000,
//
// Offsets and sizes stay strings. The packager never does flash-map
// arithmetic with them; it copies them into the flash descriptor
// verbatim, so whatever notation the table uses is preserved.
package partition

import (
	"fmt"
	"os"
	"strings"
)

// Record is one row of a partition table.
type Record struct {
	Name    string
	Type    string
	Subtype string
	Offset  string
	Size    string
}

// Table holds parsed partition records keyed by name. Declaration order
// is preserved; redeclaring a name replaces the record but keeps its
// original position.
type Table struct {
	records map[string]Record
	order   []string
}

// Parse reads partition table CSV text. Blank lines, comment lines,
// rows with fewer than four fields and rows without a name are skipped;
// parsing never fails.
func Parse(text string) *Table {
	t := &Table{records: make(map[string]Record)}

	for _, rawLine := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(rawLine, ",")
		for i, part := range parts {
			parts[i] = strings.TrimSpace(part)
		}
		if len(parts) < 4 || parts[0] == "" {
			continue
		}

		rec := Record{Name: parts[0], Type: parts[1], Subtype: parts[2], Offset: parts[3]}
		if len(parts) > 4 {
			rec.Size = parts[4]
		}
		if _, ok := t.records[rec.Name]; !ok {
			t.order = append(t.order, rec.Name)
		}
		t.records[rec.Name] = rec
	}

	return t
}

// ParseFile reads and parses a partition table file.
func ParseFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read partition table: %w", err)
	}
	return Parse(string(data)), nil
}

// Len returns the number of partitions in the table. A nil table is
// empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Get returns the record named name.
func (t *Table) Get(name string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	rec, ok := t.records[name]
	return rec, ok
}

// Records returns all records in declaration order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.records[name])
	}
	return out
}
