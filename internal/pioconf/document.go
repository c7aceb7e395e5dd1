package pioconf

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoEnvironments indicates a platformio.ini without a single
// [env:<name>] section. There is nothing to build, let alone package.
var ErrNoEnvironments = errors.New("no environments defined in platformio.ini")

var (
	sectionPattern = regexp.MustCompile(`^\[(.+)\]$`)
	envPattern     = regexp.MustCompile(`^\s*\[\s*env:([^\]]+)\s*\]\s*$`)
)

// Document is a parsed platformio.ini.
type Document struct {
	sections map[string]map[string]string
	envs     []string
}

// Parse reads platformio.ini text into a Document. It never fails:
// lines that do not look like a section header or a key=value pair are
// skipped.
func Parse(text string) *Document {
	doc := &Document{sections: make(map[string]map[string]string)}
	current := ""
	inSection := false

	for _, rawLine := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			current = strings.ToLower(strings.TrimSpace(m[1]))
			inSection = true
			if _, ok := doc.sections[current]; !ok {
				doc.sections[current] = make(map[string]string)
			}
			if em := envPattern.FindStringSubmatch(rawLine); em != nil {
				if name := strings.TrimSpace(em[1]); name != "" && !slices.Contains(doc.envs, name) {
					doc.envs = append(doc.envs, name)
				}
			}
			continue
		}

		if !inSection || !strings.Contains(rawLine, "=") {
			continue
		}

		key, value, _ := strings.Cut(rawLine, "=")
		doc.sections[current][strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(stripInlineComment(value))
	}

	return doc
}

// ParseFile reads and parses a platformio.ini file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read platformio.ini: %w", err)
	}
	return Parse(string(data)), nil
}

// Environments returns the declared environment names in declaration
// order. A name declared twice keeps its first position.
func (d *Document) Environments() []string {
	return slices.Clone(d.envs)
}

// Board returns the board identifier configured for envName.
func (d *Document) Board(envName string) (string, bool) {
	return d.value(envName, "board")
}

// PartitionsSource returns the raw board_build.partitions value for
// envName, exactly as written (quoting and variables included).
func (d *Document) PartitionsSource(envName string) (string, bool) {
	return d.value(envName, "board_build.partitions")
}

// WorkspaceDir returns the raw workspace_dir value from the [platformio]
// section.
func (d *Document) WorkspaceDir() (string, bool) {
	kv, ok := d.sections["platformio"]
	if !ok {
		return "", false
	}
	v, ok := kv["workspace_dir"]
	return v, ok
}

// value resolves key for envName: the [env:<name>] section first, then
// the shared [env] section. Presence wins, not truthiness, so an empty
// value in [env:<name>] shadows a non-empty shared one.
func (d *Document) value(envName, key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, section := range []string{strings.ToLower("env:" + envName), "env"} {
		if kv, ok := d.sections[section]; ok {
			if v, ok := kv[key]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// stripInlineComment cuts a trailing comment off a value. A comment
// starts at the first whitespace character that is immediately followed
// by ';' or '#'; a ';' or '#' glued to the value is part of the value.
func stripInlineComment(s string) string {
	for i, r := range s {
		if !unicode.IsSpace(r) {
			continue
		}
		rest := s[i+utf8.RuneLen(r):]
		if len(rest) > 0 && (rest[0] == ';' || rest[0] == '#') {
			return s[:i]
		}
	}
	return s
}
