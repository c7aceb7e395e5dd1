// Package version detects the firmware version a source tree declares.
//
// Projects announce their version through a PROG_VERSION marker,
// typically a C define or constant in the main source file. Detection
// scans the tree for marker lines and extracts a canonical vD.D.D
// string from the first line that yields one.
package version

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Default is reported when no version marker is found anywhere.
const Default = "v0.0.0"

// marker tags the source line that carries the firmware version.
const marker = "PROG_VERSION"

// A matcher extracts a canonical version from one line of source text,
// or reports that it cannot.
type matcher func(line string) (string, bool)

var (
	prefixedPattern  = regexp.MustCompile(`[vV](\d+\.\d+\.\d+)`)
	triplePattern    = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	preformedPattern = regexp.MustCompile(`v\d+\.\d+\.\d+`)
)

// matchers are tried in order; the first success wins. An explicit
// version literal beats an incidental numeric triple, and a pre-formed
// token is re-normalized rather than trusted verbatim.
var matchers = []matcher{matchPrefixed, matchTriple, matchPreformed}

func matchPrefixed(line string) (string, bool) {
	m := prefixedPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return "v" + m[1], true
}

func matchTriple(line string) (string, bool) {
	m := triplePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return "v" + m[1] + "." + m[2] + "." + m[3], true
}

func matchPreformed(line string) (string, bool) {
	m := preformedPattern.FindString(line)
	if m == "" {
		return "", false
	}
	return Normalize(m), true
}

// Normalize extracts the first D.D.D triple from a version-ish string
// and prefixes v. A string without a triple normalizes to the default.
func Normalize(value string) string {
	m := triplePattern.FindStringSubmatch(value)
	if m == nil {
		return Default
	}
	return "v" + m[1] + "." + m[2] + "." + m[3]
}

// Detect scans every file under srcDir in deterministic walk order for
// the version marker. The first marker line that yields a version wins
// and stops the scan. A missing tree, an unreadable file or a tree
// without a usable marker detects as the default.
func Detect(srcDir string) string {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return Default
	}

	found := Default
	_ = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		text := string(data)
		if !strings.Contains(text, marker) {
			return nil
		}
		for _, line := range strings.Split(text, "\n") {
			if !strings.Contains(line, marker) {
				continue
			}
			for _, match := range matchers {
				if v, ok := match(line); ok {
					found = v
					return fs.SkipAll
				}
			}
		}
		return nil
	})
	return found
}
