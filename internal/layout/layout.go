// Package layout decides where each environment's artifacts land inside
// the published project tree.
//
// The tree groups artifacts by board, then by version. Two environments
// building for the same board would land on the same directory, so a
// colliding board gains a leading environment-name segment. A board
// claimed by exactly one environment stays flat, which keeps the common
// single-board project tree short.
package layout

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wvdveer/fwpack/internal/pioconf"
)

// UnknownSegment replaces identifiers that sanitize away to nothing.
const UnknownSegment = "unknown"

var unsafeRunPattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Sanitize maps an arbitrary identifier to a safe single path segment.
// Every run of characters outside [A-Za-z0-9._-] becomes one
// underscore, then leading and trailing dots, underscores and hyphens
// are stripped. Sanitize is idempotent.
func Sanitize(value string) string {
	sanitized := unsafeRunPattern.ReplaceAllString(strings.TrimSpace(value), "_")
	sanitized = strings.Trim(sanitized, "._-")
	if sanitized == "" {
		return UnknownSegment
	}
	return sanitized
}

// BoardID resolves the sanitized board identifier for an environment:
// the configured board when one is set, the environment name itself
// otherwise.
func BoardID(doc *pioconf.Document, envName string) string {
	if board, ok := doc.Board(envName); ok && board != "" {
		return Sanitize(board)
	}
	return Sanitize(envName)
}

// Target is the destination of one environment's artifacts, relative to
// the published project directory.
type Target struct {
	Env      string
	BoardID  string
	Segments []string
}

// Path returns the destination path below the project directory.
func (t Target) Path() string {
	return filepath.Join(t.Segments...)
}

// Plan computes a destination for every declared environment, in
// declaration order. Environments sharing a board identifier get the
// environment-name segment prepended so they never collide.
func Plan(doc *pioconf.Document, version string) []Target {
	envs := doc.Environments()

	counts := make(map[string]int, len(envs))
	boards := make(map[string]string, len(envs))
	for _, env := range envs {
		board := BoardID(doc, env)
		boards[env] = board
		counts[board]++
	}

	targets := make([]Target, 0, len(envs))
	for _, env := range envs {
		board := boards[env]
		segments := []string{board, version}
		if counts[board] > 1 {
			segments = append([]string{env}, segments...)
		}
		targets = append(targets, Target{Env: env, BoardID: board, Segments: segments})
	}
	return targets
}
