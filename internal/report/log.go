// Package report produces the per-environment build log that ships
// next to the staged artifacts.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// timeFormat is ISO-8601 to the second, local time.
const timeFormat = "2006-01-02T15:04:05"

// Log accumulates everything worth keeping about one environment's
// packaging run: the commands that ran, their output, and any
// degradations along the way. WriteFile renders it as markdown.
type Log struct {
	Env      string
	Host     string // packaging host description, optional
	Revision string // source revision description, optional
	BuildDir string // resolved build output directory

	lines []string
}

// NewLog starts an empty build log for an environment.
func NewLog(env string) *Log {
	return &Log{Env: env}
}

// Command records an invoked command line.
func (l *Log) Command(cmdline string) {
	l.lines = append(l.lines, "$ "+cmdline)
}

// Output records command output with trailing whitespace trimmed.
// Empty output records nothing.
func (l *Log) Output(out string) {
	if out == "" {
		return
	}
	l.lines = append(l.lines, strings.TrimRight(out, " \t\r\n"))
}

// Note records a remark.
func (l *Log) Note(line string) {
	l.lines = append(l.lines, line)
}

// Warnf records a warning remark.
func (l *Log) Warnf(format string, args ...any) {
	l.lines = append(l.lines, "WARN: "+fmt.Sprintf(format, args...))
}

// WriteFile renders the log as markdown at path.
func (l *Log) WriteFile(path string) error {
	body := []string{"# Build log for " + l.Env, "", "Generated: " + time.Now().Format(timeFormat)}
	if l.Host != "" {
		body = append(body, "Host: "+l.Host)
	}
	if l.Revision != "" {
		body = append(body, "Revision: "+l.Revision)
	}
	body = append(body, "")
	body = append(body, l.lines...)
	if l.BuildDir != "" {
		body = append(body, "", "Resolved buildDir: "+l.BuildDir)
	}

	content := strings.TrimSpace(strings.Join(body, "\n")) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write build log: %w", err)
	}
	return nil
}
