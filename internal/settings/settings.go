// Package settings loads optional packaging defaults from .fwpack.yaml.
// Command-line flags always win over settings values.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked for in the project root and in
// the user's home directory.
const FileName = ".fwpack.yaml"

// Sync holds defaults for publishing to the flasher website host.
type Sync struct {
	Server  string `yaml:"server"`
	Target  string `yaml:"target"`
	KeyFile string `yaml:"key_file"`
}

// Settings is the .fwpack.yaml payload.
type Settings struct {
	OutputRoot string `yaml:"output_root"`
	Sync       Sync   `yaml:"sync"`
}

// Load finds the first settings file, trying the project root and then
// the user's home directory. A missing file is not an error: callers
// get a nil *Settings, which every accessor tolerates.
func Load(projectRoot string) (*Settings, error) {
	paths := []string{filepath.Join(projectRoot, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var s Settings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
		s.Sync.KeyFile = expandUser(s.Sync.KeyFile)
		return &s, nil
	}
	return nil, nil
}

// Output returns the configured output root, or "" when unset. Safe to
// call on a nil receiver.
func (s *Settings) Output() string {
	if s == nil {
		return ""
	}
	return s.OutputRoot
}

// SyncDefaults returns the configured sync destination. Safe to call
// on a nil receiver.
func (s *Settings) SyncDefaults() Sync {
	if s == nil {
		return Sync{}
	}
	return s.Sync
}

func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
