package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBuildDirNotFound indicates that no build output directory could be
// located for an environment.
var ErrBuildDirNotFound = errors.New("build output directory not found")

// DiscoverBuildDir locates the compiled output directory for an
// environment. The workspace build/<env> directory is tried first. When
// that misses, the workspace build children are scanned in name order
// for an exact match, or for a directory that mentions the environment
// and holds a firmware image; PlatformIO decorates build directory
// names in some configurations. The conventional .pio/build/<env> under
// the project root is the last resort.
func DiscoverBuildDir(projectRoot, workspaceDir, envName string) (string, error) {
	direct := filepath.Join(workspaceDir, "build", envName)
	if pathExists(direct) {
		return direct, nil
	}

	buildRoot := filepath.Join(workspaceDir, "build")
	if entries, err := os.ReadDir(buildRoot); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			child := filepath.Join(buildRoot, entry.Name())
			if entry.Name() == envName {
				return child, nil
			}
			if strings.Contains(entry.Name(), envName) && pathExists(filepath.Join(child, "firmware.bin")) {
				return child, nil
			}
		}
	}

	fallback := filepath.Join(projectRoot, ".pio", "build", envName)
	if pathExists(fallback) {
		return fallback, nil
	}

	return "", fmt.Errorf("%w for environment %q (looked under %s and .pio/build)",
		ErrBuildDirNotFound, envName, buildRoot)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
