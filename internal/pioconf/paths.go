package pioconf

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveWorkspaceDir returns the effective PlatformIO workspace
// directory for a project rooted at projectRoot: the workspace_dir
// override when one is set, the conventional .pio directory otherwise.
// ${PROJECT_DIR} references and a leading ~ are expanded, and a relative
// override is anchored at the project root.
func (d *Document) ResolveWorkspaceDir(projectRoot string) string {
	raw, ok := d.WorkspaceDir()
	if !ok || raw == "" {
		return filepath.Join(projectRoot, ".pio")
	}

	expanded := strings.ReplaceAll(raw, "${PROJECT_DIR}", projectRoot)
	expanded = strings.ReplaceAll(expanded, "$PROJECT_DIR", projectRoot)
	expanded = strings.ReplaceAll(expanded, "${platformio.packages_dir}", "")
	expanded = expandUser(expanded)
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(projectRoot, expanded)
	}
	return filepath.Clean(expanded)
}

// ResolvePartitionsSource locates the partition table file for envName.
// The configured board_build.partitions value is tried first, with
// surrounding quotes stripped and ${PROJECT_DIR} and ~ expanded, then the
// conventional partitions.csv in the project root. Only an existing
// regular file qualifies.
func (d *Document) ResolvePartitionsSource(projectRoot, envName string) (string, bool) {
	var candidates []string

	if raw, ok := d.PartitionsSource(envName); ok && raw != "" {
		cleaned := strings.Trim(strings.Trim(strings.TrimSpace(raw), `"`), `'`)
		cleaned = strings.ReplaceAll(cleaned, "${PROJECT_DIR}", projectRoot)
		cleaned = strings.ReplaceAll(cleaned, "$PROJECT_DIR", projectRoot)
		cleaned = expandUser(cleaned)
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(projectRoot, cleaned)
		}
		candidates = append(candidates, filepath.Clean(cleaned))
	}

	candidates = append(candidates, filepath.Join(projectRoot, "partitions.csv"))

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// expandUser replaces a leading ~ with the current user's home
// directory. The path comes back unchanged when the home directory
// cannot be determined.
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
