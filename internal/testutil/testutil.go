// Package testutil provides helpers for building throwaway PlatformIO
// project trees in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as
// needed. The test fails on any error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("create parent directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", filepath.Base(path), err)
	}
}

// WriteTree writes a set of files below root, keyed by slash-separated
// relative paths.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

// ScaffoldProject creates a minimal PlatformIO project in a fresh
// temporary directory: the given platformio.ini plus an empty src
// directory. It returns the project root.
func ScaffoldProject(t *testing.T, ini string) string {
	t.Helper()

	root := t.TempDir()
	WriteFile(t, filepath.Join(root, "platformio.ini"), ini)
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o750); err != nil {
		t.Fatalf("create src directory: %v", err)
	}
	return root
}

// ScaffoldBuildOutput creates the build output directory for env under
// workspaceDir and fills it with the named artifact files. It returns
// the build directory.
func ScaffoldBuildOutput(t *testing.T, workspaceDir, env string, files ...string) string {
	t.Helper()

	buildDir := filepath.Join(workspaceDir, "build", env)
	if err := os.MkdirAll(buildDir, 0o750); err != nil {
		t.Fatalf("create build directory: %v", err)
	}
	for _, name := range files {
		WriteFile(t, filepath.Join(buildDir, name), name+" bytes\n")
	}
	return buildDir
}
