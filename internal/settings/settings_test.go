package settings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/wvdveer/fwpack/internal/testutil"
)

func TestLoad_ProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	testutil.WriteFile(t, filepath.Join(project, FileName), `
output_root: /srv/flasher/projects
sync:
  server: deploy@example.com
  target: /var/www/flasher
  key_file: /home/deploy/.ssh/id_ed25519
`)

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s == nil {
		t.Fatal("Load() = nil, want settings")
	}

	if s.Output() != "/srv/flasher/projects" {
		t.Errorf("Output() = %q, want %q", s.Output(), "/srv/flasher/projects")
	}
	want := Sync{
		Server:  "deploy@example.com",
		Target:  "/var/www/flasher",
		KeyFile: "/home/deploy/.ssh/id_ed25519",
	}
	if s.SyncDefaults() != want {
		t.Errorf("SyncDefaults() = %+v, want %+v", s.SyncDefaults(), want)
	}
}

func TestLoad_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	testutil.WriteFile(t, filepath.Join(home, FileName), "output_root: /from/home\n")

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Output() != "/from/home" {
		t.Errorf("Output() = %q, want %q", s.Output(), "/from/home")
	}
}

func TestLoad_ProjectWinsOverHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	testutil.WriteFile(t, filepath.Join(home, FileName), "output_root: /from/home\n")

	project := t.TempDir()
	testutil.WriteFile(t, filepath.Join(project, FileName), "output_root: /from/project\n")

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Output() != "/from/project" {
		t.Errorf("Output() = %q, want %q", s.Output(), "/from/project")
	}
}

func TestLoad_MissingFilesReturnNil(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != nil {
		t.Errorf("Load() = %+v, want nil", s)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	testutil.WriteFile(t, filepath.Join(project, FileName), "output_root: [unclosed\n")

	_, err := Load(project)
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), FileName) {
		t.Errorf("Load() error = %v, want it to name the settings file", err)
	}
}

func TestLoad_ExpandsKeyFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()
	testutil.WriteFile(t, filepath.Join(project, FileName), `
sync:
  key_file: ~/.ssh/deploy_key
`)

	s, err := Load(project)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(home, ".ssh", "deploy_key")
	if s.SyncDefaults().KeyFile != want {
		t.Errorf("KeyFile = %q, want %q", s.SyncDefaults().KeyFile, want)
	}
}

func TestNilSettingsAccessors(t *testing.T) {
	var s *Settings

	if s.Output() != "" {
		t.Errorf("nil Output() = %q, want empty", s.Output())
	}
	if s.SyncDefaults() != (Sync{}) {
		t.Errorf("nil SyncDefaults() = %+v, want zero value", s.SyncDefaults())
	}
}
