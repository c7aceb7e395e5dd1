package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wvdveer/fwpack/internal/testutil"
)

func TestPrepare_CreatesFreshDirectory(t *testing.T) {
	root := t.TempDir()

	dir, removed, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if removed {
		t.Error("Prepare() removed = true, want false for a fresh root")
	}
	if dir.Name() != "demo" {
		t.Errorf("Name() = %q, want %q", dir.Name(), "demo")
	}

	info, err := os.Stat(dir.Path())
	if err != nil {
		t.Fatalf("Stat(%s) error = %v", dir.Path(), err)
	}
	if !info.IsDir() {
		t.Errorf("Prepare() did not create a directory at %s", dir.Path())
	}
}

func TestPrepare_RemovesPreviousOutput(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "demo", "esp32dev", "firmware.bin")
	testutil.WriteFile(t, stale, "old build")

	dir, removed, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !removed {
		t.Error("Prepare() removed = false, want true over existing output")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale artifact still present after Prepare: %v", err)
	}
	if _, err := os.Stat(dir.Path()); err != nil {
		t.Errorf("Stat(%s) error = %v", dir.Path(), err)
	}
}

func TestEnsureMetadata_CreatesAllFiles(t *testing.T) {
	root := t.TempDir()
	dir, _, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if err := dir.EnsureMetadata(""); err != nil {
		t.Fatalf("EnsureMetadata() error = %v", err)
	}

	for _, name := range []string{"project.json", "project_en.md", "project_nl.md", "project.png"} {
		if _, err := os.Stat(filepath.Join(dir.Path(), name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir.Path(), "project.json"))
	if err != nil {
		t.Fatalf("ReadFile(project.json) error = %v", err)
	}
	want := `{
  "name": "demo",
  "long_name_nl": "demo",
  "long_name_en": "demo",
  "description_en": "Firmware project for demo",
  "description_nl": "Firmware project voor demo",
  "image": "project.png"
}
`
	if string(got) != want {
		t.Errorf("project.json = %q, want %q", got, want)
	}

	en, err := os.ReadFile(filepath.Join(dir.Path(), "project_en.md"))
	if err != nil {
		t.Fatalf("ReadFile(project_en.md) error = %v", err)
	}
	if string(en) != "# demo\n\nEnglish project description.\n" {
		t.Errorf("project_en.md = %q", en)
	}
}

func TestEnsureMetadata_CopiesTemplateImage(t *testing.T) {
	root := t.TempDir()
	template := filepath.Join(root, "logo.png")
	testutil.WriteFile(t, template, "PNGDATA")

	dir, _, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := dir.EnsureMetadata(template); err != nil {
		t.Fatalf("EnsureMetadata() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir.Path(), "project.png"))
	if err != nil {
		t.Fatalf("ReadFile(project.png) error = %v", err)
	}
	if string(got) != "PNGDATA" {
		t.Errorf("project.png = %q, want template contents", got)
	}
}

func TestEnsureMetadata_PlaceholderWithoutTemplate(t *testing.T) {
	root := t.TempDir()
	dir, _, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := dir.EnsureMetadata(""); err != nil {
		t.Fatalf("EnsureMetadata() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir.Path(), "project.png"))
	if err != nil {
		t.Fatalf("Stat(project.png) error = %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("placeholder size = %d, want 0", info.Size())
	}
}

func TestEnsureMetadata_KeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	dir, _, err := Prepare(root, "demo")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	custom := filepath.Join(dir.Path(), "project_en.md")
	testutil.WriteFile(t, custom, "# demo\n\nHand-written description.\n")

	if err := dir.EnsureMetadata(""); err != nil {
		t.Fatalf("EnsureMetadata() error = %v", err)
	}

	got, err := os.ReadFile(custom)
	if err != nil {
		t.Fatalf("ReadFile(project_en.md) error = %v", err)
	}
	if string(got) != "# demo\n\nHand-written description.\n" {
		t.Errorf("EnsureMetadata() overwrote existing file: %q", got)
	}
}

func TestFindTemplateImage(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
		found bool
	}{
		{
			name:  "prefers project.png",
			files: []string{"aaa.png", "project.png", "zzz.png"},
			want:  "project.png",
			found: true,
		},
		{
			name:  "first in name order otherwise",
			files: []string{"wallpaper.png", "board.png"},
			want:  "board.png",
			found: true,
		},
		{
			name:  "no pngs",
			files: []string{"readme.md"},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, name := range tt.files {
				testutil.WriteFile(t, filepath.Join(root, name), "x")
			}

			got, found := FindTemplateImage(root)
			if found != tt.found {
				t.Fatalf("FindTemplateImage() found = %v, want %v", found, tt.found)
			}
			if found && filepath.Base(got) != tt.want {
				t.Errorf("FindTemplateImage() = %q, want base %q", got, tt.want)
			}
		})
	}
}
