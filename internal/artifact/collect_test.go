package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wvdveer/fwpack/internal/testutil"
)

func TestCollect(t *testing.T) {
	buildDir := t.TempDir()
	testutil.WriteTree(t, buildDir, map[string]string{
		"firmware.bin":   "firmware bytes",
		"boot_app0.bin":  "boot bytes",
		"bootloader.bin": "loader bytes",
		"partitions.bin": "table bytes",
		"partitions.csv": "nvs, data, nvs, 0x9000, 0x5000,\n",
		"littlefs.bin":   "fs bytes",
	})
	destDir := t.TempDir()

	res, err := Collect(buildDir, destDir, "")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	wantFiles := []string{
		"firmware.bin",
		"boot_app0.bin",
		"bootloader.bin",
		"partitions.bin",
		"partitions.csv",
		"LittleFS.bin",
	}
	if !reflect.DeepEqual(res.Files, wantFiles) {
		t.Errorf("Files = %v, want %v", res.Files, wantFiles)
	}
	if len(res.Notes) != 0 {
		t.Errorf("Notes = %v, want none", res.Notes)
	}
	if res.FilesystemImage != "LittleFS.bin" {
		t.Errorf("FilesystemImage = %q, want LittleFS.bin", res.FilesystemImage)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "firmware.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "firmware bytes" {
		t.Errorf("staged firmware.bin = %q, want original bytes", data)
	}
}

func TestCollect_FirmwareMissing(t *testing.T) {
	buildDir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(buildDir, "bootloader.bin"), "loader bytes")

	_, err := Collect(buildDir, t.TempDir(), "")
	if !errors.Is(err, ErrFirmwareMissing) {
		t.Errorf("Collect() error = %v, want ErrFirmwareMissing", err)
	}
}

func TestCollect_MinimalBuildOutput(t *testing.T) {
	buildDir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(buildDir, "firmware.bin"), "firmware bytes")

	res, err := Collect(buildDir, t.TempDir(), "")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !reflect.DeepEqual(res.Files, []string{"firmware.bin"}) {
		t.Errorf("Files = %v, want [firmware.bin]", res.Files)
	}
	if res.FilesystemImage != "" {
		t.Errorf("FilesystemImage = %q, want empty", res.FilesystemImage)
	}
}

func TestCollect_PartitionsSourceOverride(t *testing.T) {
	buildDir := t.TempDir()
	testutil.WriteTree(t, buildDir, map[string]string{
		"firmware.bin":   "firmware bytes",
		"partitions.csv": "# from build output\n",
	})
	source := filepath.Join(t.TempDir(), "custom.csv")
	testutil.WriteFile(t, source, "# from project config\n")
	destDir := t.TempDir()

	res, err := Collect(buildDir, destDir, source)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "partitions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# from project config\n" {
		t.Errorf("staged partitions.csv = %q, want the configured source", data)
	}

	count := 0
	for _, name := range res.Files {
		if name == "partitions.csv" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("partitions.csv listed %d times in Files, want once", count)
	}
	if len(res.Notes) != 1 {
		t.Errorf("Notes = %v, want one partitions source remark", res.Notes)
	}
}

func TestCollect_PartitionsSourceWithoutBuildCopy(t *testing.T) {
	buildDir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(buildDir, "firmware.bin"), "firmware bytes")
	source := filepath.Join(t.TempDir(), "custom.csv")
	testutil.WriteFile(t, source, "# from project config\n")

	res, err := Collect(buildDir, t.TempDir(), source)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !reflect.DeepEqual(res.Files, []string{"firmware.bin", "partitions.csv"}) {
		t.Errorf("Files = %v, want [firmware.bin partitions.csv]", res.Files)
	}
}

func TestCollect_FilesystemImagePreference(t *testing.T) {
	t.Run("spiffs image kept under its own name", func(t *testing.T) {
		buildDir := t.TempDir()
		testutil.WriteTree(t, buildDir, map[string]string{
			"firmware.bin": "firmware bytes",
			"spiffs.bin":   "spiffs bytes",
			"littlefs.bin": "littlefs bytes",
		})
		destDir := t.TempDir()

		res, err := Collect(buildDir, destDir, "")
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if !reflect.DeepEqual(res.Files, []string{"firmware.bin", "spiffs.bin"}) {
			t.Errorf("Files = %v, want the spiffs image only", res.Files)
		}
		if res.FilesystemImage != "spiffs.bin" {
			t.Errorf("FilesystemImage = %q, want spiffs.bin", res.FilesystemImage)
		}
	})

	t.Run("littlefs image renamed on staging", func(t *testing.T) {
		buildDir := t.TempDir()
		testutil.WriteTree(t, buildDir, map[string]string{
			"firmware.bin": "firmware bytes",
			"littlefs.bin": "littlefs bytes",
		})
		destDir := t.TempDir()

		res, err := Collect(buildDir, destDir, "")
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if !reflect.DeepEqual(res.Files, []string{"firmware.bin", "LittleFS.bin"}) {
			t.Errorf("Files = %v, want [firmware.bin LittleFS.bin]", res.Files)
		}
		if _, err := os.Stat(filepath.Join(destDir, "LittleFS.bin")); err != nil {
			t.Errorf("stat staged LittleFS.bin: %v", err)
		}
	})
}
