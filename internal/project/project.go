// Package project manages the published projects/<name> directory and
// its website metadata files.
package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Meta is the project.json payload describing a published project to
// the flasher website. Field order mirrors the file as deployed
// installations expect it.
type Meta struct {
	Name          string `json:"name"`
	LongNameNL    string `json:"long_name_nl"`
	LongNameEN    string `json:"long_name_en"`
	DescriptionEN string `json:"description_en"`
	DescriptionNL string `json:"description_nl"`
	Image         string `json:"image"`
}

// Dir is the output directory for one published project.
type Dir struct {
	path string
	name string
}

// Prepare creates a fresh projects/<name> directory under projectsRoot,
// removing any previous output for the same name first. The bool
// reports whether a previous tree was removed.
func Prepare(projectsRoot, name string) (*Dir, bool, error) {
	path := filepath.Join(projectsRoot, name)

	removed := false
	if _, err := os.Stat(path); err == nil {
		if err := os.RemoveAll(path); err != nil {
			return nil, false, fmt.Errorf("remove previous project directory: %w", err)
		}
		removed = true
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, false, fmt.Errorf("create project directory: %w", err)
	}
	return &Dir{path: path, name: name}, removed, nil
}

// Path returns the project directory.
func (d *Dir) Path() string { return d.path }

// Name returns the project name.
func (d *Dir) Name() string { return d.name }

// EnsureMetadata creates whichever website metadata files are missing:
// project.json, the English and Dutch description stubs, and the
// project image. templateImage, when set, seeds project.png; without
// one an empty placeholder is created.
func (d *Dir) EnsureMetadata(templateImage string) error {
	metaPath := filepath.Join(d.path, "project.json")
	if !fileExists(metaPath) {
		meta := Meta{
			Name:          d.name,
			LongNameNL:    d.name,
			LongNameEN:    d.name,
			DescriptionEN: "Firmware project for " + d.name,
			DescriptionNL: "Firmware project voor " + d.name,
			Image:         "project.png",
		}
		if err := writeJSON(metaPath, meta); err != nil {
			return err
		}
	}

	stubs := map[string]string{
		"project_en.md": "# " + d.name + "\n\nEnglish project description.\n",
		"project_nl.md": "# " + d.name + "\n\nNederlandse projectbeschrijving.\n",
	}
	for name, content := range stubs {
		path := filepath.Join(d.path, name)
		if fileExists(path) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	imagePath := filepath.Join(d.path, "project.png")
	if !fileExists(imagePath) {
		if templateImage != "" && fileExists(templateImage) {
			if err := copyFile(templateImage, imagePath); err != nil {
				return fmt.Errorf("copy project image: %w", err)
			}
		} else if err := os.WriteFile(imagePath, nil, 0o644); err != nil {
			return fmt.Errorf("create project image placeholder: %w", err)
		}
	}

	return nil
}

// FindTemplateImage looks for a PNG in the project root to seed the
// published project image: a file named project.png wins, else the
// first PNG in name order.
func FindTemplateImage(projectRoot string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(projectRoot, "*.png"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)

	for _, match := range matches {
		if strings.EqualFold(filepath.Base(match), "project.png") {
			return match, true
		}
	}
	return matches[0], true
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
