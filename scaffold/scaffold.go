// Package scaffold provides embedded starter files for new projects.
//
// Templates are embedded at build time so the masonry binary can
// bootstrap a working preset layout without network access or a
// separate template installation.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed all:templates
var templates embed.FS

// File is one scaffold template resolved to its destination name.
type File struct {
	// Name is the path relative to the project root.
	Name string
	// Data is the template content.
	Data []byte
}

// Files returns all embedded templates in stable order.
func Files() ([]File, error) {
	entries, err := templates.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := templates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded template %s: %w", entry.Name(), err)
		}
		files = append(files, File{Name: entry.Name(), Data: data})
	}

	return files, nil
}

// Write materializes the templates under rootDir. Existing files are
// skipped unless force is set. Returns the names written and skipped.
func Write(rootDir string, force bool) (written, skipped []string, err error) {
	files, err := Files()
	if err != nil {
		return nil, nil, err
	}

	for _, f := range files {
		dest := filepath.Join(rootDir, f.Name)

		if !force {
			if _, statErr := os.Stat(dest); statErr == nil {
				skipped = append(skipped, f.Name)
				continue
			}
		}

		if err := os.WriteFile(dest, f.Data, 0o644); err != nil {
			return written, skipped, fmt.Errorf("write %s: %w", f.Name, err)
		}
		written = append(written, f.Name)
	}

	return written, skipped, nil
}
