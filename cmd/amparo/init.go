package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/tavila/amparo-agent/internal/defaults"
)

// runInit initializes an Amparo working directory: the data and themes
// directories, an example config, and the starter theme guides.
// Existing files are never overwritten.
func runInit(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Initializing Amparo workspace in %s\n", dir)

	for _, sub := range []string{"data", "themes"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Join(dir, sub), err)
		}
	}

	configPath := filepath.Join(dir, "amparo.yaml")
	if err := writeIfMissing(configPath, defaults.ConfigYAML); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", configPath)

	// The bundled themes live flat under themes/ in the embedded FS.
	entries, err := fs.ReadDir(defaults.ThemeFiles, "themes")
	if err != nil {
		return fmt.Errorf("list embedded themes: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}

		content, err := defaults.ThemeFiles.ReadFile(path.Join("themes", entry.Name()))
		if err != nil {
			return fmt.Errorf("read embedded theme %s: %w", entry.Name(), err)
		}

		destPath := filepath.Join(dir, "themes", entry.Name())
		if err := writeIfMissing(destPath, content); err != nil {
			return err
		}
		fmt.Fprintf(w, "  ✓ %s\n", destPath)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit amparo.yaml to point at your model backends, then run: amparo chat")
	return nil
}

// writeIfMissing skips paths that already exist, so init never clobbers
// user customizations.
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, content, 0o644)
}
