// Package scan walks a source tree and aggregates the records a source plugin
// extracts from each file.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
)

// ErrNotDirectory is returned when the scan root is missing or not a directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

// Discover returns every file under root that the plugin wants, in walk
// order. Entries that cannot be read during the walk are skipped.
func Discover(root string, plugin plugins.SourcePlugin, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	exts := plugin.FileExtensions()
	var files []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !hasExtension(name, exts) || plugin.SkipFile(name) {
			return nil
		}
		if !isRegular(p, d) {
			return nil
		}
		files = append(files, underRoot(root, p))
		return nil
	})
	return files, walkErr
}

// underRoot re-joins a walked path onto root exactly as given. WalkDir cleans
// child paths, which drops a leading "./" that path heuristics may rely on.
func underRoot(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return p
	}
	if strings.HasSuffix(root, string(filepath.Separator)) || strings.HasSuffix(root, "/") {
		return root + rel
	}
	return root + string(filepath.Separator) + rel
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
