package python

import (
	"path/filepath"
	"strings"
)

// initStem is the package initializer file stem; it never contributes a segment.
const initStem = "__init__"

// RootModule is the module name used when a path yields no segments.
const RootModule = "root"

// ModuleName derives a dotted module name for path relative to root.
// Both '/' and '\' separate segments, so the result does not depend on the
// host's path convention. ext is stripped from the final segment when present.
func ModuleName(root, path, ext string) string {
	rel := relativePath(root, path)
	rel = strings.ReplaceAll(rel, `\`, "/")
	if ext != "" {
		rel = strings.TrimSuffix(rel, ext)
	}

	var parts []string
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == initStem {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return RootModule
	}
	return strings.Join(parts, ".")
}

func relativePath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	absRoot, err1 := filepath.Abs(root)
	absPath, err2 := filepath.Abs(path)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absRoot, absPath); err == nil {
			return rel
		}
	}
	return path
}
