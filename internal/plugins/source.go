package plugins

import (
	"context"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// SourceFile represents a single input file to be scanned.
type SourceFile struct {
	// Root is the scan root the file was discovered under.
	Root string
	// Path is the file path as discovered (root joined with the relative path).
	Path    string
	Content []byte
}

// FileScan is what a plugin extracted from one file.
type FileScan struct {
	Records []*ir.MethodRecord

	ClassesSeen     int
	WrappersSkipped int
	ClassesAccepted int
}

// SourcePlugin turns source files of one language into method records.
type SourcePlugin interface {
	// Language returns the source language identifier (e.g. "python").
	Language() string
	// FileExtensions lists the filename suffixes the plugin scans (e.g. ".py").
	FileExtensions() []string
	// SkipFile reports whether a file with a matching extension should still
	// be ignored, based on its base name (test files).
	SkipFile(name string) bool
	// ScanFile parses one file and extracts its records. Any error discards
	// the whole file.
	ScanFile(ctx context.Context, file SourceFile) (*FileScan, error)
}
