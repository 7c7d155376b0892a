package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/metrics"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/observability"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
)

// FileResult is the outcome of scanning one file: either its scan or the
// error that discarded it.
type FileResult struct {
	Path string
	Scan *plugins.FileScan
	Err  error
}

// OK reports whether the file contributed its records.
func (r FileResult) OK() bool { return r.Err == nil }

// Records returns the file's records, or nil when it failed.
func (r FileResult) Records() []*ir.MethodRecord {
	if r.Err != nil || r.Scan == nil {
		return nil
	}
	return r.Scan.Records
}

// Result is the aggregate of one run.
type Result struct {
	Root    string
	Records []*ir.MethodRecord
	Files   []FileResult
	Metrics *metrics.ScanMetrics
}

// Warnings returns the number of files that failed.
func (r *Result) Warnings() int {
	n := 0
	for _, f := range r.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}

// Scanner runs one source plugin over a tree.
type Scanner struct {
	plugin   plugins.SourcePlugin
	warnings io.Writer
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWarnings sets where per-file failure lines are written.
func WithWarnings(w io.Writer) Option {
	return func(s *Scanner) {
		if w != nil {
			s.warnings = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scanner. Warnings go to stderr unless overridden.
func New(plugin plugins.SourcePlugin, opts ...Option) *Scanner {
	s := &Scanner{
		plugin:   plugin,
		warnings: os.Stderr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans every discovered file sequentially. A failing file is reported
// as a warning line and contributes nothing; it never aborts the run.
//
// A missing or non-directory root returns an empty result together with an
// error wrapping ErrNotDirectory.
func (s *Scanner) Run(ctx context.Context, root string) (*Result, error) {
	ctx, span := observability.StartScanSpan(ctx, root, s.plugin.Language())
	defer span.End()

	res := &Result{
		Root:    root,
		Records: []*ir.MethodRecord{},
		Metrics: metrics.New(s.plugin.Language(), root),
	}

	files, err := Discover(root, s.plugin, s.logger)
	if err != nil {
		res.Metrics.Finish()
		if !errors.Is(err, ErrNotDirectory) {
			observability.RecordError(span, err)
		}
		return res, err
	}
	s.logger.Debug("discovered files", "root", root, "count", len(files))

	for _, path := range files {
		fr := s.ScanFile(ctx, root, path)
		res.Files = append(res.Files, fr)
		if !fr.OK() {
			fmt.Fprintf(s.warnings, "Warning: failed to parse %s: %v\n", path, fr.Err)
			res.Metrics.AddFailure(path, fr.Err)
			continue
		}
		res.Metrics.AddFile(fr.Scan)
		res.Records = append(res.Records, fr.Records()...)
	}

	res.Metrics.Finish()
	observability.RecordScanResult(span, len(files), len(res.Records), res.Warnings())
	s.logger.Debug("scan complete",
		"root", root,
		"files", len(files),
		"records", len(res.Records),
		"failed", res.Warnings())
	return res, nil
}

// ScanFile reads and scans one file inside its own failure boundary.
func (s *Scanner) ScanFile(ctx context.Context, root, path string) (fr FileResult) {
	fr.Path = path
	ctx, span := observability.StartFileSpan(ctx, path)
	defer func() {
		if r := recover(); r != nil {
			fr.Scan = nil
			fr.Err = fmt.Errorf("internal error: %v", r)
		}
		observability.RecordFileResult(span, len(fr.Records()), fr.Err)
		span.End()
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	scan, err := s.plugin.ScanFile(ctx, plugins.SourceFile{Root: root, Path: path, Content: content})
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Scan = scan
	return fr
}
