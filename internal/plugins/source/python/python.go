// Package python extracts the public method surface of Python SDK sources.
package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
	tspython "github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter/languages/python"
)

const (
	DefaultExtension  = ".py"
	DefaultTestPrefix = "test_"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrInvalidEncoding is returned for files that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// Plugin implements plugins.SourcePlugin for Python.
type Plugin struct {
	extension  string
	testPrefix string
	moduleIDs  bool
	async      bool
	classifier *Classifier
	logger     *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithExtension sets the file suffix that selects source files.
func WithExtension(ext string) Option {
	return func(p *Plugin) {
		if ext != "" {
			p.extension = ext
		}
	}
}

// WithTestPrefix sets the base-name prefix of files that are skipped.
func WithTestPrefix(prefix string) Option {
	return func(p *Plugin) { p.testPrefix = prefix }
}

// WithModuleIDs controls whether record ids carry the "<module>:" prefix.
func WithModuleIDs(on bool) Option {
	return func(p *Plugin) { p.moduleIDs = on }
}

// WithAsync includes "async def" methods.
func WithAsync(on bool) Option {
	return func(p *Plugin) { p.async = on }
}

// WithClassifier replaces the API-class heuristics.
func WithClassifier(c *Classifier) Option {
	return func(p *Plugin) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithLogger sets the logger used for per-file debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Python plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		extension:  DefaultExtension,
		testPrefix: DefaultTestPrefix,
		moduleIDs:  true,
		classifier: DefaultClassifier(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Language() string { return tspython.Name }

func (p *Plugin) FileExtensions() []string { return []string{p.extension} }

func (p *Plugin) SkipFile(name string) bool {
	return p.testPrefix != "" && strings.HasPrefix(name, p.testPrefix)
}

// ScanFile parses one file and returns its records in source order.
func (p *Plugin) ScanFile(ctx context.Context, file plugins.SourceFile) (*plugins.FileScan, error) {
	src := file.Content
	if !utf8.Valid(src) {
		return nil, ErrInvalidEncoding
	}
	src = bytes.TrimPrefix(src, utf8BOM)

	parser, err := treesitter.NewParser(tspython.Name)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	tree, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if err := tree.Check(); err != nil {
		return nil, err
	}
	if err := validate(tree); err != nil {
		return nil, err
	}

	module := ""
	if p.moduleIDs {
		module = ModuleName(file.Root, file.Path, p.extension)
	}

	out := &plugins.FileScan{}
	ex := &extractor{
		src:        src,
		path:       file.Path,
		module:     module,
		classifier: p.classifier,
		async:      p.async,
		out:        out,
	}
	if err := ex.run(tree.Root()); err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	p.logger.Debug("scanned file",
		"path", file.Path,
		"classes", out.ClassesSeen,
		"accepted", out.ClassesAccepted,
		"wrappers", out.WrappersSkipped,
		"methods", len(out.Records))
	return out, nil
}
