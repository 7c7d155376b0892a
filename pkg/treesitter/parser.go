package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser wraps a tree-sitter parser for a given language.
type Parser struct {
	parser   *sitter.Parser
	language string
}

// Tree is a parsed syntax tree together with the source it was built from.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// SyntaxError reports the first ERROR or MISSING node found in a tree, or a
// construct a language check rejected. Lines and columns are 1-based.
type SyntaxError struct {
	Line    int
	Column  int
	Missing bool
	Near    string
	// Msg replaces the generic description when set.
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Line, e.Column)
	}
	if e.Missing {
		return fmt.Sprintf("invalid syntax: missing %q at line %d, column %d", e.Near, e.Line, e.Column)
	}
	if e.Near != "" {
		return fmt.Sprintf("invalid syntax near %q at line %d, column %d", e.Near, e.Line, e.Column)
	}
	return fmt.Sprintf("invalid syntax at line %d, column %d", e.Line, e.Column)
}

// NewParser creates a tree-sitter parser for the given language.
// The language must be registered via Register() before calling this.
func NewParser(language string) (*Parser, error) {
	lang, ok := GetLanguage(language)
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s (not registered)", language)
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Parser{parser: p, language: language}, nil
}

// Language returns the parser's language name.
func (p *Parser) Language() string { return p.language }

// Parse parses source code into a Tree. The tree-sitter grammar is error
// tolerant, so a successful parse may still contain ERROR nodes; use Check
// to turn those into a SyntaxError.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	return &Tree{tree: tree, source: source}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Root returns the root node of the tree.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// Text returns the source text spanned by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.source)
}

// Check returns a *SyntaxError describing the first ERROR or MISSING node in
// document order, or nil when the tree is clean.
func (t *Tree) Check() error {
	root := t.Root()
	if !root.HasError() {
		return nil
	}
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pt := bad.StartPoint()
	serr := &SyntaxError{
		Line:    int(pt.Row) + 1,
		Column:  int(pt.Column) + 1,
		Missing: bad.IsMissing(),
	}
	if serr.Missing {
		serr.Near = bad.Type()
	} else {
		serr.Near = truncate(t.Text(bad), 20)
	}
	return serr
}

// ErrorAt builds a SyntaxError positioned at n.
func (t *Tree) ErrorAt(n *sitter.Node, msg string) *SyntaxError {
	pt := n.StartPoint()
	return &SyntaxError{
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
		Near:   truncate(t.Text(n), 20),
		Msg:    msg,
	}
}

// Close releases the tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// NamedChildren returns the named children of n in source order.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, max int) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			s = s[:i]
			break
		}
	}
	if len(s) > max {
		return s[:max]
	}
	return s
}
