package python

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
)

const (
	selfParam     = "self"
	privatePrefix = "_"
)

// modeAccessors switch a resource into raw or streaming response mode.
var modeAccessors = map[string]bool{
	"with_raw_response":       true,
	"with_streaming_response": true,
}

var errDefaultOrder = errors.New("non-default argument follows default argument")

// extractor walks one parsed file.
type extractor struct {
	src        []byte
	path       string
	module     string
	classifier *Classifier
	async      bool
	out        *plugins.FileScan
}

// run visits top-level class declarations in source order.
func (e *extractor) run(root *sitter.Node) error {
	for _, stmt := range treesitter.NamedChildren(root) {
		class := unwrapDecorated(stmt, "class_definition")
		if class == nil {
			continue
		}
		if err := e.class(class); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractor) class(node *sitter.Node) error {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	e.out.ClassesSeen++

	info := ClassInfo{
		Name:  nameNode.Content(e.src),
		Path:  e.path,
		Bases: e.bases(node.ChildByFieldName("superclasses")),
	}
	switch e.classifier.Classify(info) {
	case SkipWrapper:
		e.out.WrappersSkipped++
		return nil
	case Reject:
		return nil
	}
	e.out.ClassesAccepted++

	body := node.ChildByFieldName("body")
	for _, stmt := range treesitter.NamedChildren(body) {
		fn := unwrapDecorated(stmt, "function_definition")
		if fn == nil {
			continue
		}
		rec, err := e.method(info.Name, fn)
		if err != nil {
			return err
		}
		if rec != nil {
			e.out.Records = append(e.out.Records, rec)
		}
	}
	return nil
}

// bases renders positional base-class expressions; keyword arguments such as
// metaclass=... are not bases.
func (e *extractor) bases(args *sitter.Node) []string {
	var out []string
	for _, arg := range treesitter.NamedChildren(args) {
		switch arg.Type() {
		case "keyword_argument", "comment":
			continue
		}
		if text := RenderAnnotation(arg, e.src); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// method returns nil for declarations that are not recorded.
func (e *extractor) method(namespace string, fn *sitter.Node) (*ir.MethodRecord, error) {
	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := nameNode.Content(e.src)
	if strings.HasPrefix(name, privatePrefix) || modeAccessors[name] {
		return nil, nil
	}
	if isAsync(fn) && !e.async {
		return nil, nil
	}

	params, err := e.params(fn.ChildByFieldName("parameters"))
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", namespace, name, err)
	}

	rec := ir.NewMethodRecord(e.module, namespace, name, e.path)
	rec.Params = params
	return rec, nil
}

type formal struct {
	name       string
	annotation *sitter.Node
	hasDefault bool
}

// params builds positional parameters first, then keyword-only ones, each in
// declaration order. Variadic *args and **kwargs are not recorded.
func (e *extractor) params(node *sitter.Node) ([]*ir.ParamRecord, error) {
	var positional, kwonly []formal
	keywordOnly := false

	add := func(f formal) {
		if keywordOnly {
			kwonly = append(kwonly, f)
		} else {
			positional = append(positional, f)
		}
	}

	for _, p := range treesitter.NamedChildren(node) {
		switch p.Type() {
		case "identifier":
			add(formal{name: p.Content(e.src)})
		case "typed_parameter":
			target := firstNamed(p)
			if target == nil {
				continue
			}
			switch target.Type() {
			case "list_splat_pattern":
				keywordOnly = true
			case "dictionary_splat_pattern":
			default:
				add(formal{name: target.Content(e.src), annotation: p.ChildByFieldName("type")})
			}
		case "default_parameter":
			add(formal{name: e.paramName(p), hasDefault: true})
		case "typed_default_parameter":
			add(formal{name: e.paramName(p), annotation: p.ChildByFieldName("type"), hasDefault: true})
		case "list_splat_pattern", "keyword_separator":
			keywordOnly = true
		}
	}

	defaults := 0
	for _, f := range positional {
		if f.hasDefault {
			defaults++
		} else if defaults > 0 {
			return nil, errDefaultOrder
		}
	}

	var explicit []formal
	for _, f := range positional {
		if f.name != selfParam {
			explicit = append(explicit, f)
		}
	}
	cutoff := len(explicit) - defaults

	out := make([]*ir.ParamRecord, 0, len(explicit)+len(kwonly))
	for i, f := range explicit {
		out = append(out, ir.NewParam(f.name, i < cutoff, RenderAnnotation(f.annotation, e.src)))
	}
	for _, f := range kwonly {
		out = append(out, ir.NewParam(f.name, !f.hasDefault, RenderAnnotation(f.annotation, e.src)))
	}
	return out, nil
}

func (e *extractor) paramName(p *sitter.Node) string {
	if n := p.ChildByFieldName("name"); n != nil {
		return n.Content(e.src)
	}
	if n := firstNamed(p); n != nil {
		return n.Content(e.src)
	}
	return ""
}

// unwrapDecorated returns node itself when it has the wanted type, or the
// definition inside a decorated_definition of that type.
func unwrapDecorated(node *sitter.Node, want string) *sitter.Node {
	switch node.Type() {
	case want:
		return node
	case "decorated_definition":
		def := node.ChildByFieldName("definition")
		if def != nil && def.Type() == want {
			return def
		}
	}
	return nil
}

func isAsync(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		c := fn.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == "async" {
			return true
		}
		if c.Type() == "def" {
			return false
		}
	}
	return false
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for _, c := range treesitter.NamedChildren(n) {
		if c.Type() != "comment" {
			return c
		}
	}
	return nil
}
