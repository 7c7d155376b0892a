package python

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
)

// RenderAnnotation converts an annotation expression into single-line text.
//
// Names, dotted attributes, subscripts and literal constants have a fixed
// rendering. Everything else goes through a best-effort textual fallback whose
// exact shape is not guaranteed. A nil node, or anything that cannot be
// rendered, yields "unknown".
func RenderAnnotation(node *sitter.Node, source []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ir.UnknownType
		}
	}()
	if node == nil {
		return ir.UnknownType
	}
	text = render(node, source)
	if text == "" {
		return ir.UnknownType
	}
	return text
}

func render(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "type", "parenthesized_expression":
		// A type wrapper or redundant parentheses around one expression.
		inner := exprChildren(n)
		if len(inner) != 1 {
			return unparse(n, src)
		}
		return render(inner[0], src)

	case "identifier":
		return n.Content(src)

	case "attribute":
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return unparse(n, src)
		}
		return render(obj, src) + "." + attr.Content(src)

	case "member_type":
		parts := exprChildren(n)
		if len(parts) != 2 {
			return unparse(n, src)
		}
		return render(parts[0], src) + "." + parts[1].Content(src)

	case "subscript":
		parts := exprChildren(n)
		if len(parts) < 2 {
			return unparse(n, src)
		}
		return render(parts[0], src) + "[" + renderList(parts[1:], src) + "]"

	case "generic_type":
		parts := exprChildren(n)
		if len(parts) != 2 || parts[1].Type() != "type_parameter" {
			return unparse(n, src)
		}
		return render(parts[0], src) + "[" + renderList(exprChildren(parts[1]), src) + "]"

	case "string", "concatenated_string", "integer", "float", "true", "false", "none", "ellipsis":
		if lit, ok := literal(n, src); ok {
			return lit
		}
		return unparse(n, src)
	}
	return unparse(n, src)
}

// unparse is the generic fallback. Common composite shapes are rebuilt from
// their rendered parts; anything else is the node's source text collapsed
// onto one line.
func unparse(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "union_type":
		parts := exprChildren(n)
		if len(parts) == 2 {
			return render(parts[0], src) + " | " + render(parts[1], src)
		}
	case "binary_operator":
		left := n.ChildByFieldName("left")
		op := n.ChildByFieldName("operator")
		right := n.ChildByFieldName("right")
		if left != nil && op != nil && right != nil {
			return render(left, src) + " " + op.Content(src) + " " + render(right, src)
		}
	case "list":
		return "[" + renderList(exprChildren(n), src) + "]"
	case "tuple":
		items := exprChildren(n)
		if len(items) == 1 {
			return "(" + render(items[0], src) + ",)"
		}
		return "(" + renderList(items, src) + ")"
	case "list_splat", "splat_type":
		if inner := exprChildren(n); len(inner) == 1 {
			prefix := "*"
			if strings.HasPrefix(n.Content(src), "**") {
				prefix = "**"
			}
			return prefix + render(inner[0], src)
		}
	}
	return collapse(n.Content(src))
}

func renderList(nodes []*sitter.Node, src []byte) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, render(n, src))
	}
	return strings.Join(parts, ", ")
}

// literal renders a constant the way its value prints: strings without
// quotes, integers in decimal, and the keyword constants by name.
func literal(n *sitter.Node, src []byte) (string, bool) {
	text := n.Content(src)
	switch n.Type() {
	case "true":
		return "True", true
	case "false":
		return "False", true
	case "none":
		return "None", true
	case "ellipsis":
		return "Ellipsis", true
	case "float":
		return text, true
	case "integer":
		clean := strings.ReplaceAll(text, "_", "")
		if strings.HasSuffix(clean, "j") || strings.HasSuffix(clean, "J") {
			return text, true
		}
		if len(clean) > 1 && clean[0] == '0' && clean[1] >= '0' && clean[1] <= '9' {
			// Only literal zeros like "00" are legal here.
			return "0", true
		}
		if v, ok := new(big.Int).SetString(clean, 0); ok {
			return v.String(), true
		}
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			return strconv.FormatFloat(v, 'g', -1, 64), true
		}
		return text, true
	case "string":
		return stringValue(text)
	case "concatenated_string":
		var b strings.Builder
		for _, part := range treesitter.NamedChildren(n) {
			if part.Type() != "string" {
				continue
			}
			v, ok := stringValue(part.Content(src))
			if !ok {
				return "", false
			}
			b.WriteString(v)
		}
		return b.String(), true
	}
	return "", false
}

// stringValue strips the prefix and quotes of a string literal. Byte strings
// keep their literal form, and f-strings are not constants.
func stringValue(text string) (string, bool) {
	i := strings.IndexAny(text, `'"`)
	if i < 0 {
		return "", false
	}
	prefix := strings.ToLower(text[:i])
	if strings.Contains(prefix, "f") {
		return "", false
	}
	if strings.Contains(prefix, "b") {
		return text, true
	}
	body := text[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			inner := body[len(q) : len(body)-len(q)]
			if strings.Contains(prefix, "r") {
				return inner, true
			}
			return unescape(inner), true
		}
	}
	return "", false
}

// unescape resolves the escape sequences of a non-raw string body. Unknown
// escapes and \N{...} keep their backslash.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch next {
		case '\n':
			i++
		case '\r':
			i++
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\\', '\'', '"':
			b.WriteByte(next)
			i++
		case 'a', 'b', 'f', 'n', 'r', 't', 'v':
			b.WriteByte(simpleEscapes[next])
			i++
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case 'x', 'u', 'U':
			width := 2
			if next == 'u' {
				width = 4
			} else if next == 'U' {
				width = 8
			}
			end := i + 2 + width
			if end > len(s) {
				b.WriteByte(c)
				continue
			}
			v, err := strconv.ParseUint(s[i+2:end], 16, 32)
			if err != nil || v > utf8.MaxRune {
				b.WriteByte(c)
				continue
			}
			b.WriteRune(rune(v))
			i = end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var simpleEscapes = map[byte]byte{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

// exprChildren returns named children other than comments.
func exprChildren(n *sitter.Node) []*sitter.Node {
	all := treesitter.NamedChildren(n)
	out := all[:0]
	for _, c := range all {
		if c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

func collapse(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := strings.NewReplacer("[ ", "[", " ]", "]", "( ", "(", " )", ")", " ,", ",")
	return r.Replace(s)
}
