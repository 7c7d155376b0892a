// Package typeexpr parses rendered Python annotation text so that two
// spellings of the same type can be compared structurally.
package typeexpr

import (
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// Union is the top-level expression: one or more alternatives joined by "|".
type Union struct {
	Members []*Term `parser:"@@ ( '|' @@ )*"`
}

// Term is a single alternative.
type Term struct {
	List     *List   `parser:"  @@"`
	Group    *Union  `parser:"| '(' @@ ')'"`
	String   *string `parser:"| @String"`
	Number   *string `parser:"| @Number"`
	Ellipsis bool    `parser:"| @Ellipsis"`
	Named    *Named  `parser:"| @@"`
}

// List is a bracketed argument list such as the parameters of Callable.
type List struct {
	Items []*Union `parser:"'[' ( @@ ( ',' @@ )* ','? )? ']'"`
}

// Named is a dotted name with optional subscript arguments.
type Named struct {
	Parts []string `parser:"@Ident ( '.' @Ident )*"`
	Args  *List    `parser:"@@?"`
}

var parser = participle.MustBuild[Union](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\"|[^"])*"|'(\\'|[^'])*'`},
		{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
		{Name: "Ellipsis", Pattern: `\.\.\.`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[\[\](),|.]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses annotation text.
func Parse(text string) (*Union, error) {
	return parser.ParseString("", text)
}

// modulePrefixes are dropped from dotted names.
var modulePrefixes = []string{"typing.", "typing_extensions.", "collections.abc.", "builtins."}

// aliases maps the capitalized typing generics onto their builtin names.
var aliases = map[string]string{
	"List":      "list",
	"Dict":      "dict",
	"Set":       "set",
	"FrozenSet": "frozenset",
	"Tuple":     "tuple",
	"Type":      "type",
	"NoneType":  "None",
}

// Normalize returns the canonical spelling of text. Text that does not parse
// is returned with whitespace collapsed.
func Normalize(text string) string {
	u, err := Parse(text)
	if err != nil {
		return strings.Join(strings.Fields(text), " ")
	}
	return canonUnion(u)
}

// Equivalent reports whether two annotation texts name the same type.
// Unknown on either side is never a difference.
func Equivalent(a, b string) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return true
	}
	return Normalize(a) == Normalize(b)
}

// IsUnknown reports whether text carries no type information.
func IsUnknown(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == ir.UnknownType
}

func canonUnion(u *Union) string {
	var members []string
	for _, t := range u.Members {
		members = append(members, flatten(t)...)
	}
	return joinMembers(members)
}

func joinMembers(members []string) string {
	seen := make(map[string]bool, len(members))
	uniq := members[:0]
	for _, m := range members {
		if !seen[m] {
			seen[m] = true
			uniq = append(uniq, m)
		}
	}
	if len(uniq) == 1 {
		return uniq[0]
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " | ")
}

// flatten expands Union and Optional into their members.
func flatten(t *Term) []string {
	switch {
	case t.Group != nil:
		var out []string
		for _, m := range t.Group.Members {
			out = append(out, flatten(m)...)
		}
		return out
	case t.Named != nil:
		name := canonName(t.Named.Parts)
		if t.Named.Args != nil {
			switch name {
			case "Union":
				var out []string
				for _, item := range t.Named.Args.Items {
					for _, m := range item.Members {
						out = append(out, flatten(m)...)
					}
				}
				return out
			case "Optional":
				if len(t.Named.Args.Items) == 1 {
					var out []string
					for _, m := range t.Named.Args.Items[0].Members {
						out = append(out, flatten(m)...)
					}
					return append(out, "None")
				}
			}
		}
	}
	return []string{canonTerm(t)}
}

func canonTerm(t *Term) string {
	switch {
	case t.List != nil:
		return "[" + canonItems(t.List.Items) + "]"
	case t.Group != nil:
		return canonUnion(t.Group)
	case t.String != nil:
		return strings.Trim(*t.String, `"'`)
	case t.Number != nil:
		return *t.Number
	case t.Ellipsis:
		return "..."
	case t.Named != nil:
		name := canonName(t.Named.Parts)
		if t.Named.Args == nil {
			return name
		}
		return name + "[" + canonItems(t.Named.Args.Items) + "]"
	}
	return ""
}

func canonItems(items []*Union) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, canonUnion(it))
	}
	return strings.Join(parts, ", ")
}

func canonName(parts []string) string {
	name := strings.Join(parts, ".")
	for _, p := range modulePrefixes {
		if strings.HasPrefix(name, p) {
			name = strings.TrimPrefix(name, p)
			break
		}
	}
	if alias, ok := aliases[name]; ok {
		return alias
	}
	if name == "Ellipsis" {
		return "..."
	}
	return name
}
