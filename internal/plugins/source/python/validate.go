package python

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
)

// validate rejects constructs the grammar accepts but Python 3 does not.
// It returns a *treesitter.SyntaxError for the first one in document order.
func validate(tree *treesitter.Tree) error {
	if bad := firstInvalid(tree.Root()); bad != nil {
		return tree.ErrorAt(bad.node, bad.msg)
	}
	return nil
}

type invalid struct {
	node *sitter.Node
	msg  string
}

func firstInvalid(n *sitter.Node) *invalid {
	switch n.Type() {
	case "print_statement":
		// "print >>f, x" is also a valid shift-and-tuple expression.
		if first := n.NamedChild(0); first == nil || first.Type() != "chevron" {
			return &invalid{n, "missing parentheses in call to 'print'"}
		}
	case "exec_statement":
		return &invalid{n, "missing parentheses in call to 'exec'"}
	case "argument_list":
		if bad := checkArguments(n); bad != nil {
			return bad
		}
	case "delete_statement":
		for _, target := range exprChildren(n) {
			if bad := checkDeleteTarget(target); bad != nil {
				return bad
			}
		}
	}
	for _, c := range treesitter.NamedChildren(n) {
		if bad := firstInvalid(c); bad != nil {
			return bad
		}
	}
	return nil
}

// checkArguments enforces call argument order: no positional argument after
// a keyword argument or **mapping, and no *iterable after **mapping.
func checkArguments(n *sitter.Node) *invalid {
	var keyword, mapping bool
	for _, arg := range exprChildren(n) {
		switch arg.Type() {
		case "keyword_argument":
			keyword = true
		case "dictionary_splat":
			mapping = true
		case "list_splat", "parenthesized_list_splat":
			if mapping {
				return &invalid{arg, "iterable argument unpacking follows keyword argument unpacking"}
			}
		default:
			if mapping {
				return &invalid{arg, "positional argument follows keyword argument unpacking"}
			}
			if keyword {
				return &invalid{arg, "positional argument follows keyword argument"}
			}
		}
	}
	return nil
}

func checkDeleteTarget(n *sitter.Node) *invalid {
	switch n.Type() {
	case "identifier", "attribute", "subscript":
		return nil
	case "expression_list", "tuple", "list", "parenthesized_expression":
		for _, c := range exprChildren(n) {
			if bad := checkDeleteTarget(c); bad != nil {
				return bad
			}
		}
		return nil
	case "call":
		return &invalid{n, "cannot delete function call"}
	default:
		return &invalid{n, "cannot delete expression"}
	}
}
