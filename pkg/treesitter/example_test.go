package treesitter_test

import (
	"context"
	"fmt"

	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
	_ "github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter/languages/python" // Register Python
)

// ExampleParser demonstrates parsing a Python snippet and walking the
// top-level declarations.
func ExampleParser() {
	parser, err := treesitter.NewParser("python")
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}
	defer parser.Close()

	source := []byte("class UsersService:\n    def list(self):\n        pass\n")
	tree, err := parser.Parse(context.Background(), source)
	if err != nil {
		fmt.Println("Parse error:", err)
		return
	}
	defer tree.Close()

	for _, node := range treesitter.NamedChildren(tree.Root()) {
		fmt.Println(node.Type(), tree.Text(node.ChildByFieldName("name")))
	}
	// Output: class_definition UsersService
}
