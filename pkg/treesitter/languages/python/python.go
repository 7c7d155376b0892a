// Package python registers the tree-sitter Python grammar under the name "python".
package python

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/dharmarajatulya1-hub/sdkdrift/pkg/treesitter"
)

// Name is the registry key for the Python grammar.
const Name = "python"

func init() {
	treesitter.Register(Name, python.GetLanguage())
}
