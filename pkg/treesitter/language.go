package treesitter

import (
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// registry holds registered language grammars.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*sitter.Language)
)

// Register adds a language grammar to the global registry.
// Call this from init() in language-specific packages.
// Example:
//
//	func init() {
//	    treesitter.Register("python", python.GetLanguage())
//	}
func Register(name string, lang *sitter.Language) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = lang
}

// GetLanguage looks up a registered language by name.
func GetLanguage(name string) (*sitter.Language, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	lang, ok := registry[name]
	return lang, ok
}

// Languages returns all registered language names, sorted.
func Languages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
