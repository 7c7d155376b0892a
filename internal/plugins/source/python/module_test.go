package python

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleName(t *testing.T) {
	root := filepath.Join("work", "sdk")

	tests := []struct {
		rel  string
		want string
	}{
		{filepath.Join("billing", "invoices", "__init__.py"), "billing.invoices"},
		{"root_module.py", "root_module"},
		{"__init__.py", RootModule},
		{filepath.Join("a", "b", "c.py"), "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleName(root, filepath.Join(root, tt.rel), ".py"))
		})
	}
}

func TestModuleNameBackslashes(t *testing.T) {
	assert.Equal(t, "pkg.mod", ModuleName("", `pkg\mod.py`, ".py"))
}
