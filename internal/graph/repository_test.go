package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

func TestModuleOf(t *testing.T) {
	assert.Equal(t, "billing.invoices", ModuleOf("billing.invoices:InvoicesService.get"))
	assert.Equal(t, "", ModuleOf("InvoicesService.get"))
}

func TestBuild(t *testing.T) {
	get := ir.NewMethodRecord("users", "UsersService", "get", "sdk/users.py")
	get.Params = append(get.Params, ir.NewParam("id", true, "str"), ir.NewParam("expand", false, "bool"))
	list := ir.NewMethodRecord("users", "UsersService", "list", "sdk/users.py")
	pay := ir.NewMethodRecord("billing", "PaymentsService", "create", "sdk/billing.py")
	bare := ir.NewMethodRecord("", "LegacyService", "ping", "sdk/legacy.py")

	m := Build([]*ir.MethodRecord{list, get, pay, bare})

	assert.Equal(t, []string{"billing", "users"}, m.Modules)
	require.Len(t, m.Namespaces, 3)
	assert.Equal(t, NamespaceNode{Module: "", Name: "LegacyService"}, m.Namespaces[0])
	assert.Equal(t, NamespaceNode{Module: "users", Name: "UsersService"}, m.Namespaces[2])

	require.Len(t, m.Methods, 4)
	assert.Equal(t, "LegacyService.ping", m.Methods[0].ID)
	assert.Equal(t, "users:UsersService.get", m.Methods[2].ID)

	params := m.Methods[2].Params
	require.Len(t, params, 2)
	assert.Equal(t, ParamNode{
		Key: "users:UsersService.get#expand", Position: 1, Name: "expand", In: "query", Required: false, Type: "bool",
	}, params[1])
}
