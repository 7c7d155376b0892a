package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodID(t *testing.T) {
	tests := []struct {
		module, namespace, method string
		want                      string
	}{
		{"billing.invoices", "InvoicesService", "create", "billing.invoices:InvoicesService.create"},
		{"root", "Api", "ping", "root:Api.ping"},
		{"", "UsersApi", "list", "UsersApi.list"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MethodID(tt.module, tt.namespace, tt.method))
	}
}

func TestNewMethodRecord(t *testing.T) {
	rec := NewMethodRecord("users", "UsersApi", "get", "sdk/users.py")
	assert.Equal(t, "users:UsersApi.get", rec.ID)
	assert.Equal(t, VisibilityPublic, rec.Visibility)
	assert.NotNil(t, rec.Params)
	assert.Empty(t, rec.Params)
}

func TestNewParamDefaultsUnknownType(t *testing.T) {
	p := NewParam("limit", false, "")
	assert.Equal(t, UnknownType, p.Type.Name)
	assert.Equal(t, ParamQuery, p.In)
}

func TestMethodRecordJSONShape(t *testing.T) {
	rec := NewMethodRecord("users", "UsersApi", "get", "sdk/users.py")
	rec.Params = append(rec.Params, NewParam("user_id", true, "str"))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "users:UsersApi.get",
		"namespace": "UsersApi",
		"methodName": "get",
		"params": [{"name": "user_id", "in": "query", "required": true, "type": {"name": "str"}}],
		"visibility": "public",
		"sourceFile": "sdk/users.py"
	}`, string(data))
}

func TestEmptyParamsSerializeAsArray(t *testing.T) {
	data, err := json.Marshal(NewMethodRecord("m", "Api", "ping", "m.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"params":[]`)
}

func TestParamLookupAndRequiredCount(t *testing.T) {
	rec := NewMethodRecord("m", "Api", "call", "m.py")
	rec.Params = []*ParamRecord{
		NewParam("a", true, "int"),
		NewParam("b", false, "int"),
		NewParam("c", true, "str"),
	}
	assert.Equal(t, 2, rec.RequiredCount())
	require.NotNil(t, rec.Param("b"))
	assert.False(t, rec.Param("b").Required)
	assert.Nil(t, rec.Param("missing"))
}

func TestIndexLastWriteWins(t *testing.T) {
	first := NewMethodRecord("", "Api", "ping", "a.py")
	second := NewMethodRecord("", "Api", "ping", "b.py")
	idx := Index([]*MethodRecord{first, second})
	require.Len(t, idx, 1)
	assert.Equal(t, "b.py", idx["Api.ping"].SourceFile)
}
