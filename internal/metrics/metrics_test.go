package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
)

func TestScanMetrics(t *testing.T) {
	m := New("python", "/sdk")

	rec := ir.NewMethodRecord("users", "UsersService", "get", "/sdk/users.py")
	rec.Params = append(rec.Params, ir.NewParam("id", true, "str"))
	m.AddFile(&plugins.FileScan{
		Records:         []*ir.MethodRecord{rec},
		ClassesSeen:     3,
		WrappersSkipped: 1,
		ClassesAccepted: 1,
	})
	m.AddFailure("/sdk/broken.py", errors.New("invalid syntax"))
	m.Finish()

	assert.Equal(t, 2, m.FilesDiscovered)
	assert.Equal(t, 1, m.FilesScanned)
	assert.Equal(t, 1, m.FilesFailed)
	assert.Equal(t, 3, m.ClassesSeen)
	assert.Equal(t, 1, m.WrappersSkipped)
	assert.Equal(t, 1, m.Methods)
	assert.Equal(t, 1, m.Params)
	assert.False(t, m.FinishedAt.IsZero())

	var buf bytes.Buffer
	m.PrintSummary(&buf)
	out := buf.String()
	assert.Contains(t, out, "SDK SURFACE SCAN")
	assert.Contains(t, out, "Methods:     1")
	assert.Contains(t, out, "/sdk/broken.py: invalid syntax")

	data, err := m.JSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1), decoded["files_failed"])
}
