package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersV1 = `class UsersService:
    def get(self, user_id: str, expand: bool = False):
        pass

    def delete(self, user_id: str):
        pass
`

const usersV2 = `class UsersService:
    def get(self, user_id: str, expand: bool = False, fields: list = None):
        pass
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SDKDRIFT_SNAPSHOT_DIR", filepath.Join(dir, "snapshots"))
	t.Setenv("SDKDRIFT_LOG_LEVEL", "error")
	t.Setenv("SDKDRIFT_TRACING_OTLP_ENDPOINT", "")
	return dir
}

func sdkTree(t *testing.T, source string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "users.py"), []byte(source), 0o644))
	return root
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func scanTo(t *testing.T, source string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "manifest.json")
	code, _, stderr := execute("scan", sdkTree(t, source), "--output", out)
	require.Equal(t, 0, code, stderr)
	return out
}

func TestScanPrintsManifest(t *testing.T) {
	setupEnv(t)
	code, stdout, stderr := execute("scan", sdkTree(t, usersV1))
	require.Equal(t, 0, code, stderr)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "users:UsersService.delete", records[1]["id"])
}

func TestScanSummary(t *testing.T) {
	setupEnv(t)
	code, _, stderr := execute("scan", sdkTree(t, usersV1), "--summary")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "SDK SURFACE SCAN")
}

func TestScanGraphWithoutURIWarns(t *testing.T) {
	setupEnv(t)
	t.Setenv("SDKDRIFT_GRAPH_URI", "")
	code, stdout, stderr := execute("scan", sdkTree(t, usersV1), "--graph")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "["), stdout)
	assert.Contains(t, stderr, "Warning: graph export failed: ")
}

func TestScanUnknownLanguage(t *testing.T) {
	setupEnv(t)
	code, _, stderr := execute("scan", sdkTree(t, usersV1), "--language", "cobol")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
}

func TestDiffIdenticalPasses(t *testing.T) {
	setupEnv(t)
	a := scanTo(t, usersV1)
	b := scanTo(t, usersV1)

	code, stdout, _ := execute("diff", a, b, "--format", "json")
	require.Equal(t, 0, code)

	var rep struct {
		Diff struct {
			Findings []any   `json:"findings"`
			Score    float64 `json:"score"`
		} `json:"diff"`
		Gates struct {
			Status string `json:"status"`
		} `json:"gates"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Empty(t, rep.Diff.Findings)
	assert.Equal(t, 100.0, rep.Diff.Score)
	assert.Equal(t, "passed", rep.Gates.Status)
}

func TestDiffRemovedMethodFailsGate(t *testing.T) {
	setupEnv(t)
	oldPath := scanTo(t, usersV1)
	newPath := scanTo(t, usersV2)

	code, stdout, stderr := execute("diff", oldPath, newPath, "--format", "json")
	assert.Equal(t, exitGateFailed, code)
	assert.Contains(t, stdout, `"removed_method"`)
	assert.Contains(t, stdout, `"added_param"`)
	assert.Contains(t, stderr, "drift gates failed")
}

func TestDiffGatesDisabled(t *testing.T) {
	setupEnv(t)
	oldPath := scanTo(t, usersV1)
	newPath := scanTo(t, usersV2)

	code, _, _ := execute("diff", oldPath, newPath, "--max-removed", "-1", "--max-breaking", "-1", "--no-color")
	assert.Equal(t, 0, code)

	t.Setenv("SDKDRIFT_GATES_MAX_REMOVED", "-1")
	t.Setenv("SDKDRIFT_GATES_MAX_BREAKING", "-1")
	code, _, _ = execute("diff", oldPath, newPath, "--format", "markdown")
	assert.Equal(t, 0, code)
}

func TestDiffUnknownReference(t *testing.T) {
	setupEnv(t)
	code, _, stderr := execute("diff", "nope", "also-nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "neither a manifest file nor a snapshot")
}

func TestSnapshotLifecycle(t *testing.T) {
	setupEnv(t)

	code, _, stderr := execute("scan", sdkTree(t, usersV1), "--tag", "v1", "--output", filepath.Join(t.TempDir(), "m.json"))
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stderr, "Snapshot ")

	code, stdout, _ := execute("snapshot", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "v1")

	code, stdout, _ = execute("snapshot", "show", "v1")
	require.Equal(t, 0, code)
	var snap struct {
		ID          string `json:"id"`
		Tag         string `json:"tag"`
		MethodCount int    `json:"method_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &snap))
	assert.Equal(t, "v1", snap.Tag)
	assert.Equal(t, 2, snap.MethodCount)

	code, stdout, _ = execute("snapshot", "export", snap.ID[:6])
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "["), stdout)

	newPath := scanTo(t, usersV2)
	code, _, _ = execute("diff", "v1", newPath)
	assert.Equal(t, exitGateFailed, code)

	code, _, _ = execute("snapshot", "tag", snap.ID, "release")
	require.Equal(t, 0, code)
	code, _, _ = execute("diff", "release", "release")
	assert.Equal(t, 0, code)

	code, _, _ = execute("snapshot", "delete", "release")
	require.Equal(t, 0, code)
	code, stdout, _ = execute("snapshot", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "No snapshots.")
}

func TestLanguages(t *testing.T) {
	setupEnv(t)
	code, stdout, _ := execute("languages")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "python")
	assert.Contains(t, stdout, ".py")
}
