package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/graph"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// memoryGraph is an in-process graph.Repository keyed by record id.
type memoryGraph struct {
	records map[string]*ir.MethodRecord
	closed  int
}

func newMemoryGraph() *memoryGraph {
	return &memoryGraph{records: map[string]*ir.MethodRecord{}}
}

func (g *memoryGraph) StoreManifest(_ context.Context, records []*ir.MethodRecord) error {
	for _, r := range records {
		g.records[r.ID] = r
	}
	return nil
}

func (g *memoryGraph) LoadManifest(_ context.Context, module string) ([]*ir.MethodRecord, error) {
	out := []*ir.MethodRecord{}
	for id, r := range g.records {
		if module == "" || graph.ModuleOf(id) == module {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *memoryGraph) QueryMethods(_ context.Context, namespace string) ([]string, error) {
	var ids []string
	for id, r := range g.records {
		if r.Namespace == namespace {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (g *memoryGraph) Close(context.Context) error {
	g.closed++
	return nil
}

func executeWithGraph(repo graph.Repository, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.openGraph = func(context.Context) (graph.Repository, error) { return repo, nil }
	code := a.execute(args)
	return code, stdout.String(), stderr.String()
}

func TestGraphExportAndQuery(t *testing.T) {
	setupEnv(t)
	repo := newMemoryGraph()

	out := filepath.Join(t.TempDir(), "m.json")
	code, _, stderr := executeWithGraph(repo, "scan", sdkTree(t, usersV1), "--graph", "--output", out)
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stderr, "Warning")
	require.Len(t, repo.records, 2)
	assert.Equal(t, 1, repo.closed)

	code, stdout, _ := executeWithGraph(repo, "graph", "methods", "UsersService")
	require.Equal(t, 0, code)
	assert.Equal(t, "users:UsersService.delete\nusers:UsersService.get\n", stdout)

	code, stdout, _ = executeWithGraph(repo, "graph", "methods", "MissingService")
	require.Equal(t, 0, code)
	assert.Equal(t, "No methods for MissingService.\n", stdout)

	code, stdout, _ = executeWithGraph(repo, "graph", "export", "users")
	require.Equal(t, 0, code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "users:UsersService.delete", records[0]["id"])

	code, stdout, _ = executeWithGraph(repo, "graph", "export", "billing")
	require.Equal(t, 0, code)
	assert.Equal(t, "[]\n", stdout)
}

func TestDiffAgainstGraphSide(t *testing.T) {
	setupEnv(t)
	repo := newMemoryGraph()

	code, _, stderr := executeWithGraph(repo, "scan", sdkTree(t, usersV1), "--graph", "--output", filepath.Join(t.TempDir(), "m.json"))
	require.Equal(t, 0, code, stderr)

	code, _, _ = executeWithGraph(repo, "diff", "graph:users", "graph:")
	assert.Equal(t, 0, code)

	newPath := scanTo(t, usersV2)
	code, stdout, stderr := executeWithGraph(repo, "diff", "graph:users", newPath, "--format", "json")
	assert.Equal(t, exitGateFailed, code)
	assert.Contains(t, stdout, `"removed_method"`)
	assert.Contains(t, stdout, `"old_ref": "graph:users"`)
	assert.Contains(t, stderr, "drift gates failed")
}

func TestGraphNotConfigured(t *testing.T) {
	setupEnv(t)
	t.Setenv("SDKDRIFT_GRAPH_URI", "")

	code, _, stderr := execute("graph", "methods", "UsersService")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
	assert.Contains(t, stderr, "graph.uri is not configured")

	code, _, stderr = execute("diff", "graph:users", "graph:")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "graph.uri is not configured")
}

func TestGraphModule(t *testing.T) {
	module, ok := graphModule("graph:billing.invoices")
	assert.True(t, ok)
	assert.Equal(t, "billing.invoices", module)

	module, ok = graphModule("graph:")
	assert.True(t, ok)
	assert.Empty(t, module)

	_, ok = graphModule("v1")
	assert.False(t, ok)
}
