package neo4j

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/graph"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// Neo4jRepository implements graph.Repository using Neo4j.
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
}

// NewNeo4j creates a Neo4j-backed repository.
func NewNeo4j(ctx context.Context, uri, username, password string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jRepository{driver: driver}, nil
}

const (
	mergeModule = "MERGE (m:Module {name: $name})"

	mergeNamespace = "MERGE (n:Namespace {name: $name, module: $module}) " +
		"WITH n OPTIONAL MATCH (m:Module {name: $module}) " +
		"FOREACH (x IN CASE WHEN m IS NULL THEN [] ELSE [1] END | MERGE (m)-[:DECLARES]->(n))"

	mergeMethod = "MERGE (f:Method {id: $id}) " +
		"SET f.name = $name, f.sourceFile = $sourceFile " +
		"WITH f MATCH (n:Namespace {name: $namespace, module: $module}) " +
		"MERGE (n)-[:EXPOSES]->(f)"

	clearParams = "MATCH (:Method {id: $id})-[:ACCEPTS]->(p:Param) DETACH DELETE p"

	mergeParam = "MATCH (f:Method {id: $id}) " +
		"MERGE (p:Param {key: $key}) " +
		"SET p.name = $name, p.`in` = $location, p.required = $required, p.type = $type " +
		"MERGE (f)-[r:ACCEPTS]->(p) SET r.position = $position"
)

// StoreManifest merges the manifest's modules, namespaces, methods and
// parameters. Parameters of a re-exported method are replaced.
func (r *Neo4jRepository) StoreManifest(ctx context.Context, records []*ir.MethodRecord) error {
	model := graph.Build(records)

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, mod := range model.Modules {
			if _, err := tx.Run(ctx, mergeModule, map[string]any{"name": mod}); err != nil {
				return nil, err
			}
		}
		for _, ns := range model.Namespaces {
			if _, err := tx.Run(ctx, mergeNamespace, map[string]any{"name": ns.Name, "module": ns.Module}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("store namespaces: %w", err)
	}

	for _, m := range model.Methods {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, mergeMethod, map[string]any{
				"id":         m.ID,
				"name":       m.Name,
				"sourceFile": m.SourceFile,
				"namespace":  m.Namespace,
				"module":     m.Module,
			})
			if err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, clearParams, map[string]any{"id": m.ID}); err != nil {
				return nil, err
			}
			for _, p := range m.Params {
				_, err := tx.Run(ctx, mergeParam, map[string]any{
					"id":       m.ID,
					"key":      p.Key,
					"name":     p.Name,
					"location": p.In,
					"required": p.Required,
					"type":     p.Type,
					"position": p.Position,
				})
				if err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("store method %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *Neo4jRepository) LoadManifest(ctx context.Context, module string) ([]*ir.MethodRecord, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx,
			"MATCH (n:Namespace)-[:EXPOSES]->(f:Method) "+
				"WHERE $module = '' OR n.module = $module "+
				"OPTIONAL MATCH (f)-[a:ACCEPTS]->(p:Param) "+
				"WITH n, f, a, p ORDER BY a.position "+
				"RETURN f.id AS id, n.name AS namespace, f.name AS name, f.sourceFile AS sourceFile, "+
				"collect({name: p.name, `in`: p.`in`, required: p.required, type: p.type}) AS params "+
				"ORDER BY id",
			map[string]any{"module": module})
		if err != nil {
			return nil, err
		}

		out := []*ir.MethodRecord{}
		for records.Next(ctx) {
			rec := records.Record()
			id, _ := rec.Get("id")
			ns, _ := rec.Get("namespace")
			name, _ := rec.Get("name")
			src, _ := rec.Get("sourceFile")
			params, _ := rec.Get("params")

			mr := &ir.MethodRecord{
				ID:         asString(id),
				Namespace:  asString(ns),
				MethodName: asString(name),
				Params:     []*ir.ParamRecord{},
				Visibility: ir.VisibilityPublic,
				SourceFile: asString(src),
			}
			list, _ := params.([]any)
			for _, raw := range list {
				p, ok := raw.(map[string]any)
				if !ok || p["name"] == nil {
					continue
				}
				required, _ := p["required"].(bool)
				mr.Params = append(mr.Params, ir.NewParam(asString(p["name"]), required, asString(p["type"])))
			}
			out = append(out, mr)
		}
		return out, records.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*ir.MethodRecord), nil
}

func (r *Neo4jRepository) QueryMethods(ctx context.Context, namespace string) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx,
			"MATCH (:Namespace {name: $name})-[:EXPOSES]->(f:Method) RETURN f.id AS id",
			map[string]any{"name": namespace})
		if err != nil {
			return nil, err
		}
		var ids []string
		for records.Next(ctx) {
			id, _ := records.Record().Get("id")
			ids = append(ids, asString(id))
		}
		return ids, records.Err()
	})
	if err != nil {
		return nil, err
	}
	ids := result.([]string)
	sort.Strings(ids)
	return ids, nil
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

var _ graph.Repository = (*Neo4jRepository)(nil)
