package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
)

// Repository provides graph storage for manifests.
type Repository interface {
	// StoreManifest merges every record into the graph.
	StoreManifest(ctx context.Context, records []*ir.MethodRecord) error
	// LoadManifest rebuilds the records stored for a module, or all modules
	// when module is empty.
	LoadManifest(ctx context.Context, module string) ([]*ir.MethodRecord, error)
	// QueryMethods returns the ids of methods exposed by a namespace.
	QueryMethods(ctx context.Context, namespace string) ([]string, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// Model is the node/edge shape a manifest takes in the graph:
// (:Module)-[:DECLARES]->(:Namespace)-[:EXPOSES]->(:Method)-[:ACCEPTS]->(:Param).
type Model struct {
	Modules    []string
	Namespaces []NamespaceNode
	Methods    []MethodNode
}

// NamespaceNode is a class, keyed by module and name.
type NamespaceNode struct {
	Module string
	Name   string
}

// MethodNode is one record with its parameters.
type MethodNode struct {
	ID         string
	Module     string
	Namespace  string
	Name       string
	SourceFile string
	Params     []ParamNode
}

// ParamNode is one parameter; Key is unique across the graph.
type ParamNode struct {
	Key      string
	Position int
	Name     string
	In       string
	Required bool
	Type     string
}

// ModuleOf returns the module part of a record id, or "" for ids without one.
func ModuleOf(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i]
	}
	return ""
}

// ParamKey identifies a parameter node.
func ParamKey(methodID, name string) string {
	return methodID + "#" + name
}

// Build converts records into graph nodes. Output order is sorted so repeated
// exports issue identical statements.
func Build(records []*ir.MethodRecord) *Model {
	m := &Model{}
	modules := map[string]bool{}
	namespaces := map[NamespaceNode]bool{}

	for _, r := range ir.Index(records) {
		mod := ModuleOf(r.ID)
		if mod != "" && !modules[mod] {
			modules[mod] = true
			m.Modules = append(m.Modules, mod)
		}
		ns := NamespaceNode{Module: mod, Name: r.Namespace}
		if !namespaces[ns] {
			namespaces[ns] = true
			m.Namespaces = append(m.Namespaces, ns)
		}

		node := MethodNode{
			ID:         r.ID,
			Module:     mod,
			Namespace:  r.Namespace,
			Name:       r.MethodName,
			SourceFile: r.SourceFile,
		}
		for i, p := range r.Params {
			node.Params = append(node.Params, ParamNode{
				Key:      ParamKey(r.ID, p.Name),
				Position: i,
				Name:     p.Name,
				In:       string(p.In),
				Required: p.Required,
				Type:     p.Type.Name,
			})
		}
		m.Methods = append(m.Methods, node)
	}

	sort.Strings(m.Modules)
	sort.Slice(m.Namespaces, func(i, j int) bool {
		a, b := m.Namespaces[i], m.Namespaces[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Name < b.Name
	})
	sort.Slice(m.Methods, func(i, j int) bool { return m.Methods[i].ID < m.Methods[j].ID })
	return m
}
