package ir

import "strings"

// Visibility of a recorded operation. Only public operations are ever recorded.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParamLocation says where a parameter travels. The manifest models every
// non-self parameter uniformly as "query".
type ParamLocation string

const (
	ParamQuery ParamLocation = "query"
)

// UnknownType is the type name used when an annotation is absent or cannot be rendered.
const UnknownType = "unknown"

// MethodRecord is one public operation found on an API-facing class.
type MethodRecord struct {
	ID         string         `json:"id"`
	Namespace  string         `json:"namespace"`
	MethodName string         `json:"methodName"`
	Params     []*ParamRecord `json:"params"`
	Visibility Visibility     `json:"visibility"`
	SourceFile string         `json:"sourceFile"`
}

// ParamRecord is one formal parameter of a MethodRecord.
type ParamRecord struct {
	Name     string        `json:"name"`
	In       ParamLocation `json:"in"`
	Required bool          `json:"required"`
	Type     TypeSurface   `json:"type"`
}

// TypeSurface carries the rendered annotation text.
type TypeSurface struct {
	Name string `json:"name"`
}

// MethodID builds a record id. With an empty module the id degrades to
// "<namespace>.<method>".
func MethodID(module, namespace, method string) string {
	var b strings.Builder
	if module != "" {
		b.WriteString(module)
		b.WriteByte(':')
	}
	b.WriteString(namespace)
	b.WriteByte('.')
	b.WriteString(method)
	return b.String()
}

// NewMethodRecord creates a public record with an empty, non-nil parameter list.
func NewMethodRecord(module, namespace, method, sourceFile string) *MethodRecord {
	return &MethodRecord{
		ID:         MethodID(module, namespace, method),
		Namespace:  namespace,
		MethodName: method,
		Params:     []*ParamRecord{},
		Visibility: VisibilityPublic,
		SourceFile: sourceFile,
	}
}

// NewParam creates a query parameter. An empty type name becomes UnknownType.
func NewParam(name string, required bool, typeName string) *ParamRecord {
	if typeName == "" {
		typeName = UnknownType
	}
	return &ParamRecord{
		Name:     name,
		In:       ParamQuery,
		Required: required,
		Type:     TypeSurface{Name: typeName},
	}
}

// Param returns the parameter with the given name, or nil.
func (m *MethodRecord) Param(name string) *ParamRecord {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// RequiredCount returns the number of required parameters.
func (m *MethodRecord) RequiredCount() int {
	n := 0
	for _, p := range m.Params {
		if p.Required {
			n++
		}
	}
	return n
}

// Index maps record ids to records. When ids collide the later record wins.
func Index(records []*MethodRecord) map[string]*MethodRecord {
	out := make(map[string]*MethodRecord, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out
}
