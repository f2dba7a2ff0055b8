package convextypes

import "strings"

// Schema is the extracted database schema.
type Schema struct {
	Tables []*Table `yaml:"tables"`
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}

	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}

	return nil
}

// Table is one `defineTable` entry.
type Table struct {
	Name    string    `yaml:"name"`
	Doc     []string  `yaml:"doc,omitempty"`
	Columns []*Column `yaml:"columns"`
	Indexes []*Index  `yaml:"indexes,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Column is one document field of a table.
type Column struct {
	Name string    `yaml:"name"`
	Doc  []string  `yaml:"doc,omitempty"`
	Type *TypeNode `yaml:"type"`
}

// IndexKind distinguishes the index builders chained on defineTable.
type IndexKind string

// Index kinds.
const (
	IndexDefault IndexKind = "index"
	IndexSearch  IndexKind = "searchIndex"
	IndexVector  IndexKind = "vectorIndex"
)

// Index is an index declared on a table. Fields lists the indexed columns; for
// search and vector indexes it holds the searchField or vectorField followed by
// the filter fields.
type Index struct {
	Kind   IndexKind `yaml:"kind"`
	Name   string    `yaml:"name"`
	Fields []string  `yaml:"fields,omitempty"`
}

// FunctionKind is the kind of a Convex function.
type FunctionKind string

// Function kinds.
const (
	KindQuery    FunctionKind = "query"
	KindMutation FunctionKind = "mutation"
	KindAction   FunctionKind = "action"
)

// Function is an exported Convex query, mutation or action.
type Function struct {
	Name     string           `yaml:"name"`
	Kind     FunctionKind     `yaml:"kind"`
	Internal bool             `yaml:"internal,omitempty"`
	Module   string           `yaml:"module"`
	Doc      []string         `yaml:"doc,omitempty"`
	Params   []*FunctionParam `yaml:"params"`
}

// Path returns the callable path of the function, `module:name`.
func (f *Function) Path() string {
	return f.Module + ":" + f.Name
}

// Param returns the parameter with the given name, or nil.
func (f *Function) Param(name string) *FunctionParam {
	for _, p := range f.Params {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// FunctionParam is one entry of a function's `args` object.
type FunctionParam struct {
	Name string    `yaml:"name"`
	Doc  []string  `yaml:"doc,omitempty"`
	Type *TypeNode `yaml:"type"`
}

// ModuleName derives the Convex module name from a function file path: the
// path relative to the convex directory, without extension, using forward
// slashes. When the file is not under a directory named "convex" the base
// name is used.
func ModuleName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")

	if i := strings.LastIndex(path, "/convex/"); i >= 0 {
		path = path[i+len("/convex/"):]
	} else if strings.HasPrefix(path, "convex/") {
		path = strings.TrimPrefix(path, "convex/")
	} else if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}

	for _, ext := range []string{".d.ts", ".ts", ".tsx", ".js", ".mjs", ".jsx"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}

	return path
}
