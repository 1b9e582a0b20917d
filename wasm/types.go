package wasm

import "strings"

// Module is the decoded description of a wasm binary.
type Module struct {
	Name           string          `json:"name,omitempty" yaml:"name,omitempty"`
	Size           int             `json:"size" yaml:"size"`
	Imports        []Import        `json:"imports" yaml:"imports"`
	Exports        []Export        `json:"exports" yaml:"exports"`
	Functions      []Function      `json:"functions" yaml:"functions"`
	Memories       []Memory        `json:"memories,omitempty" yaml:"memories,omitempty"`
	CustomSections []CustomSection `json:"customSections,omitempty" yaml:"customSections,omitempty"`
}

// Import is one entry of the import section.
type Import struct {
	Module string `json:"module" yaml:"module"`
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Index  uint32 `json:"index" yaml:"index"`
}

// Export is one entry of the export section.
type Export struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Index uint32 `json:"index" yaml:"index"`
}

// Param is a function parameter, named when the name section provides one.
type Param struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

// Function describes an imported or exported function.
type Function struct {
	Index   uint32   `json:"index" yaml:"index"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Import  *Import  `json:"import,omitempty" yaml:"import,omitempty"`
	Exports []string `json:"exports,omitempty" yaml:"exports,omitempty"`
	Params  []Param  `json:"params" yaml:"params"`
	Results []string `json:"results" yaml:"results"`
}

// Signature formats the function type in WAT order.
func (f Function) Signature() string {
	var b strings.Builder
	b.WriteString("(func")
	for _, p := range f.Params {
		b.WriteString(" (param " + p.Type + ")")
	}
	for _, r := range f.Results {
		b.WriteString(" (result " + r + ")")
	}
	b.WriteByte(')')
	return b.String()
}

// Memory describes an imported or exported linear memory in pages.
type Memory struct {
	Index   uint32   `json:"index" yaml:"index"`
	Import  *Import  `json:"import,omitempty" yaml:"import,omitempty"`
	Exports []string `json:"exports,omitempty" yaml:"exports,omitempty"`
	Min     uint32   `json:"min" yaml:"min"`
	Max     *uint32  `json:"max,omitempty" yaml:"max,omitempty"`
}

// CustomSection records a custom section by name and payload size.
type CustomSection struct {
	Name string `json:"name" yaml:"name"`
	Size int    `json:"size" yaml:"size"`
}

// Func returns the function with the given export name.
func (m *Module) Func(export string) (Function, bool) {
	for _, f := range m.Functions {
		for _, name := range f.Exports {
			if name == export {
				return f, true
			}
		}
	}
	return Function{}, false
}
