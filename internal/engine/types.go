package engine

import (
	"github.com/formlab/playground/internal/engine/sandbox"
)

// SourceUnit is one named, editable source buffer within a demo.
// Name is unique within a compilation request; units are mutated in
// place as the user edits and are never removed during a session.
type SourceUnit struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	IsEntry  bool   `json:"is_entry"`
	ReadOnly bool   `json:"read_only"`
}

// Descriptor is the renderer-facing export of an instantiated class:
// a plain JSON-able tree produced by the instance's describe() method.
type Descriptor map[string]interface{}

// Fallback is the last successfully compiled instance pair. It is
// retained across failed compile attempts so a bad edit never blanks
// the demo.
type Fallback struct {
	Instance    Descriptor `json:"instance"`
	InitialData Descriptor `json:"initial_data,omitempty"`
}

// CompileResult is the outcome of one compile attempt. Instance may be
// non-nil alongside a non-empty Error when the engine fell back to a
// previous good instance while surfacing the new failure. Logs holds
// whatever the demo printed through console during the attempt.
type CompileResult struct {
	Instance    Descriptor         `json:"instance"`
	InitialData Descriptor         `json:"initial_data,omitempty"`
	Error       string             `json:"error,omitempty"`
	Logs        []sandbox.LogEntry `json:"logs,omitempty"`
}

// OK reports whether the attempt itself succeeded.
func (r CompileResult) OK() bool {
	return r.Error == ""
}

// Discovery holds the class names found by scanning executable source.
type Discovery struct {
	Primary   string
	Companion string
}
