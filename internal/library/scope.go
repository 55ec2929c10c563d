// Package library defines the compilation scope: the fixed set of
// Formlab bindings made available, unqualified, to executed demo
// scripts. The surface is declared once as an embedded prelude and is
// immutable for the lifetime of the process; per-demo state never
// leaks through it.
package library

import (
	_ "embed"
)

//go:embed prelude.js
var prelude string

// Scope is an ordered mapping from identifier name to a library value.
// Order matters: it is the order bindings are declared to the sandbox.
type Scope struct {
	names []string
	bases []string
}

// Default returns the full Formlab surface: the composable base
// classes plus the component catalogue.
func Default() *Scope {
	return &Scope{
		names: []string{
			"Form",
			"Page",
			"Dialog",
			"Tabs",
			"TextField",
			"TextArea",
			"NumberField",
			"Select",
			"Checkbox",
			"DatePicker",
			"Table",
			"Label",
			"Button",
			"Image",
		},
		bases: []string{"Form", "Page", "Dialog", "Tabs"},
	}
}

// Prelude returns the script that declares every binding. The sandbox
// evaluates it into a fresh VM before demo source runs.
func (s *Scope) Prelude() string {
	return prelude
}

// Names returns the scope's binding names in declaration order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.names...)
}

// Bases returns the base-class names symbol discovery recognizes in a
// "class X extends Base" declaration.
func (s *Scope) Bases() []string {
	return append([]string(nil), s.bases...)
}

// Has reports whether name is part of the scope.
func (s *Scope) Has(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}
