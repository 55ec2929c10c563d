package engine

import (
	"strings"
)

// sourceLike reports whether a unit name looks like script source.
// Demos may carry non-source units (styles, data fixtures) that must
// not end up in the compilation unit.
func sourceLike(name string) bool {
	if !strings.Contains(name, ".") {
		return true
	}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Combine concatenates source units into one compilation unit. Helper
// units keep their given order; the entry unit is appended last so its
// declarations win during symbol discovery and can reference helper
// classes already declared above. Entry files reference helpers, never
// the reverse.
func Combine(units []SourceUnit, entry string) string {
	var b strings.Builder
	for _, unit := range units {
		if unit.Name == entry || !sourceLike(unit.Name) {
			continue
		}
		b.WriteString(unit.Content)
		b.WriteString("\n")
	}
	for _, unit := range units {
		if unit.Name == entry {
			b.WriteString(unit.Content)
			b.WriteString("\n")
			break
		}
	}
	return b.String()
}
