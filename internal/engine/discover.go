package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// classDecl matches any class declaration and captures name and the
// optional extends clause.
var classDecl = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)(?:\s+extends\s+([A-Za-z_$][\w$]*))?\s*\{`)

// stringDefault matches a string-literal default-value assignment
// inside a class body, in either field or constructor form.
var stringDefault = regexp.MustCompile(`(?m)^\s*(?:this\.)?[\w$]+\s*=\s*["'` + "`" + `]`)

// Discover scans executable source for the class to instantiate.
//
// Primary rule: the last class extending one of the recognized base
// names wins, so after multi-file concatenation the entry file's own
// class takes precedence over helper classes extending the same base.
//
// Companion rule (applied only when withCompanion is set, the
// single-file variant): the last plain class, one with no extends
// clause, whose body assigns a string-literal default. That shape
// stands in for a data/entity class seeding initial display state.
//
// The scan is textual, not a parser; matches inside string literals or
// comments are an accepted limitation of the demo format.
func Discover(executable string, bases []string, withCompanion bool) Discovery {
	recognized := make(map[string]bool, len(bases))
	for _, base := range bases {
		recognized[base] = true
	}

	var d Discovery
	matches := classDecl.FindAllStringSubmatchIndex(executable, -1)
	for i, m := range matches {
		name := executable[m[2]:m[3]]
		base := ""
		if m[4] >= 0 {
			base = executable[m[4]:m[5]]
		}

		if base != "" && recognized[base] {
			d.Primary = name
			continue
		}

		if withCompanion && base == "" {
			end := len(executable)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			if stringDefault.MatchString(executable[m[1]:end]) {
				d.Companion = name
			}
		}
	}
	return d
}

// RecognizedBasesPattern is a debug aid describing what the primary
// rule accepts for a given base set.
func RecognizedBasesPattern(bases []string) string {
	return fmt.Sprintf(`class <Identifier> extends (%s)`, strings.Join(bases, "|"))
}
