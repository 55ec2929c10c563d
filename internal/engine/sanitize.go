package engine

import "regexp"

// The sanitizer strips the module and type syntax that the script
// compiler cannot execute without a real module system. Passes run in
// a fixed order: later patterns assume earlier ones already removed
// confounding syntax (the assertion pass, for example, would otherwise
// eat the "* as ns" form inside import statements).
var (
	// import defaultBinding, { A, B } from "module";
	reImportFrom = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:[\w$]+\s*,\s*\{[^}]*\}|\{[^}]*\}|\*\s+as\s+[\w$]+|[\w$]+)\s*from\s*['"][^'"]*['"]\s*;?[ \t]*\r?\n?`)

	// import "module";
	reImportBare = regexp.MustCompile(`(?m)^[ \t]*import\s*['"][^'"]*['"]\s*;?[ \t]*\r?\n?`)

	// export keyword only; the exported declaration stays executable.
	reExport = regexp.MustCompile(`(?m)^([ \t]*)export\s+`)

	// interface Name extends Other { ... } with at most one nested
	// brace level, which is all the documentation source uses.
	reInterface = regexp.MustCompile(`(?m)^[ \t]*interface\s+[\w$]+(?:\s+extends\s+[^{]+)?\s*\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}[ \t]*\r?\n?`)

	// type Name = ...;
	reTypeAlias = regexp.MustCompile(`(?m)^[ \t]*type\s+[\w$]+(?:<[^>]*>)?\s*=[^;]*;[ \t]*\r?\n?`)

	// type { A, B }; remnants of type-only re-exports.
	reTypeGroup = regexp.MustCompile(`(?m)^[ \t]*type\s*\{[^}]*\}\s*;?[ \t]*\r?\n?`)

	// value as SomeType / value as SomeType<T>[] assertion suffixes.
	reAsAssertion = regexp.MustCompile(`\s+as\s+[A-Za-z_$][\w$]*(?:\.[\w$]+)*(?:<[^<>]*>)?(?:\[\])*`)
)

// Sanitize strips module and type syntax from raw demo source. It is a
// total function: any input produces some output, and a second pass
// over its own output is a no-op.
func Sanitize(raw string) string {
	out := reImportFrom.ReplaceAllString(raw, "")
	out = reImportBare.ReplaceAllString(out, "")
	out = reExport.ReplaceAllString(out, "$1")
	out = reInterface.ReplaceAllString(out, "")
	out = reTypeAlias.ReplaceAllString(out, "")
	out = reTypeGroup.ReplaceAllString(out, "")
	out = reAsAssertion.ReplaceAllString(out, "")
	return out
}
