package engine

import (
	"github.com/dop251/goja"
)

const compileFilename = "demo.js"

// Transpile validates sanitized source as executable script and returns
// it unchanged. The engine treats this as a boundary call: a syntax
// error surfaces as TranspileError with the parser diagnostic, with no
// attempt to recover partial output.
func Transpile(sanitized string) (string, error) {
	if _, err := goja.Compile(compileFilename, sanitized, false); err != nil {
		return "", &TranspileError{Detail: err.Error()}
	}
	return sanitized, nil
}
