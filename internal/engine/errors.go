package engine

import "errors"

// noEntryClassMessage is the display string shown when discovery finds
// no class extending a recognized base.
const noEntryClassMessage = "No entry class found"

// TranspileError reports source that is not syntactically valid script
// after sanitization. Detail carries the underlying parser diagnostic.
type TranspileError struct {
	Detail string
}

func (e *TranspileError) Error() string {
	return e.Detail
}

// SymbolNotFoundError reports that no declaration matched the required
// primary-symbol pattern.
type SymbolNotFoundError struct{}

func (e *SymbolNotFoundError) Error() string {
	return noEntryClassMessage
}

// RuntimeThrowError reports a throw during sandbox evaluation or
// construction: unresolved identifiers, throws in initializers,
// constructor throws.
type RuntimeThrowError struct {
	Detail string
}

func (e *RuntimeThrowError) Error() string {
	return e.Detail
}

// displayMessage reduces any pipeline error to the single
// human-readable string surfaced to the renderer. No error escapes the
// orchestration boundary as an exception.
func displayMessage(err error) string {
	if err == nil {
		return ""
	}

	var transpile *TranspileError
	if errors.As(err, &transpile) {
		return transpile.Detail
	}

	var symbol *SymbolNotFoundError
	if errors.As(err, &symbol) {
		return noEntryClassMessage
	}

	var runtime *RuntimeThrowError
	if errors.As(err, &runtime) {
		return runtime.Detail
	}

	return err.Error()
}
