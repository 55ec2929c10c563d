/*
Package engine compiles and executes live-demo source.

# Pipeline

An explicit Run trigger pushes the editor buffers through:

 1. Sanitize: strip module and type syntax (pure text transform)
 2. Combine: concatenate multi-file units, entry last
 3. Transpile: validate the source as executable script
 4. Discover: find the entry class by structural convention
 5. Execute: run the script in a sandbox against the library scope
 6. Instantiate: construct the discovered class(es) and export
    renderer descriptors

Everything upstream of execution is pure text transformation; the
sandbox package owns the one step that runs code.

# Failure Model

Three error kinds exist: TranspileError, SymbolNotFoundError and
RuntimeThrowError. All are caught at the compile funnel and reduced to
a display string. A failed attempt never clears a previously
successful instance: the last good (instance, initialData) pair rides
along in the result so a single bad edit cannot blank a demo.

# Limitations

Discovery and sanitization are textual, not a parser. Class-looking
text inside string literals or comments can misfire; the demo corpus
does not exercise those shapes and they are documented as out of
scope.
*/
package engine
