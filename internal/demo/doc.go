// Package demo manages live-demo sessions: the per-demo-instance
// state pair of editable source buffers and last-known-good compile
// result.
//
// Each session moves through a small lifecycle: Initial (static
// source, nothing compiled), Compiled (last Run succeeded) and
// CompiledWithError (last Run failed, previous instance retained).
// There is no terminal state; a session cycles between the compiled
// states for as long as the page lives. Sessions are independent of
// each other; the compilation scope they share is immutable.
package demo
