package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Runtime wraps a goja VM with the controls demo scripts run under:
// a fixed global table, call-stack and wall-clock limits, and captured
// console output.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		vm:      goja.New(),
		config:  config,
		console: []LogEntry{},
	}

	if config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(config.MaxCallStack)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	return r, nil
}

// Bind evaluates the library prelude into the VM and verifies every
// scope binding resolves. Missing bindings are an error: the sandbox
// never fabricates library values.
func (r *Runtime) Bind(prelude string, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.vm.RunString(prelude); err != nil {
		return fmt.Errorf("failed to evaluate scope prelude: %w", err)
	}

	// Top-level class declarations are global lexical bindings, not
	// global-object properties; vm.Get resolves both.
	for _, name := range names {
		if val := r.vm.Get(name); val == nil || goja.IsUndefined(val) {
			return fmt.Errorf("scope binding %q missing after prelude evaluation", name)
		}
	}
	return nil
}

// Execute runs executable source wrapped so that the discovered class
// constructors are handed back, without leaking the script's own
// top-level declarations into the global scope. companion may be empty.
func (r *Runtime) Execute(ctx context.Context, script, primary, companion string) (*Handles, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	val, err := r.run(ctx, func() (goja.Value, error) {
		return r.vm.RunString(wrap(script, primary, companion))
	})
	if err != nil {
		return nil, err
	}

	obj := val.ToObject(r.vm)
	handles := &Handles{
		Primary:   obj.Get("PrimaryCtor"),
		Companion: obj.Get("CompanionCtor"),
	}
	if handles.Primary == nil || goja.IsUndefined(handles.Primary) {
		return nil, fmt.Errorf("constructor %s did not survive execution", primary)
	}
	return handles, nil
}

// Construct instantiates a class constructor under the same limits as
// Execute; class initializers run arbitrary script.
func (r *Runtime) Construct(ctx context.Context, ctor goja.Value) (*goja.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	val, err := r.run(ctx, func() (goja.Value, error) {
		obj, err := r.vm.New(ctor)
		if err != nil {
			return nil, err
		}
		return obj, nil
	})
	if err != nil {
		return nil, err
	}
	return val.ToObject(r.vm), nil
}

// Describe exports an instance to a plain map for the renderer. When
// the instance has a describe() method that wins; otherwise the object
// is exported field-by-field.
func (r *Runtime) Describe(ctx context.Context, instance *goja.Object) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	describe, ok := goja.AssertFunction(instance.Get("describe"))
	if !ok {
		return asMap(instance.Export()), nil
	}

	val, err := r.run(ctx, func() (goja.Value, error) {
		return describe(instance)
	})
	if err != nil {
		return nil, err
	}
	return asMap(val.Export()), nil
}

// Console returns the console output captured since the last reset.
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// run invokes fn with timeout and cancellation enforced through the VM
// interrupt mechanism.
func (r *Runtime) run(ctx context.Context, fn func() (goja.Value, error)) (goja.Value, error) {
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := fn()
	close(done)
	r.vm.ClearInterrupt()
	return val, err
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	// Remove module-system globals
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are no-ops: demo execution is synchronous
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	if r.config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}

// wrap builds the executed compilation unit: the script body followed
// by a synthetic return handing back the discovered constructors.
func wrap(script, primary, companion string) string {
	if companion == "" {
		companion = "undefined"
	}
	var b strings.Builder
	b.WriteString("(function () {\n\"use strict\";\n")
	b.WriteString(script)
	b.WriteString("\n;return { PrimaryCtor: ")
	b.WriteString(primary)
	b.WriteString(", CompanionCtor: ")
	b.WriteString(companion)
	b.WriteString(" };\n})()")
	return b.String()
}

// asMap normalizes an exported value to the renderer descriptor shape.
func asMap(exported interface{}) map[string]interface{} {
	if m, ok := exported.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"value": exported}
}
