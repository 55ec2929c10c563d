package engine

import (
	"context"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/formlab/playground/internal/engine/sandbox"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/library"
)

// Engine runs the compile pipeline: sanitize, combine, transpile,
// discover, execute, instantiate. One Engine serves every demo; the
// immutable scope is the only thing compiles share.
type Engine struct {
	pool   *sandbox.Pool
	scope  *library.Scope
	logger *logging.Logger
}

// Options configures engine resources.
type Options struct {
	PoolSize int
	Sandbox  sandbox.Config
}

// DefaultOptions returns production-ready engine options.
func DefaultOptions() Options {
	return Options{
		PoolSize: 4,
		Sandbox:  sandbox.DefaultConfig(),
	}
}

// New creates an engine over the given compilation scope.
func New(scope *library.Scope, opts Options, logger *logging.Logger) (*Engine, error) {
	pool, err := sandbox.NewPool(opts.Sandbox, opts.PoolSize)
	if err != nil {
		return nil, err
	}
	return &Engine{
		pool:   pool,
		scope:  scope,
		logger: logger,
	}, nil
}

// Scope returns the engine's compilation scope.
func (e *Engine) Scope() *library.Scope {
	return e.scope
}

// PoolStats exposes sandbox pool statistics for the metrics surface.
func (e *Engine) PoolStats() map[string]interface{} {
	return e.pool.Stats()
}

// PoolAvailable returns the number of idle sandbox runtimes.
func (e *Engine) PoolAvailable() int {
	return e.pool.Available()
}

// Close releases the sandbox pool.
func (e *Engine) Close() error {
	return e.pool.Close()
}

// Compile runs the multi-file variant: units are combined with the
// entry unit last, and the companion heuristic is disabled.
func (e *Engine) Compile(ctx context.Context, units []SourceUnit, entry string, fb Fallback) CompileResult {
	if entry == "" {
		for _, unit := range units {
			if unit.IsEntry {
				entry = unit.Name
				break
			}
		}
	}
	return e.compile(ctx, Combine(units, entry), false, fb)
}

// CompileSource runs the single-file variant, with the companion
// data-class heuristic active.
func (e *Engine) CompileSource(ctx context.Context, source string, fb Fallback) CompileResult {
	return e.compile(ctx, source, true, fb)
}

// compile is the single funnel every compile attempt flows through.
// Failures of any kind reduce to a display string; the fallback pair
// is never cleared.
func (e *Engine) compile(ctx context.Context, source string, withCompanion bool, fb Fallback) CompileResult {
	start := time.Now()

	sanitized := Sanitize(source)

	executable, err := Transpile(sanitized)
	if err != nil {
		return e.fail(fb, err, start)
	}

	discovered := Discover(executable, e.scope.Bases(), withCompanion)
	if discovered.Primary == "" {
		e.logger.Debug("Discovery found no primary symbol",
			zap.String("pattern", RecognizedBasesPattern(e.scope.Bases())),
		)
		return e.fail(fb, &SymbolNotFoundError{}, start)
	}

	rt, err := e.pool.Acquire(ctx)
	if err != nil {
		return e.fail(fb, err, start)
	}
	defer e.pool.Release(rt)

	// Console output belongs to the attempt that produced it, success
	// or failure, so both exits copy it out before the runtime resets.
	failed := func(err error) CompileResult {
		res := e.fail(fb, err, start)
		res.Logs = rt.Console()
		return res
	}

	if err := rt.Bind(e.scope.Prelude(), e.scope.Names()); err != nil {
		return failed(&RuntimeThrowError{Detail: err.Error()})
	}

	handles, err := rt.Execute(ctx, executable, discovered.Primary, discovered.Companion)
	if err != nil {
		return failed(&RuntimeThrowError{Detail: err.Error()})
	}

	instance, err := e.materialize(ctx, rt, handles.Primary)
	if err != nil {
		return failed(err)
	}

	var initialData Descriptor
	if handles.Companion != nil && !goja.IsUndefined(handles.Companion) && !goja.IsNull(handles.Companion) {
		initialData, err = e.materialize(ctx, rt, handles.Companion)
		if err != nil {
			return failed(err)
		}
	}

	e.logger.Debug("Compile succeeded",
		zap.String("primary", discovered.Primary),
		zap.String("companion", discovered.Companion),
		zap.Duration("duration", time.Since(start)),
	)

	return CompileResult{
		Instance:    instance,
		InitialData: initialData,
		Logs:        rt.Console(),
	}
}

// materialize constructs a class and exports the instance descriptor.
func (e *Engine) materialize(ctx context.Context, rt *sandbox.Runtime, ctor goja.Value) (Descriptor, error) {
	obj, err := rt.Construct(ctx, ctor)
	if err != nil {
		return nil, &RuntimeThrowError{Detail: err.Error()}
	}
	desc, err := rt.Describe(ctx, obj)
	if err != nil {
		return nil, &RuntimeThrowError{Detail: err.Error()}
	}
	return Descriptor(desc), nil
}

// fail builds the fallback result for a failed attempt.
func (e *Engine) fail(fb Fallback, err error, start time.Time) CompileResult {
	e.logger.Debug("Compile failed",
		zap.String("error", displayMessage(err)),
		zap.Duration("duration", time.Since(start)),
	)
	return CompileResult{
		Instance:    fb.Instance,
		InitialData: fb.InitialData,
		Error:       displayMessage(err),
	}
}
