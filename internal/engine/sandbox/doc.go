/*
Package sandbox provides isolated script execution for live demos.

# Overview

Demo source is executed inside goja VMs with a fixed capability set.
Each runtime has:

  - Call-stack and wall-clock limits (interrupt polling)
  - A pre-registered global table built from the library prelude
  - Disabled module-system globals (require, process, module, exports)
  - Captured console output

# Architecture

The sandbox operates in layers:

 1. Runtime: goja VM with an isolated global scope
 2. Prelude binding: the library surface evaluated as globals
 3. Wrapped execution: the compilation unit runs inside a strict-mode
    IIFE that returns the discovered constructors
 4. Pool: bounded set of reusable runtimes, reset between compiles

# Threat Model

Demo source is authored by the site's own developers and edited by
visitors in their own browser session. Limits here are hardening, not
a hostile-input isolation guarantee: scripts cannot reach the
filesystem, network, or host process, and runaway scripts are
interrupted, but side channels are out of scope.

# Usage Example

	rt, _ := sandbox.New(sandbox.DefaultConfig())
	rt.Bind(prelude, scopeNames)
	handles, err := rt.Execute(ctx, script, "Demo", "")
	if err == nil {
		instance, _ := rt.Construct(ctx, handles.Primary)
		descriptor, _ := rt.Describe(ctx, instance)
		_ = descriptor
	}
*/
package sandbox
