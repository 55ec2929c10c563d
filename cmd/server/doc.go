// Package main is the entry point for the Formlab playground server.
//
// The server powers the live demos embedded in the documentation
// site: it compiles visitor-edited demo source inside a sandboxed
// script runtime and returns renderable form descriptors.
//
// Architecture:
//
//	Docs site (editor) → Playground server → Sandbox pool (script VMs)
//
// The server provides:
//   - Demo catalog and session REST API
//   - WebSocket streaming for the live editor
//   - One-shot compile endpoint for embedded snippets
//   - Prometheus and JSON metrics
//   - Rate limiting and CORS for the public docs deployment
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
