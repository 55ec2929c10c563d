// Package id provides centralized ID generation for the playground.
//
// All identifiers are prefixed ULIDs: lexicographically sortable, so
// session listings and logs read in creation order, with type-specific
// prefixes (sess_*, req_*) keeping logs debuggable. Typed wrappers
// prevent one ID kind being passed where another is expected.
package id

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies one live-demo session.
type SessionID string

// RequestID identifies an API request.
type RequestID string

// ID prefixes.
const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSessionID generates a new demo-session ID.
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// HasPrefix reports whether raw carries the given type prefix.
func HasPrefix(raw, prefix string) bool {
	return strings.HasPrefix(raw, prefix+"_")
}

type requestIDKey struct{}

// WithRequestID stores a request ID on the context for log correlation.
func WithRequestID(ctx context.Context, reqID RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

// RequestIDFromContext returns the request ID stored on the context,
// or the empty string when none is set.
func RequestIDFromContext(ctx context.Context) RequestID {
	reqID, _ := ctx.Value(requestIDKey{}).(RequestID)
	return reqID
}
