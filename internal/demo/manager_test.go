package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/formlab/playground/internal/catalog"
	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/library"
	"github.com/formlab/playground/internal/shared/id"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cat, err := catalog.Load("", logging.NewNop())
	require.NoError(t, err)

	opts := engine.DefaultOptions()
	opts.PoolSize = 1
	eng, err := engine.New(library.Default(), opts, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	return NewManager(eng, cat, logging.NewNop())
}

func TestOpenUnknownDemo(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Open("does-not-exist")
	assert.ErrorIs(t, err, ErrDemoNotFound)
}

func TestOpenStartsInitial(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	assert.Equal(t, StateInitial, snap.State)
	assert.False(t, snap.Dirty)
	assert.Nil(t, snap.Result.Instance)
	assert.NotEmpty(t, snap.Units)
	assert.Equal(t, 1, m.Count())
}

func TestRunCompilesCatalogSource(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	ran, err := m.Run(context.Background(), snap.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, StateCompiled, ran.State)
	require.Empty(t, ran.Result.Error)
	assert.Equal(t, "form", ran.Result.Instance["kind"])
	// The catalog demo ships a data class; it seeds initial values.
	require.NotNil(t, ran.Result.InitialData)
	assert.Equal(t, "Ada Lovelace", ran.Result.InitialData["name"])
}

func TestEditMarksDirtyWithoutStateChange(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	edited, err := m.UpdateSource(snap.ID, "demo.ts", "class X extends Form {}")
	require.NoError(t, err)

	assert.True(t, edited.Dirty)
	assert.Equal(t, StateInitial, edited.State, "editing must not transition state")
}

func TestRunFailureRetainsFallback(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	good, err := m.Run(ctx, snap.ID, nil)
	require.NoError(t, err)
	require.Equal(t, StateCompiled, good.State)

	bad, err := m.Run(ctx, snap.ID, []UnitEdit{{Name: "demo.ts", Content: "class {"}})
	require.NoError(t, err)

	assert.Equal(t, StateCompiledWithError, bad.State)
	assert.NotEmpty(t, bad.Result.Error)
	assert.Equal(t, good.Result.Instance, bad.Result.Instance)
	assert.Equal(t, good.Result.InitialData, bad.Result.InitialData)

	// The session recovers on the next good Run.
	fixed, err := m.Run(ctx, snap.ID, []UnitEdit{{Name: "demo.ts",
		Content: "class Demo extends Form { configure() { this.title = \"fixed\"; } }"}})
	require.NoError(t, err)
	assert.Equal(t, StateCompiled, fixed.State)
	assert.Equal(t, "fixed", fixed.Result.Instance["title"])
}

func TestRunFailureLogsRequestID(t *testing.T) {
	cat, err := catalog.Load("", logging.NewNop())
	require.NoError(t, err)

	opts := engine.DefaultOptions()
	opts.PoolSize = 1
	eng, err := engine.New(library.Default(), opts, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	m := NewManager(eng, cat, &logging.Logger{Logger: zap.New(core)})

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	ctx := id.WithRequestID(context.Background(), "req_correlate")
	bad, err := m.Run(ctx, snap.ID, []UnitEdit{{Name: "demo.ts", Content: "class {"}})
	require.NoError(t, err)
	require.Equal(t, StateCompiledWithError, bad.State)

	entries := logs.FilterMessage("Demo compile failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req_correlate", fields["request"])
	assert.Equal(t, snap.ID, fields["session"])
}

func TestRunMultiFileDemo(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("settings-tabs")
	require.NoError(t, err)

	ran, err := m.Run(context.Background(), snap.ID, nil)
	require.NoError(t, err)

	require.Empty(t, ran.Result.Error)
	assert.Equal(t, "tabs", ran.Result.Instance["kind"])
	tabs, ok := ran.Result.Instance["tabs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tabs, 2)
}

func TestUpdateSourceErrors(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	_, err = m.UpdateSource(snap.ID, "missing.ts", "x")
	assert.ErrorIs(t, err, ErrUnitNotFound)

	_, err = m.UpdateSource("sess_unknown", "demo.ts", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReadOnlyUnitRejectsEdits(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	// Force a read-only unit through the session's own buffers.
	s, err := m.lookup(snap.ID)
	require.NoError(t, err)
	s.units[0].ReadOnly = true

	_, err = m.UpdateSource(snap.ID, s.units[0].Name, "x")
	assert.ErrorIs(t, err, ErrUnitReadOnly)
}

func TestSourceReturnsVerbatimBuffers(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	content := "class Demo extends Form {}   // trailing spaces kept   "
	_, err = m.UpdateSource(snap.ID, "demo.ts", content)
	require.NoError(t, err)

	units, err := m.Source(snap.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, content, units[0].Content)
}

func TestCloseSession(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Open("customer-form")
	require.NoError(t, err)

	assert.True(t, m.Close(snap.ID))
	assert.False(t, m.Close(snap.ID))
	assert.Equal(t, 0, m.Count())

	_, err = m.Get(snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
