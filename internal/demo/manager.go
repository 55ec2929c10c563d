package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/formlab/playground/internal/catalog"
	"github.com/formlab/playground/internal/engine"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/infrastructure/monitoring"
	"github.com/formlab/playground/internal/shared/id"
)

// State is one demo session's position in the compile lifecycle.
// Editing never transitions state; only an explicit Run does.
type State string

const (
	// StateInitial: statically-configured source, no compile attempted.
	StateInitial State = "initial"
	// StateCompiled: the last compile attempt succeeded.
	StateCompiled State = "compiled"
	// StateCompiledWithError: the last attempt failed; the previous
	// instance is retained and the error text shown.
	StateCompiledWithError State = "compiled_with_error"
)

var (
	ErrDemoNotFound    = errors.New("demo not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnitNotFound    = errors.New("source unit not found")
	ErrUnitReadOnly    = errors.New("source unit is read-only")
)

// UnitEdit replaces one unit's buffer content.
type UnitEdit struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// session is one live demo instance. All mutation happens under mu, so
// a Run applies its result atomically: an older result can never
// overwrite a newer one.
type session struct {
	id      id.SessionID
	demo    *catalog.Demo
	mu      sync.Mutex
	units   []engine.SourceUnit
	dirty   bool
	state   State
	fallbck engine.Fallback
	result  engine.CompileResult
	created time.Time
	updated time.Time
}

// Snapshot is the renderer-facing view of a session.
type Snapshot struct {
	ID        string               `json:"id"`
	DemoID    string               `json:"demo_id"`
	Variant   string               `json:"variant"`
	State     State                `json:"state"`
	Dirty     bool                 `json:"dirty"`
	Units     []engine.SourceUnit  `json:"units"`
	Result    engine.CompileResult `json:"result"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Manager owns demo sessions and drives the engine on Run triggers.
type Manager struct {
	engine   *engine.Engine
	catalog  *catalog.Catalog
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	sessions sync.Map
}

// NewManager creates a session manager.
func NewManager(eng *engine.Engine, cat *catalog.Catalog, logger *logging.Logger) *Manager {
	return &Manager{
		engine:  eng,
		catalog: cat,
		logger:  logger,
	}
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Open creates a session for a catalog demo. The session starts in
// StateInitial with the statically-configured source and no compile
// attempted.
func (m *Manager) Open(demoID string) (*Snapshot, error) {
	demo, ok := m.catalog.Get(demoID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDemoNotFound, demoID)
	}

	now := time.Now()
	s := &session{
		id:      id.NewSessionID(),
		demo:    demo,
		units:   demo.SourceUnits(),
		state:   StateInitial,
		created: now,
		updated: now,
	}
	m.sessions.Store(string(s.id), s)

	if m.metrics != nil {
		m.metrics.RecordSessionOpened()
	}
	m.logger.Info("Demo session opened",
		zap.String("session", string(s.id)),
		zap.String("demo", demoID),
	)

	return s.snapshot(), nil
}

// Get returns a session snapshot.
func (m *Manager) Get(sessionID string) (*Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Close removes a session. Returns false when the session is unknown.
func (m *Manager) Close(sessionID string) bool {
	if _, ok := m.sessions.LoadAndDelete(sessionID); !ok {
		return false
	}
	if m.metrics != nil {
		m.metrics.RecordSessionClosed()
	}
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	count := 0
	m.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// UpdateSource replaces one unit's buffer. It only marks the session
// dirty; compile state is untouched until the next Run.
func (m *Manager) UpdateSource(sessionID, unitName, content string) (*Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyEdit(UnitEdit{Name: unitName, Content: content}); err != nil {
		return nil, err
	}
	s.dirty = true
	s.updated = time.Now()
	return s.snapshotLocked(), nil
}

// Source returns the verbatim buffers; the copy-source surface serves
// exactly these.
func (m *Manager) Source(sessionID string) ([]engine.SourceUnit, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.SourceUnit(nil), s.units...), nil
}

// Run is the explicit compile trigger. Optional edits are applied to
// the buffers first, then the whole pipeline runs synchronously and
// the result replaces the session's displayed state atomically.
func (m *Manager) Run(ctx context.Context, sessionID string, edits []UnitEdit) (*Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, edit := range edits {
		if err := s.applyEdit(edit); err != nil {
			return nil, err
		}
	}

	var timer *monitoring.Timer
	if m.metrics != nil {
		timer = monitoring.NewCompileTimer(m.metrics, s.demo.ID)
	}

	var result engine.CompileResult
	if s.demo.Variant == catalog.VariantSingle {
		result = m.engine.CompileSource(ctx, s.units[0].Content, s.fallbck)
	} else {
		result = m.engine.Compile(ctx, s.units, s.demo.EntryName(), s.fallbck)
	}

	if result.OK() {
		s.state = StateCompiled
		s.fallbck = engine.Fallback{
			Instance:    result.Instance,
			InitialData: result.InitialData,
		}
		if timer != nil {
			timer.Stop("success")
		}
	} else {
		s.state = StateCompiledWithError
		if timer != nil {
			timer.Stop("error")
		}
		m.logger.Info("Demo compile failed",
			zap.String("request", string(id.RequestIDFromContext(ctx))),
			zap.String("session", sessionID),
			zap.String("demo", s.demo.ID),
			zap.String("error", result.Error),
		)
	}

	s.result = result
	s.dirty = false
	s.updated = time.Now()
	return s.snapshotLocked(), nil
}

func (m *Manager) lookup(sessionID string) (*session, error) {
	val, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return val.(*session), nil
}

// applyEdit replaces a unit buffer in place. Caller holds s.mu.
func (s *session) applyEdit(edit UnitEdit) error {
	for i := range s.units {
		if s.units[i].Name != edit.Name {
			continue
		}
		if s.units[i].ReadOnly {
			return fmt.Errorf("%w: %s", ErrUnitReadOnly, edit.Name)
		}
		s.units[i].Content = edit.Content
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnitNotFound, edit.Name)
}

func (s *session) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked builds the external view. Caller holds s.mu.
func (s *session) snapshotLocked() *Snapshot {
	return &Snapshot{
		ID:        string(s.id),
		DemoID:    s.demo.ID,
		Variant:   s.demo.Variant,
		State:     s.state,
		Dirty:     s.dirty,
		Units:     append([]engine.SourceUnit(nil), s.units...),
		Result:    s.result,
		CreatedAt: s.created,
		UpdatedAt: s.updated,
	}
}
