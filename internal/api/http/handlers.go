package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formlab/playground/internal/catalog"
	"github.com/formlab/playground/internal/demo"
	"github.com/formlab/playground/internal/engine"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions *demo.Manager
	catalog  *catalog.Catalog
	engine   *engine.Engine
}

// NewHandlers creates a new handler set
func NewHandlers(sessions *demo.Manager, cat *catalog.Catalog, eng *engine.Engine) *Handlers {
	return &Handlers{
		sessions: sessions,
		catalog:  cat,
		engine:   eng,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Formlab Playground (Go)",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"demos":    h.catalog.Len(),
		"sessions": h.sessions.Count(),
		"sandbox":  h.engine.PoolStats(),
	})
}

// ListDemos lists all catalog demos
func (h *Handlers) ListDemos(c *gin.Context) {
	demos := h.catalog.List()

	c.JSON(http.StatusOK, gin.H{
		"demos": demos,
		"count": len(demos),
	})
}

// GetDemo returns one catalog demo definition
func (h *Handlers) GetDemo(c *gin.Context) {
	demoID := c.Param("id")

	d, ok := h.catalog.Get(demoID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "demo not found"})
		return
	}

	c.JSON(http.StatusOK, d)
}

// OpenDemo creates a new session for a catalog demo
func (h *Handlers) OpenDemo(c *gin.Context) {
	demoID := c.Param("id")

	snapshot, err := h.sessions.Open(demoID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": snapshot,
	})
}

// GetSession returns the current session snapshot
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	snapshot, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": snapshot,
	})
}

// RunSession applies optional edits and runs the compile pipeline
func (h *Handlers) RunSession(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		Edits []demo.UnitEdit `json:"edits"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	snapshot, err := h.sessions.Run(c.Request.Context(), sessionID, req.Edits)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": snapshot,
	})
}

// UpdateSource replaces one unit buffer without compiling
func (h *Handlers) UpdateSource(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		Name    string `json:"name" binding:"required"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.sessions.UpdateSource(sessionID, req.Name, req.Content)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": snapshot,
	})
}

// GetSource serves the verbatim source buffers for copy-to-clipboard
func (h *Handlers) GetSource(c *gin.Context) {
	sessionID := c.Param("id")

	units, err := h.sessions.Source(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units": units,
	})
}

// CloseSession removes a session
func (h *Handlers) CloseSession(c *gin.Context) {
	sessionID := c.Param("id")

	closed := h.sessions.Close(sessionID)
	if !closed {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
	})
}

// Compile runs the pipeline once without a session. Used by embedded
// snippets that have no run/edit loop.
func (h *Handlers) Compile(c *gin.Context) {
	var req struct {
		Source string              `json:"source"`
		Units  []engine.SourceUnit `json:"units"`
		Entry  string              `json:"entry"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var result engine.CompileResult
	switch {
	case req.Source != "":
		result = h.engine.CompileSource(c.Request.Context(), req.Source, engine.Fallback{})
	case len(req.Units) > 0:
		result = h.engine.Compile(c.Request.Context(), req.Units, req.Entry, engine.Fallback{})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source or units required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
	})
}

// statusFor maps manager errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, demo.ErrDemoNotFound),
		errors.Is(err, demo.ErrSessionNotFound),
		errors.Is(err, demo.ErrUnitNotFound):
		return http.StatusNotFound
	case errors.Is(err, demo.ErrUnitReadOnly):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
