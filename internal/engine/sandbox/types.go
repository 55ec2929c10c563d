package sandbox

import (
	"time"

	"github.com/dop251/goja"
)

// Config defines sandbox configuration
type Config struct {
	Timeout       time.Duration // Per-call execution timeout
	MaxCallStack  int           // Maximum JS call stack depth
	EnableConsole bool          // Allow console.log/warn/error
}

// LogEntry represents console output captured from a script
type LogEntry struct {
	Level   string    `json:"level"` // log, warn, error, info
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Handles holds the constructor values captured from one execution.
// Companion is undefined when discovery found no companion class.
type Handles struct {
	Primary   goja.Value
	Companion goja.Value
}

// Default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		MaxCallStack:  1024,
		EnableConsole: true,
	}
}
