// Package debug provides conditional debug logging.
//
// Logging is enabled by setting the COURSETREE_DEBUG environment variable.
// When enabled, messages are written to stderr with timestamps. When
// disabled (default), all functions are no-ops.
package debug

import (
	"log"
	"os"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("COURSETREE_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[coursetree] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control (used by tests).
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[coursetree] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a printf-style debug message if logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}
