package sim

import (
	"log"
)

// A LogHook is a hook that writes what it observes to a logger.
type LogHook interface {
	Hook
}

// LogHookBase provides the logger shared by all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase. It panics if the logger is nil.
func NewLogHookBase(logger *log.Logger) LogHookBase {
	if logger == nil {
		panic("log hook requires a logger")
	}

	return LogHookBase{Logger: logger}
}
