package logger

import (
	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/sirupsen/logrus"
)

// ComponentLogger wraps logrus.Logger to provide consistent component logging
type ComponentLogger struct {
	*logrus.Logger
	component string
}

// New creates a new logrus logger with standard configuration
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	log.SetLevel(logrus.Level(cfg.App.LogLevel))
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:   cfg.App.Env != "production",
		FullTimestamp: true,
	})

	return log
}

// NewComponentLogger creates a logger with a component field.
// A nil log falls back to the logrus standard logger.
func NewComponentLogger(log *logrus.Logger, component string) *ComponentLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ComponentLogger{
		Logger:    log,
		component: component,
	}
}

// WithField adds a field to the log entry
func (c *ComponentLogger) WithField(key string, value interface{}) *logrus.Entry {
	return c.Logger.WithFields(logrus.Fields{
		"component": c.component,
		key:         value,
	})
}

// WithFields adds multiple fields to the log entry, always including component
func (c *ComponentLogger) WithFields(fields logrus.Fields) *logrus.Entry {
	merged := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	// Add component field if not already present
	if _, exists := merged["component"]; !exists {
		merged["component"] = c.component
	}
	return c.Logger.WithFields(merged)
}

// Component returns the component name attached to every entry
func (c *ComponentLogger) Component() string {
	return c.component
}

// WithError adds an error field to the log entry
func (c *ComponentLogger) WithError(err error) *logrus.Entry {
	return c.Logger.WithFields(logrus.Fields{
		"component": c.component,
		"error":     err,
	})
}
