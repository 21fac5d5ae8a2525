package helpers

import (
	"jmlee87/pricelens/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(component string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger provides logging functionality backed by the structured logger
type Logger struct{}

// NewLogger creates a new logger instance
func NewLogger() *Logger {
	return &Logger{}
}

// LogError logs an error with the originating component
func (l *Logger) LogError(component string, err error) {
	logger.LogError(component, err, "operation failed")
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}
