package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents an unusable or off-target tab URL
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeInjection represents a failure running the extraction in the page frames
	ErrorTypeInjection ErrorType = "injection"
	// ErrorTypeEmptyResult represents a run where no frame produced usable markup
	ErrorTypeEmptyResult ErrorType = "empty_result"
	// ErrorTypeExtraction represents a failure inside the DOM scraping pass
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SessionError represents an error raised during one extraction session
type SessionError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *SessionError) Unwrap() error {
	return e.Err
}

// New creates a new SessionError
func New(errType ErrorType, source, message string, err error) *SessionError {
	return &SessionError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation-scope error
func NewNavigation(source, message string) *SessionError {
	return New(ErrorTypeNavigation, source, message, nil)
}

// NewInjection creates a new injection-platform error
func NewInjection(source, message string, err error) *SessionError {
	return New(ErrorTypeInjection, source, message, err)
}

// NewEmptyResult creates a new empty-result error
func NewEmptyResult(source string) *SessionError {
	return New(ErrorTypeEmptyResult, source, "no frame produced usable markup", nil)
}

// NewExtraction creates a new extraction-internal error
func NewExtraction(source, message string, err error) *SessionError {
	return New(ErrorTypeExtraction, source, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *SessionError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *SessionError {
	message := fmt.Sprintf("blocked for %v after rate limiting", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *SessionError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *SessionError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SessionError {
	return New(ErrorTypeConfiguration, "", message, err)
}
