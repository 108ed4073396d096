package errors

import (
	stderrors "errors"
	"fmt"
)

// SearchError is the error type returned across dirsearch packages. Code
// identifies the failure; Category, Severity and Retryable follow from it.
type SearchError struct {
	Code       string
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string // path, field and similar context
	Cause      error
	Retryable  bool
	Suggestion string // shown as a hint by the CLI
}

// Sentinel errors. They compare by code, so errors.Is(err, ErrInvalidArgument)
// matches any SearchError carrying the same code regardless of message.
var (
	ErrInvalidArgument = New(ErrCodeInvalidArgument, "invalid argument", nil)
	ErrFileNotFound    = New(ErrCodeFileNotFound, "file not found", nil)
	ErrFileLocked      = New(ErrCodeFileLocked, "file is locked", nil)
	ErrAlreadyStarted  = New(ErrCodeAlreadyStarted, "already started", nil)
	ErrClosed          = New(ErrCodeClosed, "closed", nil)
)

func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a SearchError with the same code.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail records a key-value detail and returns e.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the hint shown to CLI users and returns e.
func (e *SearchError) WithSuggestion(suggestion string) *SearchError {
	e.Suggestion = suggestion
	return e
}

// New creates a SearchError. Category, severity and retryability come from
// the code table.
func New(code string, message string, cause error) *SearchError {
	info := lookupCode(code)
	return &SearchError{
		Code:      code,
		Message:   message,
		Category:  info.category,
		Severity:  info.severity,
		Cause:     cause,
		Retryable: info.retryable,
	}
}

// Wrap turns err into a SearchError with err's message. Wrap(code, nil) is nil.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidArgument reports a bad argument at a call site. It matches
// ErrInvalidArgument under errors.Is.
func InvalidArgument(message string) *SearchError {
	return New(ErrCodeInvalidArgument, message, nil)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SearchError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *SearchError {
	return New(ErrCodeFileRead, message, cause)
}

// LockedError reports a file held by another writer. Locked errors are retryable.
func LockedError(path string, cause error) *SearchError {
	return New(ErrCodeFileLocked, "file is locked: "+path, cause).WithDetail("path", path)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SearchError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable reports whether err wraps a retryable SearchError.
func IsRetryable(err error) bool {
	se, ok := As(err)
	return ok && se.Retryable
}

// GetCode returns the code of the SearchError in err's chain, or "".
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// GetCategory returns the category of the SearchError in err's chain, or "".
func GetCategory(err error) Category {
	if se, ok := As(err); ok {
		return se.Category
	}
	return ""
}

// As finds the first SearchError in err's chain.
func As(err error) (*SearchError, bool) {
	var se *SearchError
	if err == nil || !stderrors.As(err, &se) {
		return nil, false
	}
	return se, true
}
