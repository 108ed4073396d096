// Package errors provides structured error handling for dirsearch.
//
// Every SearchError carries a code of the form ERR_NNN_NAME. The hundreds
// digit groups codes: 1 for configuration, 2 for file system, 4 for bad
// input and 5 for internal state. Category, severity and retryability are
// looked up from the code table below.
package errors

// Category groups error codes.
type Category string

// Categories.
const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells callers how loudly to report an error.
type Severity string

// Severities, from quietest to loudest.
const (
	// SeverityInfo is expected churn, such as a file deleted before it was read.
	SeverityInfo Severity = "INFO"
	// SeverityWarning is a transient condition that is retried.
	SeverityWarning Severity = "WARNING"
	// SeverityError fails the operation at hand.
	SeverityError Severity = "ERROR"
)

// Error codes.
const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeFileRead       = "ERR_206_FILE_READ"
	ErrCodeFileLocked     = "ERR_207_FILE_LOCKED"
	ErrCodeWatchFailed    = "ERR_208_WATCH_FAILED"

	ErrCodeInvalidArgument = "ERR_401_INVALID_ARGUMENT"
	ErrCodeInvalidQuery    = "ERR_403_INVALID_QUERY"
	ErrCodeInvalidPath     = "ERR_406_INVALID_PATH"

	ErrCodeInternal       = "ERR_501_INTERNAL"
	ErrCodeAlreadyStarted = "ERR_507_ALREADY_STARTED"
	ErrCodeClosed         = "ERR_508_CLOSED"
)

type codeInfo struct {
	category  Category
	severity  Severity
	retryable bool
}

var codeTable = map[string]codeInfo{
	ErrCodeConfigNotFound: {CategoryConfig, SeverityError, false},
	ErrCodeConfigInvalid:  {CategoryConfig, SeverityError, false},

	ErrCodeFileNotFound:   {CategoryIO, SeverityInfo, false},
	ErrCodeFilePermission: {CategoryIO, SeverityError, false},
	ErrCodeFileRead:       {CategoryIO, SeverityError, false},
	ErrCodeFileLocked:     {CategoryIO, SeverityWarning, true},
	ErrCodeWatchFailed:    {CategoryIO, SeverityError, false},

	ErrCodeInvalidArgument: {CategoryValidation, SeverityError, false},
	ErrCodeInvalidQuery:    {CategoryValidation, SeverityError, false},
	ErrCodeInvalidPath:     {CategoryValidation, SeverityError, false},

	ErrCodeInternal:       {CategoryInternal, SeverityError, false},
	ErrCodeAlreadyStarted: {CategoryInternal, SeverityError, false},
	ErrCodeClosed:         {CategoryInternal, SeverityError, false},
}

// lookupCode returns the table entry for code. Unknown codes are internal
// errors.
func lookupCode(code string) codeInfo {
	if info, ok := codeTable[code]; ok {
		return info
	}
	return codeInfo{CategoryInternal, SeverityError, false}
}
