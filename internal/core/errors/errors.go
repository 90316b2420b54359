package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported     ErrorCode = "NOT_SUPPORTED"
	CodeParseFailed      ErrorCode = "PARSE_FAILED"
	CodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"
	CodeWorkerFailed     ErrorCode = "WORKER_FAILED"
	CodeStorageFailed    ErrorCode = "STORAGE_FAILED"
)

// DomainError carries a stable code plus structured context for logging.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLanguage  = "language"
	CtxSymbol    = "symbol"
	CtxPass      = "pass"
	CtxLine      = "line"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " {" + strings.Join(parts, " ") + "}"
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// LogAttrs flattens the error into slog key/value pairs.
func (e *DomainError) LogAttrs() []any {
	attrs := []any{"code", string(e.Code)}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, e.Context[k])
	}
	return attrs
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// FromPanic converts a recovered panic value into a DomainError.
func FromPanic(code ErrorCode, v interface{}) *DomainError {
	if err, ok := v.(error); ok {
		return &DomainError{Code: code, Message: "recovered panic", Err: err}
	}
	return &DomainError{Code: code, Message: fmt.Sprintf("recovered panic: %v", v)}
}

// AddContext attaches a key to err, wrapping non-domain errors as internal.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// As is errors.As for callers that import this package under its own name.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is for callers that import this package under its own name.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
