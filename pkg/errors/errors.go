// Package errors defines the error taxonomy shared by the minigrep engine.
//
// Every failure the engine reports can be classified with the standard
// library's errors.Is against one of the sentinel values below, while the
// typed errors keep the path, operation and underlying cause for messages.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// ErrorType classifies an engine error.
type ErrorType string

const (
	ErrorTypeInvalidPattern ErrorType = "invalid_pattern"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeNotADirectory  ErrorType = "not_a_directory"
	ErrorTypeNotAFile       ErrorType = "not_a_file"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeInvalidUTF8    ErrorType = "invalid_utf8"
)

// Sentinel values for errors.Is.
var (
	ErrInvalidPattern = stderrors.New("invalid pattern")
	ErrNotFound       = stderrors.New("not found")
	ErrNotADirectory  = stderrors.New("not a directory")
	ErrNotAFile       = stderrors.New("not a file")
	ErrIO             = stderrors.New("i/o error")
	ErrInvalidUTF8    = stderrors.New("invalid UTF-8")
)

var sentinels = map[ErrorType]error{
	ErrorTypeInvalidPattern: ErrInvalidPattern,
	ErrorTypeNotFound:       ErrNotFound,
	ErrorTypeNotADirectory:  ErrNotADirectory,
	ErrorTypeNotAFile:       ErrNotAFile,
	ErrorTypeIO:             ErrIO,
	ErrorTypeInvalidUTF8:    ErrInvalidUTF8,
}

// PatternError is returned when a regular expression fails to compile.
type PatternError struct {
	Pattern    string
	Underlying error
}

// NewPatternError wraps a regex engine diagnostic.
func NewPatternError(pattern string, err error) *PatternError {
	return &PatternError{Pattern: pattern, Underlying: err}
}

// Error implements the error interface
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Underlying)
}

// Unwrap returns the engine diagnostic.
func (e *PatternError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is ErrInvalidPattern.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// FileError represents a failure tied to one filesystem path.
type FileError struct {
	Type       ErrorType
	Op         string
	Path       string
	Underlying error
}

// NewFileError classifies err and wraps it with the operation and path.
// Missing paths become ErrorTypeNotFound, everything else ErrorTypeIO.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeIO
	if stderrors.Is(err, fs.ErrNotExist) {
		errorType = ErrorTypeNotFound
	}
	return &FileError{Type: errorType, Op: op, Path: path, Underlying: err}
}

// NewTypedFileError builds a FileError with an explicit type.
func NewTypedFileError(errorType ErrorType, op, path string, err error) *FileError {
	return &FileError{Type: errorType, Op: op, Path: path, Underlying: err}
}

// Error implements the error interface
func (e *FileError) Error() string {
	if e.Underlying == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, sentinels[e.Type])
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel for the error's type.
func (e *FileError) Is(target error) bool {
	sentinel, ok := sentinels[e.Type]
	return ok && target == sentinel
}

// TypeOf returns the ErrorType of err, or "" when err is not an engine error.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var fe *FileError
	if stderrors.As(err, &fe) {
		return fe.Type
	}
	var pe *PatternError
	if stderrors.As(err, &pe) {
		return ErrorTypeInvalidPattern
	}
	for t, sentinel := range sentinels {
		if stderrors.Is(err, sentinel) {
			return t
		}
	}
	return ""
}
