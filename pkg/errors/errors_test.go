package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFileErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		sentinel error
	}{
		{
			name:     "missing path",
			err:      &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist},
			wantType: ErrorTypeNotFound,
			sentinel: ErrNotFound,
		},
		{
			name:     "permission denied",
			err:      &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission},
			wantType: ErrorTypeIO,
			sentinel: ErrIO,
		},
		{
			name:     "generic failure",
			err:      stderrors.New("disk on fire"),
			wantType: ErrorTypeIO,
			sentinel: ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := NewFileError("read", "x", tt.err)
			assert.Equal(t, tt.wantType, fe.Type)
			assert.ErrorIs(t, fe, tt.sentinel)
			assert.ErrorIs(t, fe, tt.err)
			assert.Equal(t, tt.wantType, TypeOf(fmt.Errorf("wrapped: %w", fe)))
		})
	}
}

func TestFileErrorDoesNotMatchOtherSentinels(t *testing.T) {
	fe := NewTypedFileError(ErrorTypeNotAFile, "search", "dir", nil)
	assert.ErrorIs(t, fe, ErrNotAFile)
	assert.NotErrorIs(t, fe, ErrNotADirectory)
	assert.NotErrorIs(t, fe, ErrIO)
	assert.Equal(t, "search dir: not a file", fe.Error())
}

func TestPatternError(t *testing.T) {
	cause := stderrors.New("missing closing ]")
	err := NewPatternError("[", cause)

	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "missing closing ]")
	assert.Contains(t, err.Error(), `"["`)
	assert.Equal(t, ErrorTypeInvalidPattern, TypeOf(err))
}

func TestTypeOfUnknown(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(nil))
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("other")))
	assert.Equal(t, ErrorTypeInvalidUTF8, TypeOf(fmt.Errorf("x: %w", ErrInvalidUTF8)))
}
