// Package textfile classifies and reads searchable text files.
//
// IsText is a heuristic: it validates only the first SampleSize bytes as
// UTF-8. A file whose invalid bytes start after the sample is classified as
// text; Read then rejects it with ErrInvalidUTF8.
package textfile

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"

	mgerrors "github.com/XiaoConstantine/minigrep/pkg/errors"
)

// SampleSize is the number of leading bytes IsText inspects.
const SampleSize = 1024

// IsText reports whether path is a regular file whose first SampleSize bytes
// are valid UTF-8. Empty files are text. Anything that cannot be opened or
// read is not.
func IsText(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, SampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return validPrefix(buf[:n], n == SampleSize)
}

// validPrefix validates sample as UTF-8. When the sample was cut at
// SampleSize, an incomplete rune at the very end is not held against it.
func validPrefix(sample []byte, truncated bool) bool {
	if truncated {
		sample = trimPartialRune(sample)
	}
	return utf8.Valid(sample)
}

func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			return b
		}
	}
	return b
}

// Read returns the whole contents of path as a string. Failures classify
// with errors.Is as ErrNotFound, ErrInvalidUTF8 or ErrIO.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", mgerrors.NewFileError("read", path, err)
	}
	if !utf8.Valid(data) {
		return "", mgerrors.NewTypedFileError(mgerrors.ErrorTypeInvalidUTF8, "read", path, nil)
	}
	return string(data), nil
}
