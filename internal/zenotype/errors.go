// Package zenotype defines shared types used across the zeno package and its
// internal packages. This avoids circular imports between zeno and the
// decoders under internal/.
package zenotype

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when the archive bytes do not match the expected layout.
	ErrFormat = errors.New("zeno: format error")

	// ErrOutOfRange is returned when an article index is not below the article count.
	ErrOutOfRange = errors.New("zeno: article index out of range")

	// ErrNotRedirect is returned when redirect resolution is attempted on a plain article.
	ErrNotRedirect = errors.New("zeno: article is not a redirect")

	// ErrUnsupportedCompression is returned for payloads stored with an unknown algorithm.
	ErrUnsupportedCompression = errors.New("zeno: unsupported compression")

	// ErrDecompression is returned when decompression fails.
	ErrDecompression = errors.New("zeno: decompression failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("zeno: size overflow")

	// ErrInvalidArticle is returned when content is requested from a zero Article.
	ErrInvalidArticle = errors.New("zeno: invalid article")
)

// FormatError describes malformed or truncated archive data.
//
// Field names the header or entry field that failed validation. Got and Want
// are only meaningful when HasValue is set.
type FormatError struct {
	Msg      string
	Field    string
	Got      uint64
	Want     uint64
	HasValue bool
	Err      error
}

// NewFormatError returns a FormatError with a plain message.
func NewFormatError(msg string) *FormatError {
	return &FormatError{Msg: msg}
}

// NewValueError returns a FormatError for a field holding an unexpected value.
func NewValueError(field string, got, want uint64) *FormatError {
	return &FormatError{
		Msg:      "invalid " + field,
		Field:    field,
		Got:      got,
		Want:     want,
		HasValue: true,
	}
}

// WrapFormatError returns a FormatError wrapping a lower-level read error.
func WrapFormatError(msg string, err error) *FormatError {
	return &FormatError{Msg: msg, Err: err}
}

func (e *FormatError) Error() string {
	s := "zeno: format error: " + e.Msg
	if e.HasValue {
		s += fmt.Sprintf(" %d found - %d expected", e.Got, e.Want)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Unwrap returns the underlying read error, if any.
func (e *FormatError) Unwrap() error {
	return e.Err
}
