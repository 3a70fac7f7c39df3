package zeno

import "github.com/meigma/zeno/internal/zenotype"

// FormatError describes malformed or truncated archive data.
// It matches [ErrFormat] with errors.Is.
type FormatError = zenotype.FormatError

// Sentinel errors re-exported from internal/zenotype.
var (
	// ErrFormat is returned when the archive bytes do not match the expected layout.
	ErrFormat = zenotype.ErrFormat

	// ErrOutOfRange is returned when an article index is not below the article count.
	ErrOutOfRange = zenotype.ErrOutOfRange

	// ErrNotRedirect is returned when redirect resolution is attempted on a plain article.
	ErrNotRedirect = zenotype.ErrNotRedirect

	// ErrUnsupportedCompression is returned for payloads stored with an unknown algorithm.
	ErrUnsupportedCompression = zenotype.ErrUnsupportedCompression

	// ErrDecompression is returned when decompression fails.
	ErrDecompression = zenotype.ErrDecompression

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = zenotype.ErrSizeOverflow

	// ErrInvalidArticle is returned when content is requested from a zero Article.
	ErrInvalidArticle = zenotype.ErrInvalidArticle
)
