package zeno

import (
	"log/slog"

	"golang.org/x/text/language"

	"github.com/meigma/zeno/cache"
)

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for diagnostics.
// By default, log output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(f *File) {
		f.logger = logger
	}
}

// WithCollation sets the locale used by [CompareCollated].
// Defaults to the root locale (language.Und).
func WithCollation(tag language.Tag) Option {
	return func(f *File) {
		f.collation = tag
	}
}

// WithCache enables caching of decoded article content.
//
// Concurrent requests for the same article are deduplicated whether or not a
// cache is configured.
func WithCache(c cache.Cache) Option {
	return func(f *File) {
		f.cache = c
	}
}

// WithMaxArticleSize limits the stored and uncompressed size of a single
// article payload. Set limit to 0 to disable the limit.
func WithMaxArticleSize(limit uint64) Option {
	return func(f *File) {
		f.maxArticleSize = limit
	}
}
