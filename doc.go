// Package zeno provides read-only access to zeno archives: single files that
// bundle many small articles with an appended, sorted lookup index.
//
// An archive consists of:
//   - A fixed header with the article count and the positions of the index tables
//   - An index-pointer table mapping article indices to directory entries
//   - Directory entries sorted by (namespace, title), enabling O(log n) lookups
//   - A payload area holding each article's (optionally compressed) content
//
// A [File] serializes all access to its underlying byte store, so a single
// File may be shared between goroutines.
//
// # Quick Start
//
//	f, err := zeno.Open("wiki.zeno")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	article, ok, err := f.Lookup('A', "Berlin", zeno.CompareExact)
//	if err != nil || !ok {
//	    return err
//	}
//	content, err := article.Data()
//
// # Caching
//
// Decoded article content can be cached across calls and processes:
//
//	c, err := disk.New("/var/cache/zeno")
//	if err != nil {
//	    return err
//	}
//	f, err := zeno.Open("wiki.zeno", zeno.WithCache(c))
package zeno
