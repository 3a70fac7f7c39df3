package zeno

import (
	"fmt"
	"strings"

	"github.com/meigma/zeno/internal/zenotype"
)

// FindArticle searches for the article with the given namespace and title.
//
// If found, it returns the article index and true. Otherwise it returns the
// insertion point: the index of the first article whose key is greater than
// (ns, title), or Len() if there is none. A miss is not an error.
//
// The whole search runs under a single acquisition of the archive lock, so
// it observes a consistent store even while other lookups are waiting.
func (f *File) FindArticle(ns byte, title string, mode CompareMode) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findLocked(ns, title, mode)
}

// Lookup returns the article with the given namespace and title.
// ok is false, with a zero Article, when there is no such article.
func (f *File) Lookup(ns byte, title string, mode CompareMode) (Article, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, found, err := f.findLocked(ns, title, mode)
	if err != nil {
		return Article{}, false, err
	}
	if !found {
		f.log().Debug("article not found", "namespace", string(ns), "title", title)
		return Article{}, false, nil
	}

	d, err := f.direntLocked(idx)
	if err != nil {
		return Article{}, false, err
	}
	f.log().Info("article found",
		"namespace", string(ns),
		"title", title,
		"size", d.Size(),
		"mime_type", d.MimeType().String(),
	)
	return Article{file: f, index: idx, dirent: d}, true, nil
}

// findLocked performs the open-interval binary search over [0, Len()).
//
// The loop leaves the lower bound l unchecked, so the candidate at l is
// compared explicitly after the loop.
func (f *File) findLocked(ns byte, title string, mode CompareMode) (int, bool, error) {
	f.log().Debug("find article", "namespace", string(ns), "title", title, "mode", mode.String())

	namespaces, err := f.namespacesLocked()
	if err != nil {
		return 0, false, err
	}
	if strings.IndexByte(namespaces, ns) < 0 {
		f.log().Debug("namespace not found", "namespace", string(ns))
		begin, err := f.namespaceBeginLocked(ns)
		return begin, false, err
	}

	l, u := 0, len(f.offsets)
	iterations := 0
	for u-l > 1 {
		iterations++
		p := l + (u-l)/2
		d, err := f.direntLocked(p)
		if err != nil {
			return 0, false, err
		}
		switch c := f.compareLocked(ns, title, d, mode); {
		case c < 0:
			u = p
		case c > 0:
			l = p
		default:
			f.log().Debug("article found", "index", p, "iterations", iterations)
			return p, true, nil
		}
	}

	d, err := f.direntLocked(l)
	if err != nil {
		return 0, false, err
	}
	c := f.compareLocked(ns, title, d, mode)
	if c == 0 {
		f.log().Debug("article found", "index", l, "iterations", iterations)
		return l, true, nil
	}

	f.log().Debug("article not found", "candidate", d.Title(), "iterations", iterations)
	if c < 0 {
		return l, false, nil
	}
	return u, false, nil
}

// NamespaceBegin returns the index of the first article in namespace ns.
// If ns is absent it returns the index where the namespace would start.
func (f *File) NamespaceBegin(ns byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.namespaceBeginLocked(ns)
}

// NamespaceEnd returns the index one past the last article in namespace ns.
// If ns is absent it returns the same index as [File.NamespaceBegin].
func (f *File) NamespaceEnd(ns byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.namespaceEndLocked(ns)
}

// Namespaces returns the distinct namespaces of the archive in ascending order.
//
// The set is computed on first use and cached for the lifetime of the File.
func (f *File) Namespaces() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.namespacesLocked()
}

func (f *File) namespaceBeginLocked(ns byte) (int, error) {
	n := len(f.offsets)
	if n == 0 {
		return 0, nil
	}

	first, err := f.direntLocked(0)
	if err != nil {
		return 0, err
	}

	lower, upper := 0, n
	for upper-lower > 1 {
		m := lower + (upper-lower)/2
		d, err := f.direntLocked(m)
		if err != nil {
			return 0, err
		}
		if d.Namespace() >= ns {
			upper = m
		} else {
			lower = m
		}
	}
	if first.Namespace() < ns {
		return upper, nil
	}
	return lower, nil
}

func (f *File) namespaceEndLocked(ns byte) (int, error) {
	n := len(f.offsets)
	if n == 0 {
		return 0, nil
	}

	lower, upper := 0, n
	for upper-lower > 1 {
		m := lower + (upper-lower)/2
		d, err := f.direntLocked(m)
		if err != nil {
			return 0, err
		}
		if d.Namespace() > ns {
			upper = m
		} else {
			lower = m
		}
	}

	// The entry at lower is only unchecked when lower never moved.
	if lower == 0 {
		first, err := f.direntLocked(0)
		if err != nil {
			return 0, err
		}
		if first.Namespace() > ns {
			return 0, nil
		}
	}
	return upper, nil
}

func (f *File) namespacesLocked() (string, error) {
	if f.namespacesSet {
		return f.namespaces, nil
	}

	n := len(f.offsets)
	var b strings.Builder
	if n > 0 {
		d, err := f.direntLocked(0)
		if err != nil {
			return "", err
		}
		b.WriteByte(d.Namespace())
		pos := 0
		for {
			idx, err := f.namespaceEndLocked(d.Namespace())
			if err != nil {
				return "", err
			}
			if idx >= n {
				break
			}
			// Unsorted archives could otherwise revisit a run forever.
			if idx <= pos {
				return "", zenotype.NewFormatError(fmt.Sprintf("namespace run at %d is out of order", idx))
			}
			pos = idx
			if d, err = f.direntLocked(idx); err != nil {
				return "", err
			}
			b.WriteByte(d.Namespace())
		}
	}

	f.namespaces = b.String()
	f.namespacesSet = true
	f.log().Debug("namespaces discovered", "namespaces", f.namespaces)
	return f.namespaces, nil
}
