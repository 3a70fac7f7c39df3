package zeno

import (
	"cmp"
	"strings"
)

// CompareMode selects how titles are ordered during lookup.
type CompareMode int

const (
	// CompareExact orders titles byte-wise. Archives are sorted this way.
	CompareExact CompareMode = iota

	// CompareCollated orders titles by locale collation (see [WithCollation]).
	CompareCollated
)

func (m CompareMode) String() string {
	switch m {
	case CompareExact:
		return "exact"
	case CompareCollated:
		return "collated"
	default:
		return "unknown"
	}
}

// compareLocked orders the key (ns, title) against d. Namespace is the
// primary key and is always compared byte-wise.
//
// The collator keeps internal buffers, so f.mu must be held.
func (f *File) compareLocked(ns byte, title string, d Dirent, mode CompareMode) int {
	if c := cmp.Compare(ns, d.Namespace()); c != 0 {
		return c
	}
	if mode == CompareCollated {
		return f.collator.CompareString(title, d.Title())
	}
	return strings.Compare(title, d.Title())
}
