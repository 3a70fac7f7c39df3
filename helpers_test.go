package zeno

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/zeno/internal/testutil"
)

// exampleEntries is the four-article archive A:[bat cat dog] B:[eel].
func exampleEntries() []testutil.TestEntry {
	return []testutil.TestEntry{
		{Namespace: 'A', Title: "bat", Content: []byte("bat content")},
		{Namespace: 'A', Title: "cat", Content: []byte("cat content")},
		{Namespace: 'A', Title: "dog", Content: []byte("dog content")},
		{Namespace: 'B', Title: "eel", Content: []byte("eel content")},
	}
}

// generatedEntries returns perNS articles in each namespace of namespaces.
func generatedEntries(namespaces string, perNS int) []testutil.TestEntry {
	entries := make([]testutil.TestEntry, 0, len(namespaces)*perNS)
	for i := range len(namespaces) {
		ns := namespaces[i]
		for j := range perNS {
			title := fmt.Sprintf("title%03d", j*2)
			entries = append(entries, testutil.TestEntry{
				Namespace: ns,
				Title:     title,
				Content:   []byte(fmt.Sprintf("%c/%s", ns, title)),
			})
		}
	}
	return entries
}

func newTestFile(tb testing.TB, entries []testutil.TestEntry, opts ...Option) (*File, *testutil.MockStore, *testutil.Archive) {
	tb.Helper()
	return newTestFileFrom(tb, testutil.Build(tb, entries), opts...)
}

func newTestFileFrom(tb testing.TB, archive *testutil.Archive, opts ...Option) (*File, *testutil.MockStore, *testutil.Archive) {
	tb.Helper()
	store := testutil.NewMockStore(archive.Bytes)
	f, err := New(store, opts...)
	require.NoError(tb, err)
	return f, store, archive
}

// keyLess orders entries the way the archive is sorted.
func keyLess(aNS byte, aTitle string, bNS byte, bTitle string) bool {
	if aNS != bNS {
		return aNS < bNS
	}
	return aTitle < bTitle
}

// insertionPoint returns the number of entries whose key is below (ns, title).
func insertionPoint(entries []testutil.TestEntry, ns byte, title string) int {
	n := 0
	for _, e := range entries {
		if keyLess(e.Namespace, e.Title, ns, title) {
			n++
		}
	}
	return n
}
