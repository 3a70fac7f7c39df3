package zeno

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/meigma/zeno/internal/testutil"
)

func TestFindArticleExample(t *testing.T) {
	t.Parallel()

	f, _, _ := newTestFile(t, exampleEntries())

	idx, found, err := f.FindArticle('A', "cat", CompareExact)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	idx, found, err = f.FindArticle('A', "cow", CompareExact)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, idx)

	end, err := f.NamespaceEnd('A')
	require.NoError(t, err)
	assert.Equal(t, 3, end)

	namespaces, err := f.Namespaces()
	require.NoError(t, err)
	assert.Equal(t, "AB", namespaces)
}

func TestFindArticleEveryEntry(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 3, 7, 64} {
		archive := testutil.Build(t, generatedEntries("ABMZ", size))
		f, _, _ := newTestFileFrom(t, archive)

		for _, mode := range []CompareMode{CompareExact, CompareCollated} {
			for want, e := range archive.Entries {
				idx, found, err := f.FindArticle(e.Namespace, e.Title, mode)
				require.NoError(t, err)
				require.Truef(t, found, "size %d mode %s: %c/%s not found", size, mode, e.Namespace, e.Title)
				require.Equal(t, want, idx)
			}
		}
	}
}

func TestFindArticleFirstEntry(t *testing.T) {
	t.Parallel()

	// The first entry is only reachable through the post-loop comparison.
	for _, size := range []int{1, 2, 5, 16} {
		f, _, archive := newTestFile(t, generatedEntries("A", size))
		first := archive.Entries[0]

		idx, found, err := f.FindArticle(first.Namespace, first.Title, CompareExact)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 0, idx)
	}
}

func TestFindArticleInsertionPoint(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 3, 8, 33} {
		entries := generatedEntries("BDF", size)
		f, _, archive := newTestFile(t, entries)

		var keys []testutil.TestEntry
		for _, ns := range []byte("ABCDEFG") {
			keys = append(keys,
				testutil.TestEntry{Namespace: ns, Title: ""},
				testutil.TestEntry{Namespace: ns, Title: "a"},
				testutil.TestEntry{Namespace: ns, Title: "title0005"},
				testutil.TestEntry{Namespace: ns, Title: "title001"},
				testutil.TestEntry{Namespace: ns, Title: "zzz"},
			)
		}

		for _, key := range keys {
			want := insertionPoint(archive.Entries, key.Namespace, key.Title)
			idx, found, err := f.FindArticle(key.Namespace, key.Title, CompareExact)
			require.NoError(t, err)
			require.Falsef(t, found, "%c/%s unexpectedly found", key.Namespace, key.Title)
			require.Equalf(t, want, idx, "size %d key %c/%q", size, key.Namespace, key.Title)
		}
	}
}

func TestFindArticleEmptyArchive(t *testing.T) {
	t.Parallel()

	f, store, _ := newTestFile(t, nil)
	before := store.Reads()

	idx, found, err := f.FindArticle('A', "anything", CompareExact)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, idx)
	assert.Equal(t, before, store.Reads())
}

func TestFindArticleCompareModes(t *testing.T) {
	t.Parallel()

	// Collation order, not byte order: "apple" < "Banana" < "cherry".
	archive := testutil.Build(t, []testutil.TestEntry{
		{Namespace: 'A', Title: "apple"},
		{Namespace: 'A', Title: "Banana"},
		{Namespace: 'A', Title: "cherry"},
	}, testutil.Unsorted())
	f, _, _ := newTestFileFrom(t, archive, WithCollation(language.English))

	for i, title := range []string{"apple", "Banana", "cherry"} {
		idx, found, err := f.FindArticle('A', title, CompareCollated)
		require.NoError(t, err)
		assert.True(t, found, title)
		assert.Equal(t, i, idx)
	}

	// Byte-wise, "apple" sorts after "Banana", so the search misses it.
	idx, found, err := f.FindArticle('A', "apple", CompareExact)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, idx)
}

func TestNamespaceBoundsPartition(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 5, 13} {
		f, _, archive := newTestFile(t, generatedEntries("BDEK", size))

		for _, ns := range []byte("BDEK") {
			begin, err := f.NamespaceBegin(ns)
			require.NoError(t, err)
			end, err := f.NamespaceEnd(ns)
			require.NoError(t, err)

			for i, e := range archive.Entries {
				inRun := i >= begin && i < end
				assert.Equalf(t, e.Namespace == ns, inRun, "size %d ns %c index %d", size, ns, i)
			}
		}
	}
}

func TestNamespaceBoundsAbsent(t *testing.T) {
	t.Parallel()

	f, _, archive := newTestFile(t, generatedEntries("BDF", 4))

	for _, ns := range []byte("ACEG") {
		want := insertionPoint(archive.Entries, ns, "")
		begin, err := f.NamespaceBegin(ns)
		require.NoError(t, err)
		end, err := f.NamespaceEnd(ns)
		require.NoError(t, err)
		assert.Equalf(t, want, begin, "begin %c", ns)
		assert.Equalf(t, want, end, "end %c", ns)
	}
}

func TestNamespaceBoundsEmpty(t *testing.T) {
	t.Parallel()

	f, _, _ := newTestFile(t, nil)
	begin, err := f.NamespaceBegin('A')
	require.NoError(t, err)
	end, err := f.NamespaceEnd('A')
	require.NoError(t, err)
	assert.Equal(t, 0, begin)
	assert.Equal(t, 0, end)

	namespaces, err := f.Namespaces()
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}

func TestNamespacesCached(t *testing.T) {
	t.Parallel()

	f, store, _ := newTestFile(t, generatedEntries("-ACMXa", 9))

	first, err := f.Namespaces()
	require.NoError(t, err)
	assert.Equal(t, "-ACMXa", first)

	reads := store.Reads()
	second, err := f.Namespaces()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, reads, store.Reads())
}

func TestNamespacesUnsortedArchive(t *testing.T) {
	t.Parallel()

	archive := testutil.Build(t, []testutil.TestEntry{
		{Namespace: 'B', Title: "b"},
		{Namespace: 'A', Title: "a"},
		{Namespace: 'B', Title: "c"},
		{Namespace: 'A', Title: "d"},
	}, testutil.Unsorted())
	f, _, _ := newTestFileFrom(t, archive)

	// The result is unspecified, but discovery must terminate.
	_, _ = f.Namespaces()
}

func TestLookup(t *testing.T) {
	t.Parallel()

	f, _, _ := newTestFile(t, exampleEntries())

	a, ok, err := f.Lookup('B', "eel", CompareExact)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.Valid())
	assert.Equal(t, 3, a.Index())
	assert.Equal(t, byte('B'), a.Namespace())
	assert.Equal(t, "eel", a.Title())
	assert.Equal(t, uint32(len("eel content")), a.Size())

	a, ok, err = f.Lookup('B', "emu", CompareExact)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, a.Valid())

	a, ok, err = f.Lookup('Q', "eel", CompareExact)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, a.Valid())
}

func TestLookupLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	f, _, _ := newTestFile(t, exampleEntries(), WithLogger(logger))

	_, ok, err := f.Lookup('A', "dog", CompareExact)
	require.NoError(t, err)
	require.True(t, ok)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "article found", record["msg"])
	assert.Equal(t, "dog", record["title"])
	assert.Equal(t, "text/html", record["mime_type"])
}
