package dirent_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zeno/internal/dirent"
	"github.com/meigma/zeno/internal/testutil"
	"github.com/meigma/zeno/internal/zenotype"
)

func TestRead(t *testing.T) {
	t.Parallel()

	raw := testutil.EncodeDirent(testutil.TestEntry{
		Namespace:   'A',
		Title:       "Zürich",
		Mime:        uint16(zenotype.MimeTextPlain),
		Content:     []byte("hello"),
		Compression: testutil.CompressionZip,
		Extra:       []byte{1, 2, 3},
	}, 100, 42)

	d, err := dirent.Read(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, byte('A'), d.Namespace())
	assert.Equal(t, "Zürich", d.Title())
	assert.Equal(t, zenotype.MimeTextPlain, d.MimeType())
	assert.Equal(t, "text/plain", d.MimeType().String())
	assert.False(t, d.IsRedirect())
	assert.Equal(t, uint32(100), d.Offset())
	assert.Equal(t, uint32(42), d.Size())
	assert.Equal(t, uint32(5), d.OriginalSize())
	assert.Equal(t, zenotype.CompressionZip, d.Compression())
	assert.Equal(t, []byte{1, 2, 3}, d.Extra())
	assert.Equal(t, 3, d.ExtraLen())
	assert.Equal(t, len(raw), d.Len())

	_, ok := d.RedirectIndex()
	assert.False(t, ok)
}

func TestReadRedirect(t *testing.T) {
	t.Parallel()

	raw := testutil.EncodeDirent(testutil.TestEntry{
		Namespace: 'A',
		Title:     "alias",
		Redirect:  true,
		Target:    7,
	}, 0, 0)

	d, err := dirent.Read(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.True(t, d.IsRedirect())
	idx, ok := d.RedirectIndex()
	require.True(t, ok)
	assert.Equal(t, uint32(7), idx)
	assert.Equal(t, "redirect", d.MimeType().String())
}

func TestExtraIsCopied(t *testing.T) {
	t.Parallel()

	raw := testutil.EncodeDirent(testutil.TestEntry{Namespace: 'A', Title: "x", Extra: []byte{9}}, 0, 0)
	d, err := dirent.Read(bytes.NewReader(raw))
	require.NoError(t, err)

	extra := d.Extra()
	extra[0] = 0
	assert.Equal(t, []byte{9}, d.Extra())
}

func TestReadTruncated(t *testing.T) {
	t.Parallel()

	raw := testutil.EncodeDirent(testutil.TestEntry{
		Namespace: 'A',
		Title:     "title",
		Extra:     []byte("extra"),
	}, 0, 0)

	tests := []struct {
		name    string
		cut     int
		message string
	}{
		{"empty", 0, "header"},
		{"short header", dirent.HeaderSize - 1, "header"},
		{"short title", dirent.HeaderSize + 2, "title"},
		{"short extra", len(raw) - 1, "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := dirent.Read(bytes.NewReader(raw[:tt.cut]))
			require.ErrorIs(t, err, zenotype.ErrFormat)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestReadAt(t *testing.T) {
	t.Parallel()

	archive := testutil.Build(t, []testutil.TestEntry{
		{Namespace: 'B', Title: "eel"},
		{Namespace: 'A', Title: "cat"},
		{Namespace: 'A', Title: "bat"},
	})
	store := testutil.NewMockStore(archive.Bytes)

	want := []string{"bat", "cat", "eel"}
	for i, off := range archive.Offsets {
		d, err := dirent.ReadAt(store, off)
		require.NoError(t, err)
		assert.Equal(t, want[i], d.Title())
	}
}

func TestMimeTypeUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/octet-stream", zenotype.MimeType(500).String())
	assert.Equal(t, "text/html", zenotype.MimeTextHTML.String())
}
