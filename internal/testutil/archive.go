// Package testutil builds in-memory archives and provides test doubles for
// the byte store and content cache.
package testutil

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz"
)

// Layout constants mirrored from the archive format.
const (
	HeaderSize   = 0x3c
	DirentSize   = 26
	Magic        = 1439867043
	Version      = 3
	MimeRedirect = 0xffff

	CompressionNone  = 1
	CompressionZip   = 2
	CompressionBzip2 = 3
	CompressionLzma  = 4
)

// TestEntry holds data for building one archive article.
type TestEntry struct {
	Namespace byte
	Title     string
	Mime      uint16
	Content   []byte

	// Compression defaults to CompressionNone when zero.
	Compression uint8

	// Stored overrides the encoded payload bytes when non-nil.
	Stored []byte

	// OriginalSize overrides the recorded uncompressed size when non-zero.
	OriginalSize uint32

	// Extra is appended after the title. For redirects the target index is
	// prepended automatically.
	Extra []byte

	Redirect bool
	Target   uint32
}

// Archive is a built test archive.
type Archive struct {
	Bytes   []byte
	Entries []TestEntry
	Offsets []uint64

	IndexPos    uint64
	IndexPtrPos uint64
	DataPos     uint64
}

// BuildOption adjusts the generated header.
type BuildOption func(*buildConfig)

type buildConfig struct {
	magic    uint32
	version  uint32
	unsorted bool
}

// WithMagic overrides the magic number written to the header.
func WithMagic(m uint32) BuildOption {
	return func(c *buildConfig) {
		c.magic = m
	}
}

// WithVersion overrides the version written to the header.
func WithVersion(v uint32) BuildOption {
	return func(c *buildConfig) {
		c.version = v
	}
}

// Unsorted keeps entries in the given order instead of sorting them.
func Unsorted() BuildOption {
	return func(c *buildConfig) {
		c.unsorted = true
	}
}

// SortEntries sorts entries by namespace, then title, byte-wise.
func SortEntries(entries []TestEntry) {
	slices.SortStableFunc(entries, func(a, b TestEntry) int {
		if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
}

// Build encodes entries into an archive.
// Entries are sorted by (namespace, title) first, as the lookup requires,
// unless Unsorted is given.
//
// Layout: header | payload area | directory entries | index-pointer table.
func Build(tb testing.TB, entries []TestEntry, opts ...BuildOption) *Archive {
	tb.Helper()

	cfg := buildConfig{magic: Magic, version: Version}
	for _, opt := range opts {
		opt(&cfg)
	}

	entries = slices.Clone(entries)
	if !cfg.unsorted {
		SortEntries(entries)
	}

	var data bytes.Buffer
	payloadOffsets := make([]uint32, len(entries))
	payloadSizes := make([]uint32, len(entries))
	for i, e := range entries {
		stored := e.Stored
		if stored == nil {
			stored = encodePayload(tb, e)
		}
		payloadOffsets[i] = uint32(data.Len()) //nolint:gosec // test data is small
		payloadSizes[i] = uint32(len(stored))  //nolint:gosec // test data is small
		data.Write(stored)
	}

	dataPos := uint64(HeaderSize)
	indexPos := dataPos + uint64(data.Len())

	var index bytes.Buffer
	pointers := make([]uint32, len(entries))
	for i, e := range entries {
		pointers[i] = uint32(index.Len()) //nolint:gosec // test data is small
		index.Write(encodeDirent(e, payloadOffsets[i], payloadSizes[i]))
	}

	indexPtrPos := indexPos + uint64(index.Len())
	ptrTable := make([]byte, 4*len(pointers))
	for i, p := range pointers {
		binary.LittleEndian.PutUint32(ptrTable[4*i:], p)
	}

	hdr := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(hdr[0x00:], cfg.magic)
	binary.LittleEndian.PutUint32(hdr[0x04:], cfg.version)
	binary.LittleEndian.PutUint32(hdr[0x08:], uint32(len(entries))) //nolint:gosec // test data is small
	binary.LittleEndian.PutUint64(hdr[0x10:], indexPos)
	binary.LittleEndian.PutUint32(hdr[0x18:], uint32(index.Len())) //nolint:gosec // test data is small
	binary.LittleEndian.PutUint64(hdr[0x20:], indexPtrPos)
	binary.LittleEndian.PutUint32(hdr[0x28:], uint32(len(ptrTable))) //nolint:gosec // test data is small
	binary.LittleEndian.PutUint64(hdr[0x30:], dataPos)
	binary.LittleEndian.PutUint32(hdr[0x38:], uint32(data.Len())) //nolint:gosec // test data is small

	out := make([]byte, 0, int(indexPtrPos)+len(ptrTable))
	out = append(out, hdr...)
	out = append(out, data.Bytes()...)
	out = append(out, index.Bytes()...)
	out = append(out, ptrTable...)

	offsets := make([]uint64, len(pointers))
	for i, p := range pointers {
		offsets[i] = indexPos + uint64(p)
	}

	return &Archive{
		Bytes:       out,
		Entries:     entries,
		Offsets:     offsets,
		IndexPos:    indexPos,
		IndexPtrPos: indexPtrPos,
		DataPos:     dataPos,
	}
}

// EncodeDirent encodes a single directory entry with the given payload location.
func EncodeDirent(e TestEntry, offset, size uint32) []byte {
	return encodeDirent(e, offset, size)
}

func encodeDirent(e TestEntry, offset, size uint32) []byte {
	extra := e.Extra
	mime := e.Mime
	if e.Redirect {
		mime = MimeRedirect
		target := binary.LittleEndian.AppendUint32(nil, e.Target)
		extra = append(target, e.Extra...)
	}
	originalSize := e.OriginalSize
	if originalSize == 0 {
		originalSize = uint32(len(e.Content)) //nolint:gosec // test data is small
	}

	buf := make([]byte, DirentSize, DirentSize+len(e.Title)+len(extra))
	binary.LittleEndian.PutUint32(buf[0x00:], offset)
	binary.LittleEndian.PutUint32(buf[0x04:], size)
	buf[0x08] = compressionOf(e)
	binary.LittleEndian.PutUint16(buf[0x0a:], mime)
	buf[0x0c] = e.Namespace
	binary.LittleEndian.PutUint16(buf[0x0e:], uint16(len(e.Title))) //nolint:gosec // test data is small
	binary.LittleEndian.PutUint32(buf[0x10:], uint32(len(extra)))   //nolint:gosec // test data is small
	binary.LittleEndian.PutUint32(buf[0x14:], originalSize)
	buf = append(buf, e.Title...)
	buf = append(buf, extra...)
	return buf
}

func compressionOf(e TestEntry) uint8 {
	if e.Compression == 0 {
		return CompressionNone
	}
	return e.Compression
}

func encodePayload(tb testing.TB, e TestEntry) []byte {
	tb.Helper()
	switch compressionOf(e) {
	case CompressionZip:
		return Zlib(tb, e.Content)
	case CompressionLzma:
		return Xz(tb, e.Content)
	default:
		return e.Content
	}
}

// Zlib compresses data as a zlib stream.
func Zlib(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// Xz compresses data as an xz stream.
func Xz(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		tb.Fatalf("xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}
