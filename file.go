package zeno

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/meigma/zeno/cache"
	"github.com/meigma/zeno/internal/content"
	"github.com/meigma/zeno/internal/dirent"
	"github.com/meigma/zeno/internal/header"
	"github.com/meigma/zeno/internal/sizing"
	"github.com/meigma/zeno/internal/zenotype"
)

// Re-export types from internal packages for the public API.
type (
	// Header is the decoded archive header.
	Header = header.Header

	// Dirent is a decoded directory entry.
	Dirent = dirent.Dirent

	// Compression identifies the algorithm an article payload is stored with.
	Compression = zenotype.Compression

	// MimeType is an index into the archive's built-in MIME table.
	MimeType = zenotype.MimeType
)

// Re-export compression constants.
const (
	CompressionUnknown = zenotype.CompressionUnknown
	CompressionNone    = zenotype.CompressionNone
	CompressionZip     = zenotype.CompressionZip
	CompressionBzip2   = zenotype.CompressionBzip2
	CompressionLzma    = zenotype.CompressionLzma
)

// MimeRedirect marks a directory entry as a redirect.
const MimeRedirect = zenotype.MimeRedirect

// Store is the byte store backing an archive.
//
// A Store has a single cursor: every read depends on the preceding seek, so
// File serializes all access to it. Nothing else may move the cursor while a
// File is using the store. *os.File satisfies Store.
type Store interface {
	io.Reader
	io.Seeker
}

// File provides lookup and random access to the articles of an archive.
//
// All methods are safe for concurrent use. Methods that touch the store hold
// f.mu for their whole duration; the unexported *Locked methods assume it is
// already held and never acquire it.
type File struct {
	mu     sync.Mutex
	store  Store
	closer io.Closer

	// cursor is the store position after the last locked read, or -1 when
	// unknown. Guarded by mu.
	cursor int64

	// namespaces is filled on first use and never invalidated. Guarded by mu.
	namespaces    string
	namespacesSet bool

	// collator is not safe for concurrent use. Guarded by mu.
	collator  *collate.Collator
	collation language.Tag

	// Write-once at construction.
	header  Header
	offsets []uint64
	id      digest.Digest

	maxArticleSize uint64
	decoder        *content.Decoder
	cache          cache.Cache        // nil = no caching
	dataGroup      singleflight.Group // zero value is valid
	logger         *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (f *File) log() *slog.Logger {
	if f.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.logger
}

// New reads the archive header and offset table from store.
//
// No directory entry is decoded until it is needed. The caller keeps
// ownership of store; see [Open] for a File that owns its handle.
func New(store Store, opts ...Option) (*File, error) {
	f := &File{
		store:          store,
		cursor:         -1,
		collation:      language.Und,
		maxArticleSize: content.DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.collator = collate.New(f.collation)
	f.decoder = content.NewDecoder(f.maxArticleSize)

	h, rawHeader, err := header.Read(store)
	if err != nil {
		return nil, err
	}
	f.log().Debug("read header",
		"count", h.Count,
		"index_pos", h.IndexPos,
		"index_ptr_pos", h.IndexPtrPos,
		"index_ptr_len", h.IndexPtrLen,
	)

	offsets, rawTable, err := header.ReadOffsets(store, h)
	if err != nil {
		return nil, err
	}

	digester := digest.Canonical.Digester()
	digester.Hash().Write(rawHeader)
	digester.Hash().Write(rawTable)

	f.header = h
	f.offsets = offsets
	f.id = digester.Digest()

	f.log().Debug("index entries ready", "count", len(offsets), "id", f.id)
	return f, nil
}

// Open opens the archive at path.
// The returned File must be closed to release the file handle.
func Open(path string, opts ...Option) (*File, error) {
	fh, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	f, err := New(fh, opts...)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	f.closer = fh
	return f, nil
}

// Close releases the file handle opened by [Open].
// It is a no-op for Files created with [New].
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// Len returns the number of articles in the archive.
func (f *File) Len() int {
	return len(f.offsets)
}

// Header returns the decoded archive header.
func (f *File) Header() Header {
	return f.header
}

// ID returns a digest identifying the archive's header and index.
func (f *File) ID() digest.Digest {
	return f.id
}

// Dirent returns the directory entry of the article at idx.
func (f *File) Dirent(idx int) (Dirent, error) {
	if err := f.checkIndex(idx); err != nil {
		return Dirent{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.direntLocked(idx)
}

// Article returns a handle for the article at idx.
func (f *File) Article(idx int) (Article, error) {
	f.log().Debug("get article", "index", idx)
	d, err := f.Dirent(idx)
	if err != nil {
		return Article{}, err
	}
	return Article{file: f, index: idx, dirent: d}, nil
}

// ReadData reads n bytes at the absolute offset off.
func (f *File) ReadData(off uint64, n uint32) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readDataLocked(off, n)
}

// checkIndex validates idx against the write-once offset table.
func (f *File) checkIndex(idx int) error {
	if idx < 0 || idx >= len(f.offsets) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, idx, len(f.offsets))
	}
	return nil
}

// direntLocked decodes the entry of the article at idx.
func (f *File) direntLocked(idx int) (Dirent, error) {
	return f.direntAtLocked(f.offsets[idx])
}

// direntAtLocked decodes the entry at off, reading from the current cursor
// when it is already positioned there.
func (f *File) direntAtLocked(off uint64) (Dirent, error) {
	var (
		d   Dirent
		err error
	)
	if f.cursor >= 0 && uint64(f.cursor) == off {
		d, err = dirent.Read(f.store)
	} else {
		d, err = dirent.ReadAt(f.store, off)
	}
	if err != nil {
		f.cursor = -1
		return Dirent{}, err
	}
	f.cursor = int64(off) + int64(d.Len()) //nolint:gosec // off fit in int64 to be read
	return d, nil
}

// readDataLocked reads n bytes at off.
func (f *File) readDataLocked(off uint64, n uint32) ([]byte, error) {
	pos, err := sizing.ToInt64(off, ErrSizeOverflow)
	if err != nil {
		return nil, zenotype.WrapFormatError("data offset", err)
	}
	if f.cursor != pos {
		if _, err := f.store.Seek(pos, io.SeekStart); err != nil {
			f.cursor = -1
			return nil, zenotype.WrapFormatError("error reading data", err)
		}
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(f.store, buf)
	if err != nil {
		f.cursor = -1
		return nil, zenotype.NewFormatError(
			fmt.Sprintf("error reading data (%d of %d bytes at %d)", read, n, off))
	}
	f.cursor = pos + int64(n)
	return buf, nil
}
