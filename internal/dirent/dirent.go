// Package dirent decodes directory entries: the per-article metadata records
// referenced by the offset table.
package dirent

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/zeno/internal/sizing"
	"github.com/meigma/zeno/internal/zenotype"
)

// HeaderSize is the byte length of the fixed part of a directory entry.
const HeaderSize = 26

// Dirent is a decoded directory entry. It is immutable once read.
type Dirent struct {
	offset       uint32
	size         uint32
	compression  zenotype.Compression
	mime         zenotype.MimeType
	namespace    byte
	originalSize uint32
	title        string
	extra        []byte
}

// Namespace returns the single-byte namespace of the entry.
func (d Dirent) Namespace() byte { return d.namespace }

// Title returns the entry title.
func (d Dirent) Title() string { return d.title }

// MimeType returns the MIME table index.
func (d Dirent) MimeType() zenotype.MimeType { return d.mime }

// IsRedirect reports whether the entry points at another article.
func (d Dirent) IsRedirect() bool { return d.mime == zenotype.MimeRedirect }

// Offset returns the payload offset relative to the archive data area.
func (d Dirent) Offset() uint32 { return d.offset }

// Size returns the stored payload size.
func (d Dirent) Size() uint32 { return d.size }

// OriginalSize returns the uncompressed payload size.
func (d Dirent) OriginalSize() uint32 { return d.originalSize }

// Compression returns the payload compression algorithm.
func (d Dirent) Compression() zenotype.Compression { return d.compression }

// Extra returns a copy of the extra blob.
func (d Dirent) Extra() []byte { return bytes.Clone(d.extra) }

// ExtraLen returns the length of the extra blob.
func (d Dirent) ExtraLen() int { return len(d.extra) }

// Len returns the number of bytes the entry occupies on disk.
func (d Dirent) Len() int { return HeaderSize + len(d.title) + len(d.extra) }

// RedirectIndex returns the target article index of a redirect entry.
// ok is false for plain entries and for redirects without a target.
func (d Dirent) RedirectIndex() (idx uint32, ok bool) {
	if !d.IsRedirect() || len(d.extra) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(d.extra), true
}

// ReadAt seeks to off and reads the entry stored there.
func ReadAt(r io.ReadSeeker, off uint64) (Dirent, error) {
	pos, err := sizing.ToInt64(off, zenotype.ErrSizeOverflow)
	if err != nil {
		return Dirent{}, zenotype.WrapFormatError("directory entry offset", err)
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return Dirent{}, zenotype.WrapFormatError(fmt.Sprintf("seek to directory entry at %d", off), err)
	}
	return Read(r)
}

// Read reads one entry starting at the current position of r.
func Read(r io.Reader) (Dirent, error) {
	var hdr [HeaderSize]byte
	if n, err := io.ReadFull(r, hdr[:]); err != nil {
		return Dirent{}, zenotype.NewFormatError(
			fmt.Sprintf("can't read directory entry header (%d of %d bytes)", n, HeaderSize))
	}

	d := Dirent{
		offset:       binary.LittleEndian.Uint32(hdr[0x00:]),
		size:         binary.LittleEndian.Uint32(hdr[0x04:]),
		compression:  zenotype.Compression(hdr[0x08]),
		mime:         zenotype.MimeType(binary.LittleEndian.Uint16(hdr[0x0a:])),
		namespace:    hdr[0x0c],
		originalSize: binary.LittleEndian.Uint32(hdr[0x14:]),
	}
	titleLen := int(binary.LittleEndian.Uint16(hdr[0x0e:]))
	extraLen := binary.LittleEndian.Uint32(hdr[0x10:])

	title := make([]byte, titleLen)
	if n, err := io.ReadFull(r, title); err != nil {
		return Dirent{}, zenotype.NewFormatError(
			fmt.Sprintf("can't read directory entry title (%d of %d bytes)", n, titleLen))
	}
	d.title = string(title)

	if extraLen > 0 {
		extra, err := readExtra(r, extraLen)
		if err != nil {
			return Dirent{}, err
		}
		d.extra = extra
	}
	return d, nil
}

// readExtra reads the extra blob without trusting extraLen for the allocation
// size up front.
func readExtra(r io.Reader, extraLen uint32) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(extraLen))
	if err != nil {
		return nil, zenotype.NewFormatError(
			fmt.Sprintf("can't read directory entry extra data (%d of %d bytes)", n, extraLen))
	}
	return buf.Bytes(), nil
}
