// Package content decodes stored article payloads.
package content

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz"

	"github.com/meigma/zeno/internal/zenotype"
)

// DefaultMaxSize is the default maximum uncompressed payload size (256MB).
const DefaultMaxSize = 256 << 20

// Decoder turns stored payloads into article content.
// It is safe for concurrent use.
type Decoder struct {
	maxSize uint64
	pool    sync.Pool
}

// NewDecoder creates a Decoder. A maxSize of 0 disables the size limit.
func NewDecoder(maxSize uint64) *Decoder {
	return &Decoder{maxSize: maxSize}
}

// MaxSize returns the configured maximum payload size.
func (d *Decoder) MaxSize() uint64 {
	return d.maxSize
}

// Decode returns the uncompressed content of stored. originalSize is the
// recorded uncompressed length; compressed payloads must decode to exactly
// that many bytes.
func (d *Decoder) Decode(c zenotype.Compression, stored []byte, originalSize uint32) ([]byte, error) {
	if d.maxSize != 0 && uint64(originalSize) > d.maxSize {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", zenotype.ErrSizeOverflow, originalSize, d.maxSize)
	}

	switch c {
	case zenotype.CompressionNone:
		return stored, nil
	case zenotype.CompressionZip:
		zr, release, err := d.zlibReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", zenotype.ErrDecompression, err)
		}
		defer release()
		return readExact(zr, originalSize)
	case zenotype.CompressionBzip2:
		return readExact(bzip2.NewReader(bytes.NewReader(stored)), originalSize)
	case zenotype.CompressionLzma:
		xr, err := xz.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", zenotype.ErrDecompression, err)
		}
		return readExact(xr, originalSize)
	default:
		return nil, fmt.Errorf("%w: %s", zenotype.ErrUnsupportedCompression, c)
	}
}

// zlibReader returns a pooled zlib reader positioned at the start of r.
// The caller must call the returned release function when done.
func (d *Decoder) zlibReader(r io.Reader) (io.ReadCloser, func(), error) {
	if v := d.pool.Get(); v != nil {
		if zr, ok := v.(io.ReadCloser); ok {
			if rs, ok := zr.(zlib.Resetter); ok && rs.Reset(r, nil) == nil {
				return zr, func() { d.pool.Put(zr) }, nil
			}
			_ = zr.Close()
		}
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, func() { d.pool.Put(zr) }, nil
}

// readExact reads exactly size bytes from r and verifies nothing follows.
func readExact(r io.Reader, size uint32) ([]byte, error) {
	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: unexpected EOF", zenotype.ErrDecompression)
		}
		return nil, fmt.Errorf("%w: %v", zenotype.ErrDecompression, err)
	}

	var probe [1]byte
	n, err := r.Read(probe[:])
	if n > 0 {
		return nil, fmt.Errorf("%w: content exceeds recorded size %d", zenotype.ErrDecompression, size)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", zenotype.ErrDecompression, err)
	}
	return out, nil
}
