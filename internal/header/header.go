// Package header decodes the fixed archive header and the index-pointer
// table that maps article indices to directory entry offsets.
package header

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/zeno/internal/sizing"
	"github.com/meigma/zeno/internal/zenotype"
)

const (
	// Size is the byte length of the fixed archive header.
	Size = 0x3c

	// Magic identifies a zeno archive.
	Magic uint32 = 1439867043

	// Version is the only supported format version.
	Version uint32 = 3

	// PointerSize is the width of one index-pointer table slot.
	PointerSize = 4
)

// Header holds the decoded archive header.
type Header struct {
	Magic       uint32
	Version     uint32
	Count       uint32
	IndexPos    uint64
	IndexLen    uint32
	IndexPtrPos uint64
	IndexPtrLen uint32
	DataPos     uint64
	DataLen     uint32
}

// Parse decodes and validates a header from b.
func Parse(b []byte) (Header, error) {
	if len(b) < Size {
		return Header{}, zenotype.NewFormatError(
			fmt.Sprintf("header too short (%d of %d bytes)", len(b), Size))
	}

	h := Header{
		Magic:       binary.LittleEndian.Uint32(b[0x00:]),
		Version:     binary.LittleEndian.Uint32(b[0x04:]),
		Count:       binary.LittleEndian.Uint32(b[0x08:]),
		IndexPos:    binary.LittleEndian.Uint64(b[0x10:]),
		IndexLen:    binary.LittleEndian.Uint32(b[0x18:]),
		IndexPtrPos: binary.LittleEndian.Uint64(b[0x20:]),
		IndexPtrLen: binary.LittleEndian.Uint32(b[0x28:]),
		DataPos:     binary.LittleEndian.Uint64(b[0x30:]),
		DataLen:     binary.LittleEndian.Uint32(b[0x38:]),
	}
	if h.Magic != Magic {
		return Header{}, zenotype.NewValueError("magic number", uint64(h.Magic), uint64(Magic))
	}
	if h.Version != Version {
		return Header{}, zenotype.NewValueError("version", uint64(h.Version), uint64(Version))
	}
	return h, nil
}

// Read reads and validates the header at offset 0 of r.
// The raw header bytes are returned alongside the decoded value.
func Read(r io.ReadSeeker) (Header, []byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Header{}, nil, zenotype.WrapFormatError("seek to header", err)
	}
	buf := make([]byte, Size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return Header{}, nil, zenotype.NewFormatError(
			fmt.Sprintf("header too short (%d of %d bytes)", n, Size))
	}
	h, err := Parse(buf)
	if err != nil {
		return Header{}, nil, err
	}
	return h, buf, nil
}

// ReadOffsets reads the index-pointer table and returns the absolute offset
// of every directory entry, in table order.
//
// The raw table bytes are returned alongside the offsets.
func ReadOffsets(r io.ReadSeeker, h Header) ([]uint64, []byte, error) {
	need := uint64(h.Count) * PointerSize
	if uint64(h.IndexPtrLen) < need {
		return nil, nil, zenotype.NewValueError("index pointer table length", uint64(h.IndexPtrLen), need)
	}
	if h.Count == 0 {
		return []uint64{}, nil, nil
	}

	pos, err := sizing.ToInt64(h.IndexPtrPos, zenotype.ErrSizeOverflow)
	if err != nil {
		return nil, nil, zenotype.WrapFormatError("index pointer position", err)
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, nil, zenotype.WrapFormatError("seek to index pointer table", err)
	}

	buf := make([]byte, need)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, nil, zenotype.NewFormatError(
			fmt.Sprintf("index pointer table truncated (%d of %d bytes)", n, need))
	}

	offsets := make([]uint64, 0, h.Count)
	for i := 0; i < len(buf); i += PointerSize {
		ptr := uint64(binary.LittleEndian.Uint32(buf[i:]))
		off, ok := sizing.AddUint64(h.IndexPos, ptr)
		if !ok {
			return nil, nil, zenotype.WrapFormatError("index offset", zenotype.ErrSizeOverflow)
		}
		offsets = append(offsets, off)
	}
	return offsets, buf, nil
}
