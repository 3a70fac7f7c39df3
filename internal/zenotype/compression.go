package zenotype

// Compression identifies the algorithm an article payload is stored with.
type Compression uint8

const (
	CompressionUnknown Compression = iota
	CompressionNone
	CompressionZip
	CompressionBzip2
	CompressionLzma
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZip:
		return "zip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionLzma:
		return "lzma"
	default:
		return "unknown"
	}
}
