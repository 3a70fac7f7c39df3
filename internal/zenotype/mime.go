package zenotype

// MimeType is an index into the archive's built-in MIME table.
type MimeType uint16

// MimeRedirect marks a directory entry as a redirect to another article.
const MimeRedirect MimeType = 0xffff

const (
	MimeTextHTML MimeType = iota
	MimeTextPlain
	MimeImageJPEG
	MimeImagePNG
	MimeImageTIFF
	MimeTextCSS
	MimeImageGIF
	MimeIndex
	MimeApplicationJavaScript
	MimeImageIcon
	MimeTextXML
)

var mimeNames = [...]string{
	MimeTextHTML:              "text/html",
	MimeTextPlain:             "text/plain",
	MimeImageJPEG:             "image/jpeg",
	MimeImagePNG:              "image/png",
	MimeImageTIFF:             "image/tiff",
	MimeTextCSS:               "text/css",
	MimeImageGIF:              "image/gif",
	MimeIndex:                 "text/html",
	MimeApplicationJavaScript: "application/javascript",
	MimeImageIcon:             "image/x-icon",
	MimeTextXML:               "text/xml",
}

// String returns the MIME type name. Unknown indices map to
// application/octet-stream.
func (m MimeType) String() string {
	if m == MimeRedirect {
		return "redirect"
	}
	if int(m) < len(mimeNames) {
		return mimeNames[m]
	}
	return "application/octet-stream"
}
