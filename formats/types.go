// File: formats/types.go

package formats

import "strings"

// Format identifies a file type detected from its content
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "JPEG"
	FormatPNG     Format = "PNG"
	FormatGIF     Format = "GIF"
	FormatBMP     Format = "BMP"
	FormatTIFF    Format = "TIFF"
	FormatWEBP    Format = "WEBP"
	FormatHEIF    Format = "HEIF"
	FormatAVIF    Format = "AVIF"
	FormatPDF     Format = "PDF"
	FormatMP3     Format = "MP3"
	FormatMP4     Format = "MP4"
	FormatZIP     Format = "ZIP"
	FormatGZIP    Format = "GZIP"
)

// mimeTypes maps formats to their MIME types
var mimeTypes = map[Format]string{
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
	FormatGIF:  "image/gif",
	FormatBMP:  "image/bmp",
	FormatTIFF: "image/tiff",
	FormatWEBP: "image/webp",
	FormatHEIF: "image/heif",
	FormatAVIF: "image/avif",
	FormatPDF:  "application/pdf",
	FormatMP3:  "audio/mpeg",
	FormatMP4:  "video/mp4",
	FormatZIP:  "application/zip",
	FormatGZIP: "application/gzip",
}

// MIME returns the MIME type, application/octet-stream when unknown
func (f Format) MIME() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// IsImage reports whether the format is an image/* type
func (f Format) IsImage() bool {
	return strings.HasPrefix(f.MIME(), "image/")
}

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}
