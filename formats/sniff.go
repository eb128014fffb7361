// File: formats/sniff.go

package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnknownFormat is returned when no magic number matches
	ErrUnknownFormat = errors.New("unknown format")
	// ErrNotImage is returned for recognized files that are not images
	ErrNotImage = errors.New("not an image")
)

// headerSize is the number of leading bytes needed for detection
const headerSize = 16

// Sniff determines the format of the data from its magic number.
// The reader is rewound to its start.
func Sniff(r io.ReadSeeker) (Format, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("reading header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, fmt.Errorf("rewinding: %w", err)
	}

	f := SniffBytes(header[:n])
	if f == FormatUnknown {
		return f, ErrUnknownFormat
	}
	return f, nil
}

// SniffBytes determines the format of a buffer, FormatUnknown when nothing matches
func SniffBytes(header []byte) Format {
	has := func(off int, magic string) bool {
		return len(header) >= off+len(magic) && string(header[off:off+len(magic)]) == magic
	}

	switch {
	case has(0, "\xFF\xD8\xFF"):
		return FormatJPEG

	case has(0, "\x89PNG\r\n\x1a\n"):
		return FormatPNG

	case has(0, "GIF87a"), has(0, "GIF89a"):
		return FormatGIF

	case has(0, "II*\x00"), has(0, "MM\x00*"):
		return FormatTIFF

	case has(0, "RIFF") && has(8, "WEBP"):
		return FormatWEBP

	case has(4, "ftyp"):
		return sniffISOBrand(header[8:min(12, len(header))])

	case has(4, "moov"):
		return FormatMP4

	case has(0, "BM") && len(header) >= 14:
		return FormatBMP

	case has(0, "%PDF"):
		return FormatPDF

	case has(0, "ID3"), len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3

	case has(0, "PK\x03\x04"):
		return FormatZIP

	case has(0, "\x1F\x8B"):
		return FormatGZIP

	default:
		return FormatUnknown
	}
}

// sniffISOBrand distinguishes HEIF/AVIF images from other ISO media files
func sniffISOBrand(brand []byte) Format {
	switch {
	case bytes.Equal(brand, []byte("avif")), bytes.Equal(brand, []byte("avis")):
		return FormatAVIF
	case bytes.Equal(brand, []byte("heic")), bytes.Equal(brand, []byte("heix")),
		bytes.Equal(brand, []byte("hevc")), bytes.Equal(brand, []byte("hevx")),
		bytes.Equal(brand, []byte("mif1")), bytes.Equal(brand, []byte("msf1")):
		return FormatHEIF
	default:
		return FormatMP4
	}
}
