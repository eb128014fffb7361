// File: formats/jpeg.go

package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func init() {
	RegisterContainer(FormatJPEG, jpegContainer{})
}

// JPEG markers used while walking segments
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerTEM  = 0x01
)

// maxSegment is the largest payload a JPEG segment can hold
const maxSegment = 0xFFFF - 2

// Segment is one JPEG marker segment before the image data
type Segment struct {
	Marker byte
	Offset int // offset of the 0xFF marker byte
	Data   []byte
}

// Len returns the number of bytes the segment occupies in the file
func (s Segment) Len() int {
	if s.Data == nil {
		return 2
	}
	return 4 + len(s.Data)
}

// Segments lists the marker segments of a JPEG up to and including SOS
func Segments(data []byte) ([]Segment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("missing JPEG SOI marker")
	}

	var segs []Segment
	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("invalid JPEG marker at offset %d", pos)
		}
		// Skip fill bytes
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			break
		}
		marker := data[pos]
		pos++

		if marker == markerEOI {
			segs = append(segs, Segment{Marker: marker, Offset: pos - 2})
			break
		}
		if marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7) {
			segs = append(segs, Segment{Marker: marker, Offset: pos - 2})
			continue
		}

		if pos+2 > len(data) {
			return nil, fmt.Errorf("truncated JPEG segment 0x%02X", marker)
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 || pos+length > len(data) {
			return nil, fmt.Errorf("invalid length %d for JPEG segment 0x%02X", length, marker)
		}
		segs = append(segs, Segment{Marker: marker, Offset: pos - 2, Data: data[pos+2 : pos+length]})
		pos += length

		// Check for image data start
		if marker == markerSOS {
			break
		}
	}
	return segs, nil
}

type jpegContainer struct{}

// Extract locates the EXIF APP1 segment
func (jpegContainer) Extract(data []byte) ([]byte, error) {
	segs, err := Segments(data)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Data, []byte(exifHeader)) {
			return s.Data[len(exifHeader):], nil
		}
	}
	return nil, nil
}

// Embed replaces the EXIF APP1 segment, inserting one after SOI/APP0 when missing
func (jpegContainer) Embed(data, tiff []byte) ([]byte, error) {
	payload := len(exifHeader) + len(tiff)
	if payload > maxSegment {
		return nil, fmt.Errorf("%w: %d bytes in APP1", ErrSegmentTooLarge, payload)
	}
	segs, err := Segments(data)
	if err != nil {
		return nil, err
	}

	seg := make([]byte, 0, 4+payload)
	seg = append(seg, 0xFF, markerAPP1)
	seg = binary.BigEndian.AppendUint16(seg, uint16(payload+2))
	seg = append(seg, exifHeader...)
	seg = append(seg, tiff...)

	cut, end := 2, 2
	for _, s := range segs {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Data, []byte(exifHeader)) {
			cut, end = s.Offset, s.Offset+s.Len()
			break
		}
		if s.Marker == markerAPP0 && s.Offset == cut {
			cut = s.Offset + s.Len()
			end = cut
		}
	}

	out := make([]byte, 0, len(data)-(end-cut)+len(seg))
	out = append(out, data[:cut]...)
	out = append(out, seg...)
	out = append(out, data[end:]...)
	return out, nil
}
