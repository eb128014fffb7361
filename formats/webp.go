// File: formats/webp.go

package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func init() {
	RegisterContainer(FormatWEBP, webpContainer{})
}

// VP8X feature flags
const (
	vp8xFlagEXIF  = 0x08
	vp8xFlagAlpha = 0x10
)

// riffChunk is one chunk of a RIFF/WEBP file
type riffChunk struct {
	FourCC string
	Offset int
	Data   []byte
}

func (c riffChunk) end() int {
	return c.Offset + 8 + len(c.Data) + len(c.Data)%2
}

// webpChunks lists the chunks inside the RIFF WEBP form
func webpChunks(data []byte) ([]riffChunk, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, fmt.Errorf("missing RIFF WEBP header")
	}
	var chunks []riffChunk
	pos := 12
	for pos+8 <= len(data) {
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		if uint64(pos)+8+uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("truncated WEBP chunk at offset %d", pos)
		}
		c := riffChunk{FourCC: string(data[pos : pos+4]), Offset: pos, Data: data[pos+8 : pos+8+int(size)]}
		chunks = append(chunks, c)
		pos = c.end()
	}
	return chunks, nil
}

func appendRIFFChunk(out []byte, fourCC string, payload []byte) []byte {
	out = append(out, fourCC...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	if len(payload)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

type webpContainer struct{}

// Extract returns the content of the EXIF chunk
func (webpContainer) Extract(data []byte) ([]byte, error) {
	chunks, err := webpChunks(data)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.FourCC == "EXIF" {
			return bytes.TrimPrefix(c.Data, []byte(exifHeader)), nil
		}
	}
	return nil, nil
}

// Embed replaces or appends the EXIF chunk and flags it in VP8X. Simple
// (VP8/VP8L only) files are converted to the extended layout.
func (webpContainer) Embed(data, tiff []byte) ([]byte, error) {
	chunks, err := webpChunks(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 12, len(data)+len(tiff)+32)
	copy(out, data[:12])

	var vp8x []byte
	for _, c := range chunks {
		if c.FourCC == "VP8X" && len(c.Data) >= 10 {
			vp8x = append([]byte(nil), c.Data...)
			break
		}
	}
	if vp8x == nil {
		if vp8x, err = newVP8X(chunks); err != nil {
			return nil, err
		}
	}
	vp8x[0] |= vp8xFlagEXIF
	out = appendRIFFChunk(out, "VP8X", vp8x)

	written := false
	for _, c := range chunks {
		switch c.FourCC {
		case "VP8X", "EXIF":
			continue
		case "XMP ":
			// EXIF precedes XMP
			if !written {
				out = appendRIFFChunk(out, "EXIF", tiff)
				written = true
			}
		}
		out = appendRIFFChunk(out, c.FourCC, c.Data)
	}
	if !written {
		out = appendRIFFChunk(out, "EXIF", tiff)
	}

	if uint64(len(out))-8 > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: RIFF size", ErrSegmentTooLarge)
	}
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out, nil
}

// newVP8X builds a VP8X payload from the bitstream header of a simple file
func newVP8X(chunks []riffChunk) ([]byte, error) {
	var width, height int
	var flags byte
	found := false
	for _, c := range chunks {
		switch c.FourCC {
		case "VP8 ":
			// frame tag (3), start code 9D 01 2A, 14 bit width and height
			if len(c.Data) < 10 || c.Data[3] != 0x9D || c.Data[4] != 0x01 || c.Data[5] != 0x2A {
				return nil, fmt.Errorf("invalid VP8 frame header")
			}
			width = int(binary.LittleEndian.Uint16(c.Data[6:8]) & 0x3FFF)
			height = int(binary.LittleEndian.Uint16(c.Data[8:10]) & 0x3FFF)
			found = true
		case "VP8L":
			if len(c.Data) < 5 || c.Data[0] != 0x2F {
				return nil, fmt.Errorf("invalid VP8L header")
			}
			bits := binary.LittleEndian.Uint32(c.Data[1:5])
			width = int(bits&0x3FFF) + 1
			height = int(bits>>14&0x3FFF) + 1
			if bits>>28&1 == 1 {
				flags |= vp8xFlagAlpha
			}
			found = true
		}
		if found {
			break
		}
	}
	if !found || width == 0 || height == 0 {
		return nil, fmt.Errorf("WEBP has no image chunk")
	}

	vp8x := make([]byte, 10)
	vp8x[0] = flags
	putUint24(vp8x[4:7], uint32(width-1))
	putUint24(vp8x[7:10], uint32(height-1))
	return vp8x, nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
