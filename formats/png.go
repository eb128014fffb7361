// File: formats/png.go

package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

func init() {
	RegisterContainer(FormatPNG, pngContainer{})
}

const pngSignature = "\x89PNG\r\n\x1a\n"

// pngChunk is one chunk of a PNG stream
type pngChunk struct {
	Type   string
	Offset int // offset of the length field
	Data   []byte
}

func (c pngChunk) end() int {
	return c.Offset + 12 + len(c.Data)
}

// pngChunks lists the chunks of a PNG file
func pngChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, []byte(pngSignature)) {
		return nil, fmt.Errorf("missing PNG signature")
	}
	var chunks []pngChunk
	pos := len(pngSignature)
	for pos+12 <= len(data) {
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		if uint64(pos)+12+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("truncated PNG chunk at offset %d", pos)
		}
		c := pngChunk{
			Type:   string(data[pos+4 : pos+8]),
			Offset: pos,
			Data:   data[pos+8 : pos+8+int(length)],
		}
		chunks = append(chunks, c)
		pos = c.end()
		if c.Type == "IEND" {
			break
		}
	}
	return chunks, nil
}

type pngContainer struct{}

// Extract returns the content of the eXIf chunk
func (pngContainer) Extract(data []byte) ([]byte, error) {
	chunks, err := pngChunks(data)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.Type == "eXIf" {
			// Some writers keep the JPEG style prefix
			return bytes.TrimPrefix(c.Data, []byte(exifHeader)), nil
		}
	}
	return nil, nil
}

// Embed replaces the eXIf chunk, inserting one before the first IDAT when missing
func (pngContainer) Embed(data, tiff []byte) ([]byte, error) {
	chunks, err := pngChunks(data)
	if err != nil {
		return nil, err
	}

	cut, end := -1, -1
	for _, c := range chunks {
		if c.Type == "eXIf" {
			cut, end = c.Offset, c.end()
			break
		}
		if c.Type == "IDAT" && cut < 0 {
			cut, end = c.Offset, c.Offset
		}
	}
	if cut < 0 {
		return nil, fmt.Errorf("PNG has no IDAT chunk")
	}

	chunk := make([]byte, 0, 12+len(tiff))
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(tiff)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, tiff...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(data)-(end-cut)+len(chunk))
	out = append(out, data[:cut]...)
	out = append(out, chunk...)
	out = append(out, data[end:]...)
	return out, nil
}
