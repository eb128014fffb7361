// File: formats/tiff.go

package formats

import "fmt"

func init() {
	RegisterContainer(FormatTIFF, tiffContainer{})
}

// tiffContainer treats the whole TIFF file as the EXIF block. Image strips
// keep their offsets because the EXIF writer only appends.
type tiffContainer struct{}

func (tiffContainer) Extract(data []byte) ([]byte, error) {
	if SniffBytes(data) != FormatTIFF {
		return nil, fmt.Errorf("missing TIFF header")
	}
	return data, nil
}

func (tiffContainer) Embed(data, tiff []byte) ([]byte, error) {
	if SniffBytes(tiff) != FormatTIFF {
		return nil, fmt.Errorf("missing TIFF header")
	}
	return tiff, nil
}
