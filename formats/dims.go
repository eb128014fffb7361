// File: formats/dims.go

package formats

import (
	"bytes"
	"fmt"
	"image"

	// Decoders registered for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions reads the pixel width and height from the image header
func Dimensions(data []byte) (width, height int, err error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s header has no dimensions", name)
	}
	return cfg.Width, cfg.Height, nil
}
