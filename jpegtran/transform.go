// Package jpegtran applies lossless geometric transforms to JPEG images by
// rearranging their quantized DCT coefficients, the way jpegtran does.
package jpegtran

import "fmt"

// Transform is a lossless geometric transform
type Transform int

const (
	None Transform = iota
	FlipHorizontal
	FlipVertical
	Transpose
	Transverse
	Rotate90
	Rotate180
	Rotate270
)

var transformNames = map[Transform]string{
	None:           "none",
	FlipHorizontal: "flip horizontal",
	FlipVertical:   "flip vertical",
	Transpose:      "transpose",
	Transverse:     "transverse",
	Rotate90:       "rotate 90",
	Rotate180:      "rotate 180",
	Rotate270:      "rotate 270",
}

func (t Transform) String() string {
	if name, ok := transformNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Transform(%d)", int(t))
}

// FromOrientation returns the transform that makes an image with the given
// EXIF orientation display upright with orientation 1
func FromOrientation(orientation int) Transform {
	switch orientation {
	case 2:
		return FlipHorizontal
	case 3:
		return Rotate180
	case 4:
		return FlipVertical
	case 5:
		return Transpose
	case 6:
		return Rotate90
	case 7:
		return Transverse
	case 8:
		return Rotate270
	default:
		return None
	}
}

type step int

const (
	stepFlipH step = iota
	stepFlipV
	stepTranspose
)

// steps decomposes each transform into flips and a transpose
var steps = map[Transform][]step{
	None:           nil,
	FlipHorizontal: {stepFlipH},
	FlipVertical:   {stepFlipV},
	Transpose:      {stepTranspose},
	Transverse:     {stepTranspose, stepFlipH, stepFlipV},
	Rotate90:       {stepTranspose, stepFlipH},
	Rotate180:      {stepFlipH, stepFlipV},
	Rotate270:      {stepTranspose, stepFlipV},
}

// Options control a transform
type Options struct {
	// Trim drops partial MCUs on mirrored edges instead of leaving them untransformed
	Trim bool
}

// Result is a transformed JPEG and the size written in its frame header
type Result struct {
	Data          []byte
	Width, Height int
}

// Apply transforms a JPEG image losslessly. APPn and COM segments, such as
// EXIF and ICC profiles, are copied unchanged; Huffman tables are optimized.
// The restart interval of the input is kept.
func Apply(data []byte, t Transform, opts Options) (Result, error) {
	s, ok := steps[t]
	if !ok {
		return Result{}, fmt.Errorf("jpegtran: unknown transform %d", int(t))
	}
	if t == None {
		img, err := decode(data)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: data, Width: img.width, Height: img.height}, nil
	}
	return process(data, s, opts)
}

func process(data []byte, s []step, opts Options) (Result, error) {
	img, err := decode(data)
	if err != nil {
		return Result{}, err
	}
	for _, c := range img.comps {
		if img.qt[c.tq] == nil {
			return Result{}, fmt.Errorf("%w: component %d uses undefined quantization table %d", ErrCorrupt, c.id, c.tq)
		}
	}
	for _, op := range s {
		switch op {
		case stepFlipH:
			img.flipH(opts.Trim)
		case stepFlipV:
			img.flipV(opts.Trim)
		case stepTranspose:
			img.transpose()
		}
	}
	return Result{Data: img.encode(), Width: img.width, Height: img.height}, nil
}
