package jpegtran

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func grayJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*5 + y*2)})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func colorJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 9), B: uint8((x + y) * 3), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func samePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	if want.Bounds() != got.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), want.Bounds())
	}
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if want.At(x, y) != got.At(x, y) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.At(x, y), want.At(x, y))
			}
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestFromOrientation(t *testing.T) {
	want := []Transform{None, None, FlipHorizontal, Rotate180, FlipVertical, Transpose, Rotate90, Transverse, Rotate270, None}
	var got []Transform
	for o := 0; o <= 9; o++ {
		got = append(got, FromOrientation(o))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromOrientation mismatch:\n%s", diff)
	}
}

func TestProcess_IdentityKeepsPixels(t *testing.T) {
	for name, src := range map[string][]byte{
		"gray":  grayJPEG(t, 37, 21),
		"color": colorJPEG(t, 37, 21),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := process(src, nil, Options{Trim: true})
			if err != nil {
				t.Fatal(err)
			}
			out := res.Data
			samePixels(t, decodeJPEG(t, src), decodeJPEG(t, out))
		})
	}
}

func TestApply_Inverses(t *testing.T) {
	tests := []struct {
		name  string
		tr    Transform
		times int
	}{
		{"rotate 90 four times", Rotate90, 4},
		{"rotate 270 four times", Rotate270, 4},
		{"rotate 180 twice", Rotate180, 2},
		{"transpose twice", Transpose, 2},
		{"transverse twice", Transverse, 2},
		{"flip horizontal twice", FlipHorizontal, 2},
		{"flip vertical twice", FlipVertical, 2},
	}
	src := colorJPEG(t, 32, 16)
	want := decodeJPEG(t, src)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := src
			for i := 0; i < tt.times; i++ {
				res, err := Apply(data, tt.tr, Options{Trim: true})
				if err != nil {
					t.Fatal(err)
				}
				data = res.Data
			}
			samePixels(t, want, decodeJPEG(t, data))
		})
	}
}

func TestApply_Rotate90MapsPixels(t *testing.T) {
	src := grayJPEG(t, 32, 16)
	res, err := Apply(src, Rotate90, Options{Trim: true})
	if err != nil {
		t.Fatal(err)
	}
	out := res.Data
	in := decodeJPEG(t, src).(*image.Gray)
	rot := decodeJPEG(t, out).(*image.Gray)
	if got := rot.Bounds().Size(); got != image.Pt(16, 32) {
		t.Fatalf("size = %v, want 16x32", got)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			// (x, y) moves to (H-1-y, x)
			if d := absDiff(in.GrayAt(x, y).Y, rot.GrayAt(15-y, x).Y); d > 4 {
				t.Fatalf("pixel (%d,%d) differs by %d", x, y, d)
			}
		}
	}
}

func TestApply_TrimsPartialMCU(t *testing.T) {
	src := grayJPEG(t, 44, 24)
	res, err := Apply(src, FlipHorizontal, Options{Trim: true})
	if err != nil {
		t.Fatal(err)
	}
	out := res.Data
	in := decodeJPEG(t, src).(*image.Gray)
	flipped := decodeJPEG(t, out).(*image.Gray)
	if got := flipped.Bounds().Size(); got != image.Pt(40, 24) {
		t.Fatalf("size = %v, want 40x24", got)
	}
	if res.Width != 40 || res.Height != 24 {
		t.Errorf("reported size = %dx%d, want 40x24", res.Width, res.Height)
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 40; x++ {
			if d := absDiff(in.GrayAt(39-x, y).Y, flipped.GrayAt(x, y).Y); d > 4 {
				t.Fatalf("pixel (%d,%d) differs by %d", x, y, d)
			}
		}
	}
}

func TestApply_WithoutTrimKeepsSize(t *testing.T) {
	res, err := Apply(grayJPEG(t, 44, 24), FlipHorizontal, Options{})
	if err != nil {
		t.Fatal(err)
	}
	out := res.Data
	if got := decodeJPEG(t, out).Bounds().Size(); got != image.Pt(44, 24) {
		t.Errorf("size = %v, want 44x24", got)
	}
}

func TestApply_TransposeSwapsDimensions(t *testing.T) {
	res, err := Apply(colorJPEG(t, 50, 30), Transpose, Options{Trim: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeJPEG(t, res.Data).Bounds().Size(); got != image.Pt(30, 50) {
		t.Errorf("size = %v, want 30x50", got)
	}
	if res.Width != 30 || res.Height != 50 {
		t.Errorf("reported size = %dx%d, want 30x50", res.Width, res.Height)
	}
}

func TestApply_Unsupported(t *testing.T) {
	src := grayJPEG(t, 16, 16)
	sofAt := bytes.Index(src, []byte{0xFF, sof0})
	if sofAt < 0 {
		t.Fatal("no SOF0 in fixture")
	}

	progressive := append([]byte(nil), src...)
	progressive[sofAt+1] = 0xC2
	if _, err := Apply(progressive, Rotate90, Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("progressive: err = %v, want ErrUnsupported", err)
	}

	twelveBit := append([]byte(nil), src...)
	twelveBit[sofAt+4] = 12
	if _, err := Apply(twelveBit, Rotate90, Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("12-bit: err = %v, want ErrUnsupported", err)
	}
}

func TestApply_Corrupt(t *testing.T) {
	src := grayJPEG(t, 64, 64)
	if _, err := Apply(src[:len(src)/2], Rotate180, Options{}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("truncated: err = %v, want ErrCorrupt", err)
	}
	if _, err := Apply([]byte("not a jpeg"), Rotate180, Options{}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("garbage: err = %v, want ErrCorrupt", err)
	}
}

func TestApply_PreservesSegments(t *testing.T) {
	src := colorJPEG(t, 16, 16)
	segs := []byte{
		0xFF, 0xE1, 0x00, 0x0A, 'E', 'x', 'i', 'f', 0, 0, 'I', 'I',
		0xFF, 0xFE, 0x00, 0x07, 'h', 'e', 'l', 'l', 'o',
	}
	data := append(append([]byte{0xFF, 0xD8}, segs...), src[2:]...)
	data = append(data, "trailer"...)

	res, err := Apply(data, Rotate270, Options{Trim: true})
	if err != nil {
		t.Fatal(err)
	}
	out := res.Data
	if !bytes.HasPrefix(out, append([]byte{0xFF, 0xD8}, segs...)) {
		t.Errorf("segments not copied after SOI: % X", out[:len(segs)+2])
	}
	if !bytes.HasSuffix(out, []byte("\xFF\xD9trailer")) {
		t.Error("trailer not kept after EOI")
	}
	decodeJPEG(t, out)
}

// withRestarts re-encodes src with a restart marker every ri MCUs
func withRestarts(t *testing.T, src []byte, ri int) []byte {
	t.Helper()
	img, err := decode(src)
	if err != nil {
		t.Fatal(err)
	}
	img.restart = ri
	return img.encode()
}

func TestApply_RestartIntervals(t *testing.T) {
	driSegment := []byte{0xFF, dri, 0x00, 0x04, 0x00, 0x02}
	for name, src := range map[string][]byte{
		"gray":  grayJPEG(t, 40, 24),
		"color": colorJPEG(t, 48, 32),
	} {
		t.Run(name, func(t *testing.T) {
			data := withRestarts(t, src, 2)
			if !bytes.Contains(data, driSegment) || !bytes.Contains(data, []byte{0xFF, rst0}) {
				t.Fatal("fixture has no restart markers")
			}
			want := decodeJPEG(t, src)
			samePixels(t, want, decodeJPEG(t, data))

			rotated, err := Apply(data, Rotate90, Options{Trim: true})
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Contains(rotated.Data, driSegment) {
				t.Error("restart interval dropped")
			}
			back, err := Apply(rotated.Data, Rotate270, Options{Trim: true})
			if err != nil {
				t.Fatal(err)
			}
			samePixels(t, want, decodeJPEG(t, back.Data))
		})
	}
}

func TestApply_MissingRestartMarker(t *testing.T) {
	data := withRestarts(t, grayJPEG(t, 40, 24), 2)
	at := bytes.Index(data, []byte{0xFF, rst0})
	if at < 0 {
		t.Fatal("no RST0 in fixture")
	}
	broken := append([]byte(nil), data...)
	broken[at+1] = 0x00
	if _, err := Apply(broken, Rotate180, Options{}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}
