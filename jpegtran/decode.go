package jpegtran

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for JPEG flavors that cannot be transformed
	// losslessly: progressive, arithmetic, lossless and hierarchical coding
	// as well as precisions other than 8 bits.
	ErrUnsupported = errors.New("jpegtran: unsupported JPEG")
	// ErrCorrupt is returned for malformed JPEG data
	ErrCorrupt = errors.New("jpegtran: corrupt JPEG")
)

// Markers
const (
	sof0  = 0xC0
	sof1  = 0xC1
	dht   = 0xC4
	jpg   = 0xC8
	rst0  = 0xD0
	rst7  = 0xD7
	soi   = 0xD8
	eoi   = 0xD9
	sos   = 0xDA
	dqt   = 0xDB
	dnl   = 0xDC
	dri   = 0xDD
	app0  = 0xE0
	app15 = 0xEF
	com   = 0xFE
	tem   = 0x01
)

// zigzag maps the zig-zag scan index to the natural (row-major) index
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// block holds the 64 quantized DCT coefficients of an 8x8 block in natural order
type block [64]int16

// component is one color component with its coefficient blocks
type component struct {
	id     byte
	h, v   int // sampling factors
	tq     int // quantization table
	bw, bh int // block grid
	blocks []block
	pred   int32 // DC predictor while coding
}

func (c *component) at(bx, by int) *block {
	return &c.blocks[by*c.bw+bx]
}

// quantTable is a quantization table in natural order
type quantTable struct {
	wide bool // 16-bit precision
	q    [64]uint16
}

// coeffImage is a baseline/extended sequential JPEG held in the coefficient domain
type coeffImage struct {
	width, height int
	sof           byte
	comps         []*component
	qt            [4]*quantTable
	hmax, vmax    int
	mcusX, mcusY  int
	restart       int      // restart interval in MCUs, 0 when none
	segments      [][]byte // APPn and COM segments, with marker and length
	trailer       []byte   // bytes after EOI
}

// mcuSize returns the MCU width and height in pixels
func (img *coeffImage) mcuSize() (int, int) {
	if len(img.comps) == 1 {
		return 8, 8
	}
	return 8 * img.hmax, 8 * img.vmax
}

// layout recomputes the MCU counts and block grid sizes from the dimensions
func (img *coeffImage) layout() {
	mw, mh := img.mcuSize()
	img.mcusX = (img.width + mw - 1) / mw
	img.mcusY = (img.height + mh - 1) / mh
	for _, c := range img.comps {
		if len(img.comps) == 1 {
			c.bw, c.bh = img.mcusX, img.mcusY
		} else {
			c.bw, c.bh = img.mcusX*c.h, img.mcusY*c.v
		}
	}
}

// decoder walks the marker segments of a JPEG file
type decoder struct {
	data    []byte
	pos     int
	img     *coeffImage
	qt      [4]*quantTable
	dc      [4]*huffDecoder
	ac      [4]*huffDecoder
	ri      int      // restart interval in MCUs
	pending [][]byte // segments seen before the frame header
	scans   int
}

// decode parses data into its quantized DCT coefficients
func decode(data []byte) (*coeffImage, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != soi {
		return nil, fmt.Errorf("%w: missing SOI marker", ErrCorrupt)
	}
	d := &decoder{data: data, pos: 2}

	for {
		marker, err := d.nextMarker()
		if err != nil {
			return nil, err
		}
		switch {
		case marker == eoi:
			if d.img == nil || d.scans == 0 {
				return nil, fmt.Errorf("%w: no image data", ErrCorrupt)
			}
			d.img.trailer = append([]byte(nil), data[d.pos:]...)
			d.img.restart = d.ri
			return d.img, nil

		case marker >= rst0 && marker <= rst7, marker == tem:
			// Standalone markers without a length

		case marker == sos:
			if d.img == nil {
				return nil, fmt.Errorf("%w: SOS before SOF", ErrCorrupt)
			}
			if err := d.decodeScan(); err != nil {
				return nil, err
			}
			d.scans++

		default:
			seg, err := d.segment()
			if err != nil {
				return nil, err
			}
			if err := d.handle(marker, seg); err != nil {
				return nil, err
			}
		}
	}
}

// nextMarker skips to the next marker and returns its code
func (d *decoder) nextMarker() (byte, error) {
	// Tolerate garbage between segments
	for d.pos < len(d.data) && d.data[d.pos] != 0xFF {
		d.pos++
	}
	for d.pos < len(d.data) && d.data[d.pos] == 0xFF {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: missing EOI marker", ErrCorrupt)
	}
	m := d.data[d.pos]
	d.pos++
	return m, nil
}

// segment returns the payload of the segment starting at d.pos
func (d *decoder) segment() ([]byte, error) {
	if d.pos+2 > len(d.data) {
		return nil, fmt.Errorf("%w: truncated segment", ErrCorrupt)
	}
	n := int(binary.BigEndian.Uint16(d.data[d.pos:]))
	if n < 2 || d.pos+n > len(d.data) {
		return nil, fmt.Errorf("%w: invalid segment length %d", ErrCorrupt, n)
	}
	seg := d.data[d.pos+2 : d.pos+n]
	d.pos += n
	return seg, nil
}

func (d *decoder) handle(marker byte, seg []byte) error {
	switch {
	case marker >= app0 && marker <= app15, marker == com:
		raw := make([]byte, 0, 4+len(seg))
		raw = append(raw, 0xFF, marker)
		raw = binary.BigEndian.AppendUint16(raw, uint16(len(seg)+2))
		raw = append(raw, seg...)
		if d.img == nil {
			d.pending = append(d.pending, raw)
		} else {
			d.img.segments = append(d.img.segments, raw)
		}
		return nil
	case marker == dqt:
		return d.decodeDQT(seg)
	case marker == dht:
		return d.decodeDHT(seg)
	case marker == dri:
		if len(seg) < 2 {
			return fmt.Errorf("%w: short DRI segment", ErrCorrupt)
		}
		d.ri = int(binary.BigEndian.Uint16(seg))
		return nil
	case marker == sof0, marker == sof1:
		return d.decodeSOF(marker, seg)
	case marker >= 0xC2 && marker <= 0xCF && marker != dht && marker != jpg:
		return fmt.Errorf("%w: SOF 0x%02X", ErrUnsupported, marker)
	case marker == dnl:
		return nil
	}
	// Other segments carry nothing needed for the transform
	return nil
}

func (d *decoder) decodeDQT(seg []byte) error {
	for len(seg) > 0 {
		pq, tq := seg[0]>>4, int(seg[0]&0x0F)
		if tq > 3 || pq > 1 {
			return fmt.Errorf("%w: DQT table %d precision %d", ErrCorrupt, tq, pq)
		}
		size := 64
		if pq == 1 {
			size = 128
		}
		if len(seg) < 1+size {
			return fmt.Errorf("%w: short DQT segment", ErrCorrupt)
		}
		t := &quantTable{wide: pq == 1}
		for k := 0; k < 64; k++ {
			if t.wide {
				t.q[zigzag[k]] = binary.BigEndian.Uint16(seg[1+2*k:])
			} else {
				t.q[zigzag[k]] = uint16(seg[1+k])
			}
		}
		d.qt[tq] = t
		seg = seg[1+size:]
	}
	return nil
}

func (d *decoder) decodeDHT(seg []byte) error {
	for len(seg) > 0 {
		if len(seg) < 17 {
			return fmt.Errorf("%w: short DHT segment", ErrCorrupt)
		}
		tc, th := seg[0]>>4, int(seg[0]&0x0F)
		if tc > 1 || th > 3 {
			return fmt.Errorf("%w: DHT class %d table %d", ErrCorrupt, tc, th)
		}
		var counts [16]byte
		copy(counts[:], seg[1:17])
		n := 0
		for _, c := range counts {
			n += int(c)
		}
		if n > 256 || len(seg) < 17+n {
			return fmt.Errorf("%w: DHT table with %d values", ErrCorrupt, n)
		}
		h, err := newHuffDecoder(counts, seg[17:17+n])
		if err != nil {
			return err
		}
		if tc == 0 {
			d.dc[th] = h
		} else {
			d.ac[th] = h
		}
		seg = seg[17+n:]
	}
	return nil
}

func (d *decoder) decodeSOF(marker byte, seg []byte) error {
	if d.img != nil {
		return fmt.Errorf("%w: multiple frames", ErrUnsupported)
	}
	if len(seg) < 6 {
		return fmt.Errorf("%w: short SOF segment", ErrCorrupt)
	}
	if seg[0] != 8 {
		return fmt.Errorf("%w: %d-bit precision", ErrUnsupported, seg[0])
	}
	img := &coeffImage{
		sof:    marker,
		height: int(binary.BigEndian.Uint16(seg[1:3])),
		width:  int(binary.BigEndian.Uint16(seg[3:5])),
		qt:     d.qt,
	}
	if img.height == 0 {
		return fmt.Errorf("%w: height defined by DNL", ErrUnsupported)
	}
	if img.width == 0 {
		return fmt.Errorf("%w: zero width", ErrCorrupt)
	}

	nf := int(seg[5])
	if nf != 1 && nf != 3 && nf != 4 {
		return fmt.Errorf("%w: %d components", ErrUnsupported, nf)
	}
	if len(seg) < 6+3*nf {
		return fmt.Errorf("%w: short SOF segment", ErrCorrupt)
	}
	for i := 0; i < nf; i++ {
		p := seg[6+3*i:]
		c := &component{id: p[0], h: int(p[1] >> 4), v: int(p[1] & 0x0F), tq: int(p[2])}
		if !validSampling(c.h) || !validSampling(c.v) {
			return fmt.Errorf("%w: sampling factors %dx%d", ErrUnsupported, c.h, c.v)
		}
		if c.tq > 3 {
			return fmt.Errorf("%w: quantization table %d", ErrCorrupt, c.tq)
		}
		img.hmax = max(img.hmax, c.h)
		img.vmax = max(img.vmax, c.v)
		img.comps = append(img.comps, c)
	}
	img.layout()
	for _, c := range img.comps {
		c.blocks = make([]block, c.bw*c.bh)
	}
	img.segments = d.pending
	d.pending = nil
	d.img = img
	return nil
}

func validSampling(f int) bool {
	return f == 1 || f == 2 || f == 4
}

// decodeScan decodes one sequential scan starting at the SOS segment
func (d *decoder) decodeScan() error {
	seg, err := d.segment()
	if err != nil {
		return err
	}
	if len(seg) < 1 {
		return fmt.Errorf("%w: short SOS segment", ErrCorrupt)
	}
	ns := int(seg[0])
	if ns < 1 || ns > 4 || len(seg) < 1+2*ns+3 {
		return fmt.Errorf("%w: SOS with %d components", ErrCorrupt, ns)
	}

	img := d.img
	// Quantization tables may be defined after the frame header
	for i, t := range d.qt {
		if t != nil {
			img.qt[i] = t
		}
	}

	scan := make([]*component, ns)
	dcTab := make([]*huffDecoder, ns)
	acTab := make([]*huffDecoder, ns)
	for i := 0; i < ns; i++ {
		id, tables := seg[1+2*i], seg[2+2*i]
		for _, c := range img.comps {
			if c.id == id {
				scan[i] = c
			}
		}
		if scan[i] == nil {
			return fmt.Errorf("%w: scan references unknown component %d", ErrCorrupt, id)
		}
		td, ta := tables>>4, tables&0x0F
		if td > 3 || ta > 3 || d.dc[td] == nil || d.ac[ta] == nil {
			return fmt.Errorf("%w: scan references undefined Huffman table", ErrCorrupt)
		}
		dcTab[i], acTab[i] = d.dc[td], d.ac[ta]
		scan[i].pred = 0
	}

	r := &bitReader{data: d.data, pos: d.pos}
	decodeUnit := func(i int, b *block) error {
		return decodeBlock(r, scan[i], b, dcTab[i], acTab[i])
	}
	resetPreds := func() {
		for _, c := range scan {
			c.pred = 0
		}
	}

	if ns == 1 {
		c := scan[0]
		bx, by := img.scanBlocks(c)
		total := bx * by
		for m := 0; m < total; m++ {
			if d.ri > 0 && m > 0 && m%d.ri == 0 {
				if err := r.restart(); err != nil {
					return err
				}
				resetPreds()
			}
			if err := decodeUnit(0, c.at(m%bx, m/bx)); err != nil {
				return err
			}
		}
	} else {
		total := img.mcusX * img.mcusY
		for m := 0; m < total; m++ {
			if d.ri > 0 && m > 0 && m%d.ri == 0 {
				if err := r.restart(); err != nil {
					return err
				}
				resetPreds()
			}
			mx, my := m%img.mcusX, m/img.mcusX
			for i, c := range scan {
				for y := 0; y < c.v; y++ {
					for x := 0; x < c.h; x++ {
						if err := decodeUnit(i, c.at(mx*c.h+x, my*c.v+y)); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	d.pos = r.pos
	return nil
}

// scanBlocks returns the block grid covered by a non-interleaved scan of c
func (img *coeffImage) scanBlocks(c *component) (int, int) {
	if len(img.comps) == 1 {
		return c.bw, c.bh
	}
	w := (img.width*c.h + img.hmax - 1) / img.hmax
	h := (img.height*c.v + img.vmax - 1) / img.vmax
	return (w + 7) / 8, (h + 7) / 8
}

// decodeBlock decodes the Huffman coded coefficients of one block (JPEG F.2.2)
func decodeBlock(r *bitReader, c *component, b *block, dc, ac *huffDecoder) error {
	t, err := r.decode(dc)
	if err != nil {
		return err
	}
	if t > 11 {
		return fmt.Errorf("%w: DC category %d", ErrCorrupt, t)
	}
	v, err := r.receive(int(t))
	if err != nil {
		return err
	}
	c.pred += extend(v, int(t))
	b[0] = int16(c.pred)

	for k := 1; k < 64; {
		rs, err := r.decode(ac)
		if err != nil {
			return err
		}
		run, s := int(rs>>4), int(rs&0x0F)
		if s == 0 {
			if run != 15 {
				break // EOB
			}
			k += 16
			continue
		}
		k += run
		if k > 63 {
			return fmt.Errorf("%w: coefficient index %d", ErrCorrupt, k)
		}
		v, err := r.receive(s)
		if err != nil {
			return err
		}
		b[zigzag[k]] = int16(extend(v, s))
		k++
	}
	return nil
}
