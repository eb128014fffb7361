package jpegtran

import "fmt"

// bitReader reads entropy-coded data, removing stuffed zero bytes
type bitReader struct {
	data []byte
	pos  int
	acc  uint32
	n    int // valid bits in acc
}

func (r *bitReader) fetch() error {
	if r.pos >= len(r.data) {
		return fmt.Errorf("%w: entropy data truncated", ErrCorrupt)
	}
	b := r.data[r.pos]
	if b == 0xFF {
		if r.pos+1 >= len(r.data) {
			return fmt.Errorf("%w: entropy data truncated", ErrCorrupt)
		}
		if next := r.data[r.pos+1]; next != 0x00 {
			return fmt.Errorf("%w: marker 0x%02X inside entropy data", ErrCorrupt, next)
		}
		r.pos += 2
	} else {
		r.pos++
	}
	r.acc = uint32(b)
	r.n = 8
	return nil
}

func (r *bitReader) readBit() (uint32, error) {
	if r.n == 0 {
		if err := r.fetch(); err != nil {
			return 0, err
		}
	}
	r.n--
	return (r.acc >> uint(r.n)) & 1, nil
}

// receive reads s bits, most significant first
func (r *bitReader) receive(s int) (int32, error) {
	var v int32
	for i := 0; i < s; i++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | int32(b)
	}
	return v, nil
}

// restart discards buffered bits and consumes an RSTn marker
func (r *bitReader) restart() error {
	r.n = 0
	for r.pos < len(r.data) && r.data[r.pos] == 0xFF && r.pos+1 < len(r.data) && r.data[r.pos+1] == 0xFF {
		r.pos++
	}
	if r.pos+1 >= len(r.data) || r.data[r.pos] != 0xFF || r.data[r.pos+1] < 0xD0 || r.data[r.pos+1] > 0xD7 {
		return fmt.Errorf("%w: missing restart marker at offset %d", ErrCorrupt, r.pos)
	}
	r.pos += 2
	return nil
}

// extend converts the s-bit value v to a signed coefficient (JPEG F.2.2.1)
func extend(v int32, s int) int32 {
	if s == 0 {
		return 0
	}
	if v < 1<<uint(s-1) {
		return v - (1 << uint(s)) + 1
	}
	return v
}

// bitWriter writes entropy-coded data with 0xFF byte stuffing
type bitWriter struct {
	out []byte
	acc uint32
	n   int
}

func (w *bitWriter) write(v uint32, n int) {
	if n == 0 {
		return
	}
	w.acc = w.acc<<uint(n) | v&(1<<uint(n)-1)
	w.n += n
	for w.n >= 8 {
		b := byte(w.acc >> uint(w.n-8))
		w.out = append(w.out, b)
		if b == 0xFF {
			w.out = append(w.out, 0x00)
		}
		w.n -= 8
	}
}

// flush pads the last byte with one bits
func (w *bitWriter) flush() {
	if w.n > 0 {
		w.write(1<<uint(8-w.n)-1, 8-w.n)
	}
}
