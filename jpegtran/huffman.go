package jpegtran

import (
	"fmt"
	"math"
)

// huffDecoder is a canonical Huffman table in the form of JPEG F.2.2.3
type huffDecoder struct {
	maxcode [17]int32 // -1 when no code has the length
	mincode [17]int32
	valptr  [17]int32
	vals    []byte
}

// newHuffDecoder builds the decoding table from a DHT code length count and values
func newHuffDecoder(counts [16]byte, vals []byte) (*huffDecoder, error) {
	h := &huffDecoder{vals: append([]byte(nil), vals...)}
	code, k := int32(0), 0
	for l := 1; l <= 16; l++ {
		n := int(counts[l-1])
		if n == 0 {
			h.maxcode[l] = -1
		} else {
			h.valptr[l] = int32(k)
			h.mincode[l] = code
			code += int32(n)
			k += n
			h.maxcode[l] = code - 1
			if code > 1<<uint(l) {
				return nil, fmt.Errorf("%w: Huffman code lengths overflow", ErrCorrupt)
			}
		}
		code <<= 1
	}
	if k != len(vals) {
		return nil, fmt.Errorf("%w: Huffman table has %d values, want %d", ErrCorrupt, len(vals), k)
	}
	return h, nil
}

// decode reads one Huffman coded symbol
func (r *bitReader) decode(h *huffDecoder) (byte, error) {
	var code int32
	for l := 1; l <= 16; l++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(b)
		if code <= h.maxcode[l] {
			return h.vals[h.valptr[l]+code-h.mincode[l]], nil
		}
	}
	return 0, fmt.Errorf("%w: bad Huffman code", ErrCorrupt)
}

// huffSpec is a table as written in a DHT segment
type huffSpec struct {
	counts [16]byte
	vals   []byte
}

// huffEncoder maps symbols to codes (JPEG C.2)
type huffEncoder struct {
	code [256]uint16
	size [256]byte
}

func newHuffEncoder(spec huffSpec) *huffEncoder {
	e := &huffEncoder{}
	code, k := uint32(0), 0
	for l := 1; l <= 16; l++ {
		for i := 0; i < int(spec.counts[l-1]); i++ {
			e.code[spec.vals[k]] = uint16(code)
			e.size[spec.vals[k]] = byte(l)
			code++
			k++
		}
		code <<= 1
	}
	return e
}

// optimalTable generates a length-limited Huffman table from symbol
// frequencies following JPEG K.2. Symbol 256 is reserved so that no code
// consists of all one bits.
func optimalTable(freq [257]int64) huffSpec {
	var (
		bits     [258]int
		codesize [257]int
		others   [257]int
	)
	for i := range others {
		others[i] = -1
	}
	freq[256] = 1

	for {
		// c1 is the least frequent symbol, c2 the next least; ties go to the larger value
		c1, c2 := -1, -1
		v := int64(math.MaxInt64)
		for i := 0; i <= 256; i++ {
			if freq[i] != 0 && freq[i] <= v {
				v, c1 = freq[i], i
			}
		}
		v = math.MaxInt64
		for i := 0; i <= 256; i++ {
			if freq[i] != 0 && freq[i] <= v && i != c1 {
				v, c2 = freq[i], i
			}
		}
		if c2 < 0 {
			break
		}

		freq[c1] += freq[c2]
		freq[c2] = 0

		codesize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codesize[c1]++
		}
		others[c1] = c2

		codesize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codesize[c2]++
		}
	}

	for i := 0; i <= 256; i++ {
		if codesize[i] > 0 {
			bits[codesize[i]]++
		}
	}

	// Limit code lengths to 16 bits
	for i := len(bits) - 1; i > 16; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}

	// Drop the reserved symbol from the longest length
	i := 16
	for i > 0 && bits[i] == 0 {
		i--
	}
	if i > 0 {
		bits[i]--
	}

	var spec huffSpec
	for l := 1; l <= 16; l++ {
		spec.counts[l-1] = byte(bits[l])
	}
	for l := 1; l < len(bits); l++ {
		for sym := 0; sym <= 255; sym++ {
			if codesize[sym] == l {
				spec.vals = append(spec.vals, byte(sym))
			}
		}
	}
	return spec
}
