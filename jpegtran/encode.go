package jpegtran

import (
	"encoding/binary"
	"math/bits"
)

// entropySink receives the Huffman symbols and extra bits of a scan
type entropySink interface {
	symbol(class, table int, sym byte)
	bits(v uint32, n int)
	restart(n int)
}

// tableFor returns the Huffman table used by component i
func tableFor(i int) int {
	if i == 0 {
		return 0
	}
	return 1
}

// walkScan feeds every block of the single output scan to sink, with a
// restart marker every img.restart MCUs
func (img *coeffImage) walkScan(sink entropySink) {
	resetPreds := func() {
		for _, c := range img.comps {
			c.pred = 0
		}
	}
	resetPreds()
	restartAt := func(m int) {
		if img.restart > 0 && m > 0 && m%img.restart == 0 {
			sink.restart(m/img.restart - 1)
			resetPreds()
		}
	}

	if len(img.comps) == 1 {
		c := img.comps[0]
		for i := range c.blocks {
			restartAt(i)
			encodeBlock(sink, c, &c.blocks[i], 0)
		}
		return
	}
	for my := 0; my < img.mcusY; my++ {
		for mx := 0; mx < img.mcusX; mx++ {
			restartAt(my*img.mcusX + mx)
			for i, c := range img.comps {
				for y := 0; y < c.v; y++ {
					for x := 0; x < c.h; x++ {
						encodeBlock(sink, c, c.at(mx*c.h+x, my*c.v+y), tableFor(i))
					}
				}
			}
		}
	}
}

// magnitude returns the JPEG category of v and the bits that encode it
func magnitude(v int32) (int, uint32) {
	a := v
	if a < 0 {
		a = -a
		v--
	}
	n := bits.Len32(uint32(a))
	return n, uint32(v) & (1<<uint(n) - 1)
}

func encodeBlock(sink entropySink, c *component, b *block, table int) {
	diff := int32(b[0]) - c.pred
	c.pred = int32(b[0])
	n, v := magnitude(diff)
	sink.symbol(0, table, byte(n))
	sink.bits(v, n)

	run := 0
	for k := 1; k < 64; k++ {
		coef := b[zigzag[k]]
		if coef == 0 {
			run++
			continue
		}
		for run > 15 {
			sink.symbol(1, table, 0xF0)
			run -= 16
		}
		n, v := magnitude(int32(coef))
		sink.symbol(1, table, byte(run<<4|n))
		sink.bits(v, n)
		run = 0
	}
	if run > 0 {
		sink.symbol(1, table, 0x00)
	}
}

// freqCounter gathers symbol statistics for optimized tables
type freqCounter struct {
	freq [2][2][257]int64 // class, table, symbol
}

func (f *freqCounter) symbol(class, table int, sym byte) { f.freq[class][table][sym]++ }
func (f *freqCounter) bits(uint32, int)                  {}
func (f *freqCounter) restart(int)                       {}

// huffWriter emits the entropy-coded scan
type huffWriter struct {
	w   bitWriter
	enc [2][2]*huffEncoder
}

func (h *huffWriter) symbol(class, table int, sym byte) {
	e := h.enc[class][table]
	h.w.write(uint32(e.code[sym]), int(e.size[sym]))
}

func (h *huffWriter) bits(v uint32, n int) { h.w.write(v, n) }

// restart pads the pending bits and emits RSTn, numbered modulo 8
func (h *huffWriter) restart(n int) {
	h.w.flush()
	h.w.out = append(h.w.out, 0xFF, rst0+byte(n%8))
}

// encode writes img as a sequential JPEG with one interleaved scan
func (img *coeffImage) encode() []byte {
	ntables := 1
	if len(img.comps) > 1 {
		ntables = 2
	}

	var counter freqCounter
	img.walkScan(&counter)
	var specs [2][2]huffSpec
	hw := &huffWriter{}
	for class := 0; class < 2; class++ {
		for t := 0; t < ntables; t++ {
			specs[class][t] = optimalTable(counter.freq[class][t])
			hw.enc[class][t] = newHuffEncoder(specs[class][t])
		}
	}
	img.walkScan(hw)
	hw.w.flush()

	out := []byte{0xFF, soi}
	for _, s := range img.segments {
		out = append(out, s...)
	}

	// DQT
	wide := false
	written := map[int]bool{}
	for _, c := range img.comps {
		if written[c.tq] || img.qt[c.tq] == nil {
			continue
		}
		written[c.tq] = true
		t := img.qt[c.tq]
		size := 64
		if t.wide {
			size = 128
			wide = true
		}
		out = appendMarker(out, dqt, 1+size)
		if t.wide {
			out = append(out, 0x10|byte(c.tq))
			for k := 0; k < 64; k++ {
				out = binary.BigEndian.AppendUint16(out, t.q[zigzag[k]])
			}
		} else {
			out = append(out, byte(c.tq))
			for k := 0; k < 64; k++ {
				out = append(out, byte(t.q[zigzag[k]]))
			}
		}
	}

	// SOF; 16-bit tables are not allowed in baseline frames
	sof := img.sof
	if wide {
		sof = sof1
	}
	out = appendMarker(out, sof, 6+3*len(img.comps))
	out = append(out, 8)
	out = binary.BigEndian.AppendUint16(out, uint16(img.height))
	out = binary.BigEndian.AppendUint16(out, uint16(img.width))
	out = append(out, byte(len(img.comps)))
	for _, c := range img.comps {
		out = append(out, c.id, byte(c.h<<4|c.v), byte(c.tq))
	}

	// DHT
	for class := 0; class < 2; class++ {
		for t := 0; t < ntables; t++ {
			s := specs[class][t]
			out = appendMarker(out, dht, 17+len(s.vals))
			out = append(out, byte(class<<4|t))
			out = append(out, s.counts[:]...)
			out = append(out, s.vals...)
		}
	}

	if img.restart > 0 {
		out = appendMarker(out, dri, 2)
		out = binary.BigEndian.AppendUint16(out, uint16(img.restart))
	}

	// SOS
	out = appendMarker(out, sos, 4+2*len(img.comps))
	out = append(out, byte(len(img.comps)))
	for i, c := range img.comps {
		t := byte(tableFor(i))
		out = append(out, c.id, t<<4|t)
	}
	out = append(out, 0, 63, 0)
	out = append(out, hw.w.out...)

	out = append(out, 0xFF, eoi)
	return append(out, img.trailer...)
}

// appendMarker appends a marker and the length field for a payload of n bytes
func appendMarker(out []byte, marker byte, n int) []byte {
	out = append(out, 0xFF, marker)
	return binary.BigEndian.AppendUint16(out, uint16(n+2))
}
