package exif

import (
	"fmt"
	"math"

	"greg-hacke/photosnorm/tags"
)

// writeOrder places child directories before the directories pointing to them
var writeOrder = []string{tags.InteropIFD, tags.GPS, tags.ExifIFD, tags.IFD1, tags.IFD0}

// writer appends to a copy of the original TIFF data
type writer struct {
	store *Store
	out   []byte
	at    map[*IFD]uint32
}

// Bytes serializes the store. The original data is the base: values and
// directories that did not change keep their offsets, changed values that
// fit their old slot are overwritten, everything else is appended.
// On success the store is reloaded from the returned bytes.
func (s *Store) Bytes() ([]byte, error) {
	w := &writer{
		store: s,
		out:   append([]byte(nil), s.raw...),
		at:    make(map[*IFD]uint32),
	}

	for _, name := range writeOrder {
		d, ok := s.ifds[name]
		if !ok {
			continue
		}
		off, err := w.writeIFD(d)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		w.at[d] = off
	}
	s.order.PutUint32(w.out[4:8], w.at[s.ifds[tags.IFD0]])

	fresh, err := Parse(w.out)
	if err != nil {
		return nil, fmt.Errorf("reloading written data: %w", err)
	}
	s.raw, s.ifds = fresh.raw, fresh.ifds
	return w.out, nil
}

// append adds b at the next word boundary and returns its offset
func (w *writer) append(b []byte) (uint32, error) {
	if len(w.out)%2 == 1 {
		w.out = append(w.out, 0)
	}
	if uint64(len(w.out))+uint64(len(b)) > math.MaxUint32 {
		return 0, fmt.Errorf("exif: data exceeds 4 GiB")
	}
	off := uint32(len(w.out))
	w.out = append(w.out, b...)
	return off, nil
}

// valueField places the value of e and returns the 4 byte value/offset field
func (w *writer) valueField(d *IFD, e *Entry) ([4]byte, error) {
	var field [4]byte
	order := w.store.order

	if e.opaque {
		return e.raw, nil
	}
	if sub, ok := d.subs[e.Tag]; ok {
		if e.Type != TypeLong && e.Type != TypeIFD {
			e.Type = TypeLong
		}
		e.Count = 1
		e.Value = make([]byte, 4)
		order.PutUint32(e.Value, w.at[sub])
	}

	n := len(e.Value)
	switch {
	case n <= 4:
		copy(field[:], e.Value)
	case !e.modified && e.valueOff != 0:
		order.PutUint32(field[:], e.valueOff)
	case e.valueOff != 0 && n <= e.capacity:
		slot := w.out[e.valueOff : int(e.valueOff)+e.capacity]
		copy(slot, e.Value)
		clear(slot[n:])
		order.PutUint32(field[:], e.valueOff)
	default:
		off, err := w.append(e.Value)
		if err != nil {
			return field, err
		}
		order.PutUint32(field[:], off)
	}
	return field, nil
}

func (w *writer) putEntry(b []byte, e *Entry, field [4]byte) {
	order := w.store.order
	order.PutUint16(b[0:2], e.Tag)
	order.PutUint16(b[2:4], uint16(e.Type))
	order.PutUint32(b[4:8], e.Count)
	copy(b[8:12], field[:])
}

// writeIFD writes one directory and returns its offset
func (w *writer) writeIFD(d *IFD) (uint32, error) {
	fields := make([][4]byte, len(d.Entries))
	for i, e := range d.Entries {
		f, err := w.valueField(d, e)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", tags.Name(d.Name, e.Tag), err)
		}
		fields[i] = f
	}

	next := d.nextOff
	if d.Name == tags.IFD0 {
		if ifd1, ok := w.store.ifds[tags.IFD1]; ok {
			next = w.at[ifd1]
		}
	}

	if d.dirty || d.pos < 0 {
		table := make([]byte, 2+entrySize*len(d.Entries)+4)
		w.store.order.PutUint16(table[0:2], uint16(len(d.Entries)))
		for i, e := range d.Entries {
			w.putEntry(table[2+entrySize*i:], e, fields[i])
		}
		w.store.order.PutUint32(table[len(table)-4:], next)
		return w.append(table)
	}

	// Same entry set: patch the table in place
	for i, e := range d.Entries {
		w.putEntry(w.out[e.pos:], e, fields[i])
	}
	nextPos := d.pos + 2 + entrySize*len(d.Entries)
	if nextPos+4 <= len(w.out) {
		w.store.order.PutUint32(w.out[nextPos:], next)
	}
	return uint32(d.pos), nil
}
