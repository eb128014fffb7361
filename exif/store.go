package exif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"greg-hacke/photosnorm/tags"
)

var (
	// ErrInvalidHeader is returned when the data does not start with a TIFF header
	ErrInvalidHeader = errors.New("exif: invalid TIFF header")
	// ErrUnknownTag is returned when a tag has no known home directory
	ErrUnknownTag = errors.New("exif: unknown tag")
)

const (
	maxEntries = 1000 // Sanity check on entry counts
	entrySize  = 12
)

// subIFDs lists the pointer tags followed while parsing, per parent IFD
var subIFDs = map[string]map[uint16]string{
	tags.IFD0:    {tags.ExifIFDPointer: tags.ExifIFD, tags.GPSIFDPointer: tags.GPS},
	tags.ExifIFD: {tags.InteropIFDPointer: tags.InteropIFD},
}

// parentOf maps a sub-IFD to the directory and tag that point to it
var parentOf = map[string]struct {
	ifd string
	tag uint16
}{
	tags.ExifIFD:    {tags.IFD0, tags.ExifIFDPointer},
	tags.GPS:        {tags.IFD0, tags.GPSIFDPointer},
	tags.InteropIFD: {tags.ExifIFD, tags.InteropIFDPointer},
}

// IFD is an Image File Directory
type IFD struct {
	Name    string
	Entries []*Entry // sorted by tag

	pos     int // offset in the TIFF data, -1 when new
	nextOff uint32
	dirty   bool // entry set changed, the table must be rewritten
	next    *IFD
	subs    map[uint16]*IFD
}

// Entry returns the entry with the given tag
func (d *IFD) Entry(tag uint16) (*Entry, bool) {
	i := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].Tag >= tag })
	if i < len(d.Entries) && d.Entries[i].Tag == tag {
		return d.Entries[i], true
	}
	return nil, false
}

func (d *IFD) insert(e *Entry) {
	i := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].Tag >= e.Tag })
	d.Entries = append(d.Entries, nil)
	copy(d.Entries[i+1:], d.Entries[i:])
	d.Entries[i] = e
	d.dirty = true
}

func (d *IFD) remove(tag uint16) bool {
	for i, e := range d.Entries {
		if e.Tag == tag {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			d.dirty = true
			return true
		}
	}
	return false
}

// Store holds a parsed TIFF/EXIF structure. Unmodified bytes keep their
// offsets when the store is serialized again.
type Store struct {
	order binary.ByteOrder
	raw   []byte
	ifds  map[string]*IFD
}

// New creates an empty store with the given byte order
func New(order binary.ByteOrder) *Store {
	raw := make([]byte, 8)
	if order == binary.BigEndian {
		copy(raw, "MM")
	} else {
		order = binary.LittleEndian
		copy(raw, "II")
	}
	order.PutUint16(raw[2:4], 42)
	s := &Store{order: order, raw: raw, ifds: make(map[string]*IFD)}
	s.ifds[tags.IFD0] = &IFD{Name: tags.IFD0, pos: -1, dirty: true}
	return s
}

// Parse parses TIFF-formatted EXIF data. The slice is copied.
func Parse(data []byte) (*Store, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHeader, len(data))
	}

	// Check byte order
	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: byte order %q", ErrInvalidHeader, data[:2])
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidHeader)
	}

	s := &Store{order: order, raw: append([]byte(nil), data...), ifds: make(map[string]*IFD)}
	p := &ifdParser{store: s, seen: make(map[uint32]bool)}

	ifd0, err := p.parse(tags.IFD0, order.Uint32(data[4:8]))
	if err != nil {
		return nil, err
	}
	s.ifds[tags.IFD0] = ifd0

	// IFD1 holds the thumbnail; nothing past it is followed
	if ifd0.nextOff != 0 {
		if ifd1, err := p.parse(tags.IFD1, ifd0.nextOff); err == nil {
			ifd0.next = ifd1
			s.ifds[tags.IFD1] = ifd1
		}
	}
	return s, nil
}

type ifdParser struct {
	store *Store
	seen  map[uint32]bool
}

// parse parses an Image File Directory and the sub-directories it points to
func (p *ifdParser) parse(name string, offset uint32) (*IFD, error) {
	data, order := p.store.raw, p.store.order
	if uint64(offset)+2 > uint64(len(data)) || offset < 8 {
		return nil, fmt.Errorf("exif: %s offset %d out of bounds", name, offset)
	}
	if p.seen[offset] {
		return nil, fmt.Errorf("exif: %s offset %d already visited", name, offset)
	}
	p.seen[offset] = true

	numEntries := int(order.Uint16(data[offset : offset+2]))
	if numEntries > maxEntries {
		return nil, fmt.Errorf("exif: %s has %d entries", name, numEntries)
	}

	ifd := &IFD{Name: name, pos: int(offset)}
	pos := int(offset) + 2
	for i := 0; i < numEntries; i++ {
		if pos+entrySize > len(data) {
			// Truncated table, rewrite it from the entries that survived
			ifd.dirty = true
			break
		}
		ifd.Entries = append(ifd.Entries, p.entry(pos))
		pos += entrySize
	}
	sort.SliceStable(ifd.Entries, func(i, j int) bool { return ifd.Entries[i].Tag < ifd.Entries[j].Tag })

	if pos+4 <= len(data) {
		ifd.nextOff = order.Uint32(data[pos : pos+4])
	}

	for tag, subName := range subIFDs[name] {
		e, ok := ifd.Entry(tag)
		if !ok {
			continue
		}
		off, ok := e.Uint(0)
		if !ok {
			continue
		}
		sub, err := p.parse(subName, off)
		if err != nil {
			// A dangling pointer is kept as an ordinary entry
			continue
		}
		if ifd.subs == nil {
			ifd.subs = make(map[uint16]*IFD)
		}
		ifd.subs[tag] = sub
		p.store.ifds[subName] = sub
	}
	return ifd, nil
}

// entry decodes the 12 byte entry at pos
func (p *ifdParser) entry(pos int) *Entry {
	data, order := p.store.raw, p.store.order
	e := &Entry{
		Tag:   order.Uint16(data[pos : pos+2]),
		Type:  DataType(order.Uint16(data[pos+2 : pos+4])),
		Count: order.Uint32(data[pos+4 : pos+8]),
		order: order,
		pos:   pos,
	}
	copy(e.raw[:], data[pos+8:pos+12])

	size := uint64(e.Type.Size()) * uint64(e.Count)
	switch {
	case e.Type.Size() == 0:
		e.opaque = true
	case size <= 4:
		e.Value = append([]byte(nil), data[pos+8:pos+8+int(size)]...)
	default:
		off := order.Uint32(data[pos+8 : pos+12])
		if uint64(off)+size > uint64(len(data)) {
			e.opaque = true
			return e
		}
		e.valueOff = off
		e.capacity = int(size)
		e.Value = append([]byte(nil), data[off:uint64(off)+size]...)
	}
	return e
}

// ByteOrder returns the byte order of the TIFF data
func (s *Store) ByteOrder() binary.ByteOrder {
	return s.order
}

// IFD returns the directory with the given name
func (s *Store) IFD(name string) (*IFD, bool) {
	d, ok := s.ifds[name]
	return d, ok
}

// IFDs returns the parsed directories in file order of importance
func (s *Store) IFDs() []*IFD {
	var out []*IFD
	for _, name := range []string{tags.IFD0, tags.ExifIFD, tags.GPS, tags.InteropIFD, tags.IFD1} {
		if d, ok := s.ifds[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Get returns the entry for tag in the named IFD
func (s *Store) Get(ifd string, tag uint16) (*Entry, bool) {
	d, ok := s.ifds[ifd]
	if !ok {
		return nil, false
	}
	e, ok := d.Entry(tag)
	if !ok || e.opaque {
		return nil, false
	}
	return e, true
}

// Lookup returns the entry for a tag in the IFD the tag dictionary assigns it to
func (s *Store) Lookup(tag uint16) (*Entry, bool) {
	def, ok := tags.Find(tag)
	if !ok {
		return nil, false
	}
	return s.Get(def.IFD, tag)
}

// Len returns the number of entries across all directories
func (s *Store) Len() int {
	n := 0
	for _, d := range s.ifds {
		n += len(d.Entries)
	}
	return n
}

// ensureIFD returns the named IFD, creating it and its parent pointer when missing
func (s *Store) ensureIFD(name string) (*IFD, error) {
	if d, ok := s.ifds[name]; ok {
		return d, nil
	}
	link, ok := parentOf[name]
	if !ok {
		return nil, fmt.Errorf("exif: cannot create %s", name)
	}
	parent, err := s.ensureIFD(link.ifd)
	if err != nil {
		return nil, err
	}

	d := &IFD{Name: name, pos: -1, dirty: true}
	if old, ok := parent.Entry(link.tag); ok {
		// Pointer entry exists but did not resolve; reuse it
		old.Type, old.Count, old.opaque = TypeLong, 1, false
		old.Value = make([]byte, 4)
		old.modified = true
	} else {
		parent.insert(&Entry{Tag: link.tag, Type: TypeLong, Count: 1, Value: make([]byte, 4), order: s.order, pos: -1, modified: true})
	}
	if parent.subs == nil {
		parent.subs = make(map[uint16]*IFD)
	}
	parent.subs[link.tag] = d
	s.ifds[name] = d
	return d, nil
}

// Set stores a value for tag in the named IFD, adding the entry when missing
func (s *Store) Set(ifd string, tag uint16, typ DataType, count uint32, value []byte) error {
	if typ.Size() == 0 || typ.Size()*int(count) != len(value) {
		return fmt.Errorf("exif: %s value of %d bytes does not match %d×%s", tags.Name(ifd, tag), len(value), count, typ)
	}
	d, err := s.ensureIFD(ifd)
	if err != nil {
		return err
	}
	if e, ok := d.Entry(tag); ok {
		e.Type, e.Count, e.opaque = typ, count, false
		e.Value = append([]byte(nil), value...)
		e.modified = true
		return nil
	}
	d.insert(&Entry{
		Tag: tag, Type: typ, Count: count,
		Value: append([]byte(nil), value...),
		order: s.order, pos: -1, modified: true,
	})
	return nil
}

// Delete removes tag from the named IFD
func (s *Store) Delete(ifd string, tag uint16) bool {
	d, ok := s.ifds[ifd]
	if !ok {
		return false
	}
	if _, isPointer := d.subs[tag]; isPointer {
		return false
	}
	return d.remove(tag)
}

func (s *Store) home(tag uint16) (string, error) {
	def, ok := tags.Find(tag)
	if !ok {
		return "", fmt.Errorf("%w: 0x%04X", ErrUnknownTag, tag)
	}
	return def.IFD, nil
}

// SetString writes an ASCII tag in its home IFD
func (s *Store) SetString(tag uint16, value string) error {
	ifd, err := s.home(tag)
	if err != nil {
		return err
	}
	b := append([]byte(value), 0)
	return s.Set(ifd, tag, TypeASCII, uint32(len(b)), b)
}

// SetShort writes a single SHORT tag in its home IFD
func (s *Store) SetShort(tag uint16, value uint16) error {
	ifd, err := s.home(tag)
	if err != nil {
		return err
	}
	b := make([]byte, 2)
	s.order.PutUint16(b, value)
	return s.Set(ifd, tag, TypeShort, 1, b)
}

// SetLong writes a single LONG tag in its home IFD
func (s *Store) SetLong(tag uint16, value uint32) error {
	ifd, err := s.home(tag)
	if err != nil {
		return err
	}
	b := make([]byte, 4)
	s.order.PutUint32(b, value)
	return s.Set(ifd, tag, TypeLong, 1, b)
}

// SetURational writes a single RATIONAL tag in its home IFD
func (s *Store) SetURational(tag uint16, value URational) error {
	ifd, err := s.home(tag)
	if err != nil {
		return err
	}
	b := make([]byte, 8)
	s.order.PutUint32(b[0:4], value.Num)
	s.order.PutUint32(b[4:8], value.Den)
	return s.Set(ifd, tag, TypeRational, 1, b)
}

// SetSRational writes a single SRATIONAL tag in its home IFD
func (s *Store) SetSRational(tag uint16, value SRational) error {
	ifd, err := s.home(tag)
	if err != nil {
		return err
	}
	b := make([]byte, 8)
	s.order.PutUint32(b[0:4], uint32(value.Num))
	s.order.PutUint32(b[4:8], uint32(value.Den))
	return s.Set(ifd, tag, TypeSRational, 1, b)
}

// GetString reads an ASCII tag from its home IFD
func (s *Store) GetString(tag uint16) (string, bool) {
	e, ok := s.Lookup(tag)
	if !ok || e.Type != TypeASCII {
		return "", false
	}
	return e.String(), true
}

// GetUint reads the first component of an integer tag from its home IFD
func (s *Store) GetUint(tag uint16) (uint32, bool) {
	e, ok := s.Lookup(tag)
	if !ok {
		return 0, false
	}
	return e.Uint(0)
}

// GetURational reads the first component of a RATIONAL tag from its home IFD
func (s *Store) GetURational(tag uint16) (URational, bool) {
	e, ok := s.Lookup(tag)
	if !ok {
		return URational{}, false
	}
	return e.URational(0)
}

// GetSRational reads the first component of an SRATIONAL tag from its home IFD
func (s *Store) GetSRational(tag uint16) (SRational, bool) {
	e, ok := s.Lookup(tag)
	if !ok {
		return SRational{}, false
	}
	return e.SRational(0)
}
