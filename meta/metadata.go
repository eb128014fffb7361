package meta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/formats"
	"greg-hacke/photosnorm/jpegtran"
	"greg-hacke/photosnorm/tags"
)

// ErrNoDimensions is returned when the pixel size of an image cannot be read
var ErrNoDimensions = errors.New("meta: image dimensions unavailable")

// Metadata is one opened image file. It is not safe for concurrent use.
type Metadata struct {
	path   string
	mode   fs.FileMode
	format formats.Format
	data   []byte

	container formats.Container // nil when the format cannot carry EXIF
	store     *exif.Store       // nil when the file has no EXIF
	xmp       XMP
	hasXMP    bool

	width, height int

	target  string // new base name, set by FixFileName
	changes Changes
}

// SaveOptions controls how Save writes the file
type SaveOptions struct {
	// Lock is held while a rename target is chosen and written
	Lock sync.Locker
}

// Open reads and parses the image at path. Files that are not images fail
// with formats.ErrUnknownFormat or formats.ErrNotImage.
func Open(path string) (*Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	format := formats.SniffBytes(data)
	if format == formats.FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, formats.ErrUnknownFormat)
	}
	if !format.IsImage() {
		return nil, fmt.Errorf("%s (%s): %w", path, format.MIME(), formats.ErrNotImage)
	}

	m := &Metadata{path: path, mode: info.Mode().Perm(), format: format, data: data}
	// Formats without a registered decoder (HEIF, AVIF) have no dimensions
	var derr error
	m.width, m.height, derr = formats.Dimensions(data)
	if derr != nil && format == formats.FormatJPEG {
		// Sampling layouts image/jpeg rejects, such as transposed 4:1:1
		if res, err := jpegtran.Apply(data, jpegtran.None, jpegtran.Options{}); err == nil {
			m.width, m.height = res.Width, res.Height
		}
	}

	c, err := formats.GetContainer(format)
	switch {
	case errors.Is(err, formats.ErrNoContainer):
	case err != nil:
		return nil, err
	default:
		m.container = c
		blob, err := c.Extract(data)
		if err != nil {
			return nil, fmt.Errorf("%s: locating EXIF: %w", path, err)
		}
		if blob != nil {
			if m.store, err = exif.Parse(blob); err != nil {
				return nil, fmt.Errorf("%s: parsing EXIF: %w", path, err)
			}
		}
	}

	m.xmp, m.hasXMP = scanXMP(data)
	return m, nil
}

// Path returns the current location of the file
func (m *Metadata) Path() string { return m.path }

// Format returns the detected file format
func (m *Metadata) Format() formats.Format { return m.format }

// Width returns the decoded pixel width, 0 when unknown
func (m *Metadata) Width() int { return m.width }

// Height returns the decoded pixel height, 0 when unknown
func (m *Metadata) Height() int { return m.height }

// Size returns the size of the file content in bytes
func (m *Metadata) Size() int64 { return int64(len(m.data)) }

// HasEXIF reports whether the file carries an EXIF block
func (m *Metadata) HasEXIF() bool { return m.store != nil }

// Store returns the parsed EXIF block, nil when absent
func (m *Metadata) Store() *exif.Store { return m.store }

// XMP returns the XMP properties found in the file
func (m *Metadata) XMP() (XMP, bool) { return m.xmp, m.hasXMP }

// Changes returns the changes not saved yet
func (m *Metadata) Changes() Changes { return m.changes }

// ExifDate returns the capture date recorded in EXIF: DateTimeOriginal,
// then CreateDate. Incomplete dates are ignored.
func (m *Metadata) ExifDate() (time.Time, bool) {
	if m.store == nil {
		return time.Time{}, false
	}
	for _, tag := range []uint16{tags.DateTimeOriginal, tags.CreateDate} {
		if s, ok := m.store.GetString(tag); ok {
			if t, err := exif.ParseDateTime(s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Date returns the capture date from EXIF, falling back to XMP
func (m *Metadata) Date() (time.Time, bool) {
	if t, ok := m.ExifDate(); ok {
		return t, true
	}
	if m.hasXMP {
		return m.xmp.Date()
	}
	return time.Time{}, false
}

// ExifDescription returns the ImageDescription tag, trimmed
func (m *Metadata) ExifDescription() string {
	if m.store == nil {
		return ""
	}
	s, _ := m.store.GetString(tags.ImageDescription)
	return strings.TrimSpace(s)
}

// Description returns the image description from EXIF, falling back to XMP
func (m *Metadata) Description() string {
	if d := m.ExifDescription(); d != "" {
		return d
	}
	if m.hasXMP {
		if d, ok := m.xmp.Description(); ok {
			return strings.TrimSpace(d)
		}
	}
	return ""
}

// Orientation returns the EXIF orientation, 1 when absent or out of range
func (m *Metadata) Orientation() int {
	if m.store == nil {
		return 1
	}
	v, ok := m.store.GetUint(tags.Orientation)
	if !ok || v < 1 || v > 8 {
		return 1
	}
	return int(v)
}

// OrientationName labels the orientation
func (m *Metadata) OrientationName() string {
	return tags.OrientationNames[strconv.Itoa(m.Orientation())]
}

// Camera returns the shooting parameters recorded in EXIF
func (m *Metadata) Camera() CameraInfo {
	return readCameraInfo(m.store)
}

// writableStore returns the EXIF store, creating an empty one when the
// format can carry EXIF but the file has none
func (m *Metadata) writableStore() (*exif.Store, error) {
	if m.store != nil {
		return m.store, nil
	}
	if m.container == nil {
		return nil, fmt.Errorf("%s: %w", m.format, formats.ErrNoContainer)
	}
	m.store = exif.New(binary.LittleEndian)
	return m.store, nil
}

// SetDescription writes ImageDescription. It reports false when the tag
// already holds desc.
func (m *Metadata) SetDescription(desc string) (bool, error) {
	desc = strings.TrimSpace(desc)
	if m.store != nil {
		if cur, ok := m.store.GetString(tags.ImageDescription); ok && strings.TrimSpace(cur) == desc {
			return false, nil
		}
	}
	s, err := m.writableStore()
	if err != nil {
		return false, err
	}
	if err := s.SetString(tags.ImageDescription, desc); err != nil {
		return false, fmt.Errorf("setting description: %w", err)
	}
	m.changes |= ChangeDescription
	return true, nil
}

// SetDate writes DateTimeOriginal and CreateDate. It reports false when
// both already hold t.
func (m *Metadata) SetDate(t time.Time) (bool, error) {
	value := exif.FormatDateTime(t)
	if m.store != nil {
		same := true
		for _, tag := range []uint16{tags.DateTimeOriginal, tags.CreateDate} {
			cur, _ := m.store.GetString(tag)
			same = same && strings.TrimRight(cur, "\x00 ") == value
		}
		if same {
			return false, nil
		}
	}
	s, err := m.writableStore()
	if err != nil {
		return false, err
	}
	for _, tag := range []uint16{tags.DateTimeOriginal, tags.CreateDate} {
		if err := s.SetString(tag, value); err != nil {
			return false, fmt.Errorf("setting %s: %w", tags.Name(tags.ExifIFD, tag), err)
		}
	}
	m.changes |= ChangeDate
	return true, nil
}

// SetDateFromEXIF parses an EXIF formatted date and writes it
func (m *Metadata) SetDateFromEXIF(value string) (bool, error) {
	t, err := exif.ParseDateTime(value)
	if err != nil {
		return false, err
	}
	return m.SetDate(t)
}

// FixDimensions resyncs ExifImageWidth and ExifImageHeight with the decoded
// pixel size. Files without EXIF are left alone.
func (m *Metadata) FixDimensions() (bool, error) {
	if m.width == 0 || m.height == 0 {
		return false, fmt.Errorf("%s: %w", m.format, ErrNoDimensions)
	}
	if m.store == nil {
		return false, nil
	}
	w, wok := m.store.GetUint(tags.ExifImageWidth)
	h, hok := m.store.GetUint(tags.ExifImageHeight)
	if wok && hok && int(w) == m.width && int(h) == m.height {
		return false, nil
	}
	if err := m.store.SetLong(tags.ExifImageWidth, uint32(m.width)); err != nil {
		return false, fmt.Errorf("setting width: %w", err)
	}
	if err := m.store.SetLong(tags.ExifImageHeight, uint32(m.height)); err != nil {
		return false, fmt.Errorf("setting height: %w", err)
	}
	m.changes |= ChangeDimensions
	return true, nil
}

// FixOrientation rotates the pixels of a JPEG losslessly so that the
// orientation tag can be reset to 1. Other formats with a non-identity
// orientation fail with jpegtran.ErrUnsupported.
func (m *Metadata) FixOrientation(opts jpegtran.Options) (bool, error) {
	o := m.Orientation()
	if o == 1 {
		return false, nil
	}
	if m.format != formats.FormatJPEG {
		return false, fmt.Errorf("%w: orientation %d on %s", jpegtran.ErrUnsupported, o, m.format)
	}

	res, err := jpegtran.Apply(m.data, jpegtran.FromOrientation(o), opts)
	if err != nil {
		return false, fmt.Errorf("rotating: %w", err)
	}
	if err := m.store.SetShort(tags.Orientation, 1); err != nil {
		return false, fmt.Errorf("resetting orientation: %w", err)
	}
	m.data, m.width, m.height = res.Data, res.Width, res.Height
	m.changes |= ChangeOrientation
	return true, nil
}

// FixFileName schedules a rename to the date pattern. Files without a
// date, or already named after it, are not renamed.
func (m *Metadata) FixFileName(pattern string) (bool, error) {
	date, ok := m.Date()
	if !ok {
		return false, nil
	}
	target := TargetName(pattern, date, m.Description(), filepath.Ext(m.path))
	if isVariantOf(filepath.Base(m.path), target) {
		return false, nil
	}
	m.target = target
	m.changes |= ChangeFileName
	return true, nil
}

// Save writes the pending changes and returns them. The file content is
// replaced atomically; a rename picks a free name under opts.Lock.
func (m *Metadata) Save(opts SaveOptions) (Changes, error) {
	if m.changes.Empty() {
		return 0, nil
	}

	data := m.data
	contentChanged := m.changes&^ChangeFileName != 0
	if contentChanged && m.store != nil {
		blob, err := m.store.Bytes()
		if err != nil {
			return 0, fmt.Errorf("serializing EXIF: %w", err)
		}
		if data, err = m.container.Embed(data, blob); err != nil {
			return 0, fmt.Errorf("embedding EXIF: %w", err)
		}
	}

	changes := m.changes
	if !changes.Has(ChangeFileName) {
		if err := writeFileAtomic(m.path, data, m.mode); err != nil {
			return 0, err
		}
		m.data, m.changes = data, 0
		return changes, nil
	}

	if opts.Lock != nil {
		opts.Lock.Lock()
		defer opts.Lock.Unlock()
	}
	dest, rename, err := resolveName(m.path, m.target)
	if err != nil {
		return 0, err
	}
	switch {
	case !rename:
		changes &^= ChangeFileName
		if contentChanged {
			if err := writeFileAtomic(m.path, data, m.mode); err != nil {
				return 0, err
			}
		}
	case contentChanged:
		if err := writeFileAtomic(dest, data, m.mode); err != nil {
			return 0, err
		}
		if err := os.Remove(m.path); err != nil {
			return 0, fmt.Errorf("removing %s after rename: %w", m.path, err)
		}
	default:
		if err := os.Rename(m.path, dest); err != nil {
			return 0, fmt.Errorf("renaming %s: %w", m.path, err)
		}
	}

	m.path, m.data, m.target, m.changes = dest, data, "", 0
	return changes, nil
}
