package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"greg-hacke/photosnorm/tags"

	"github.com/google/go-cmp/cmp"
)

// newFixture returns TIFF data with an unknown IFD0 tag, a maker note and a date
func newFixture(t *testing.T) []byte {
	t.Helper()
	s := New(binary.LittleEndian)
	must(t, s.SetString(tags.Make, "Canon"))
	must(t, s.SetString(tags.Model, "Canon PowerShot A400"))
	must(t, s.SetShort(tags.Orientation, 6))
	must(t, s.Set(tags.IFD0, 0xC4A5, TypeUndefined, 20, bytes.Repeat([]byte{0xAB}, 20)))
	must(t, s.Set(tags.ExifIFD, tags.MakerNote, TypeUndefined, 10, []byte("MAKERNOTE!")))
	must(t, s.SetString(tags.DateTimeOriginal, "2006:10:29 16:27:21"))
	must(t, s.SetURational(tags.ExposureTime, URational{1, 32}))
	data, err := s.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return data
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestParse_InvalidHeader(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("XX*\x00\x08\x00\x00\x00"), []byte("II\x2b\x00\x08\x00\x00\x00")} {
		if _, err := Parse(data); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidHeader", data, err)
		}
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, err := Parse(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]any{}
	if v, ok := s.GetString(tags.Model); ok {
		got["model"] = v
	}
	if v, ok := s.GetUint(tags.Orientation); ok {
		got["orientation"] = v
	}
	if v, ok := s.GetString(tags.DateTimeOriginal); ok {
		got["date"] = v
	}
	if v, ok := s.GetURational(tags.ExposureTime); ok {
		got["exposure"] = v.String()
	}
	want := map[string]any{
		"model":       "Canon PowerShot A400",
		"orientation": uint32(6),
		"date":        "2006:10:29 16:27:21",
		"exposure":    "1/32",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_PreservesUntouchedOffsets(t *testing.T) {
	base := newFixture(t)
	s, err := Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	note, _ := s.Get(tags.ExifIFD, tags.MakerNote)
	unknown, _ := s.Get(tags.IFD0, 0xC4A5)
	noteOff, unknownOff := note.valueOff, unknown.valueOff

	// Adding a tag rewrites IFD0 but must not move existing values
	must(t, s.SetString(tags.ImageDescription, "A fun picture!"))
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[noteOff:noteOff+10], []byte("MAKERNOTE!")) {
		t.Errorf("maker note moved or changed: % X", out[noteOff:noteOff+10])
	}
	if !bytes.Equal(out[unknownOff:unknownOff+20], bytes.Repeat([]byte{0xAB}, 20)) {
		t.Errorf("unknown tag value changed")
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	note2, ok := again.Get(tags.ExifIFD, tags.MakerNote)
	if !ok || note2.valueOff != noteOff {
		t.Errorf("maker note offset = %d, want %d", note2.valueOff, noteOff)
	}
	if desc, _ := again.GetString(tags.ImageDescription); desc != "A fun picture!" {
		t.Errorf("description = %q", desc)
	}
	if model, _ := again.GetString(tags.Model); model != "Canon PowerShot A400" {
		t.Errorf("model = %q", model)
	}
}

func TestStore_OverwriteInPlace(t *testing.T) {
	base := newFixture(t)
	s, err := Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	ifd0, _ := s.IFD(tags.IFD0)
	pos := ifd0.pos

	must(t, s.SetString(tags.Make, "Nikon"))
	must(t, s.SetShort(tags.Orientation, 1))
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(base) {
		t.Errorf("len = %d, want %d (nothing appended)", len(out), len(base))
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); int(got) != pos {
		t.Errorf("IFD0 moved from %d to %d", pos, got)
	}
	if mk, _ := s.GetString(tags.Make); mk != "Nikon" {
		t.Errorf("make = %q", mk)
	}
}

func TestStore_OpaqueEntryPreserved(t *testing.T) {
	data := []byte{
		'I', 'I', 42, 0, 8, 0, 0, 0,
		1, 0, // one entry
		0xCD, 0xAB, 99, 0, 5, 0, 0, 0, 0x44, 0x33, 0x22, 0x11,
		0, 0, 0, 0,
	}
	s, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(tags.IFD0, 0xABCD); ok {
		t.Error("opaque entry should not be decodable")
	}
	must(t, s.SetString(tags.ImageDescription, "x"))
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	ifd0, _ := again.IFD(tags.IFD0)
	e, ok := ifd0.Entry(0xABCD)
	if !ok {
		t.Fatal("opaque entry lost")
	}
	if diff := cmp.Diff([4]byte{0x44, 0x33, 0x22, 0x11}, e.raw); diff != "" {
		t.Errorf("raw field mismatch:\n%s", diff)
	}
	if e.Type != 99 || e.Count != 5 {
		t.Errorf("type/count = %d/%d", e.Type, e.Count)
	}
}

func TestStore_KeepsThumbnailDirectory(t *testing.T) {
	data := []byte{
		'M', 'M', 0, 42, 0, 0, 0, 8,
		0, 1,
		0x01, 0x12, 0, 3, 0, 0, 0, 1, 0, 6, 0, 0,
		0, 0, 0, 26,
		0, 1,
		0x02, 0x02, 0, 4, 0, 0, 0, 1, 0, 0, 0, 4,
		0, 0, 0, 0,
	}
	s, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if s.ByteOrder() != binary.BigEndian {
		t.Fatal("byte order not detected")
	}
	must(t, s.SetString(tags.ImageDescription, "a description longer than four bytes"))
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[:2], []byte("MM")) {
		t.Errorf("byte order changed: %q", out[:2])
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	thumb, ok := again.Get(tags.IFD1, tags.ThumbnailLength)
	if !ok {
		t.Fatal("IFD1 lost")
	}
	if v, _ := thumb.Uint(0); v != 4 {
		t.Errorf("thumbnail length = %d", v)
	}
	if o, _ := again.GetUint(tags.Orientation); o != 6 {
		t.Errorf("orientation = %d", o)
	}
}

func TestStore_CreatesExifIFD(t *testing.T) {
	s := New(binary.BigEndian)
	if _, ok := s.IFD(tags.ExifIFD); ok {
		t.Fatal("new store should not have an ExifIFD")
	}
	must(t, s.SetLong(tags.ExifImageWidth, 640))
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := again.Get(tags.IFD0, tags.ExifIFDPointer); !ok {
		t.Error("IFD0 has no ExifIFD pointer")
	}
	if w, _ := again.GetUint(tags.ExifImageWidth); w != 640 {
		t.Errorf("ExifImageWidth = %d", w)
	}
}

func TestStore_SetRejectsMismatchedLength(t *testing.T) {
	s := New(binary.LittleEndian)
	if err := s.Set(tags.IFD0, tags.Orientation, TypeShort, 2, []byte{1, 0}); err == nil {
		t.Error("expected error for short value")
	}
	if err := s.SetString(0xFFFE, "x"); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("err = %v, want ErrUnknownTag", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s, err := Parse(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if s.Delete(tags.IFD0, tags.ExifIFDPointer) {
		t.Error("sub-IFD pointer must not be deletable")
	}
	if !s.Delete(tags.IFD0, tags.Orientation) {
		t.Fatal("Delete returned false")
	}
	out, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Parse(out)
	if _, ok := again.GetUint(tags.Orientation); ok {
		t.Error("orientation still present")
	}
	if d, _ := again.GetString(tags.DateTimeOriginal); d != "2006:10:29 16:27:21" {
		t.Errorf("date = %q", d)
	}
}

func TestEntry_Format(t *testing.T) {
	s, err := Parse(newFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		ifd  string
		tag  uint16
		want string
	}{
		{tags.IFD0, tags.Make, "Canon"},
		{tags.IFD0, tags.Orientation, "6"},
		{tags.IFD0, 0xC4A5, "[20 bytes]"},
		{tags.ExifIFD, tags.MakerNote, "4D 41 4B 45 52 4E 4F 54 45 21"},
		{tags.ExifIFD, tags.ExposureTime, "1/32"},
	}
	for _, tt := range tests {
		e, ok := s.Get(tt.ifd, tt.tag)
		if !ok {
			t.Errorf("%s missing", tags.Name(tt.ifd, tt.tag))
			continue
		}
		if got := e.Format(); got != tt.want {
			t.Errorf("%s = %q, want %q", tags.Name(tt.ifd, tt.tag), got, tt.want)
		}
	}
}
