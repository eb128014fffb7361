package exif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// DataType is a TIFF field type
type DataType uint16

const (
	TypeByte      DataType = 1
	TypeASCII     DataType = 2
	TypeShort     DataType = 3
	TypeLong      DataType = 4
	TypeRational  DataType = 5
	TypeSByte     DataType = 6
	TypeUndefined DataType = 7
	TypeSShort    DataType = 8
	TypeSLong     DataType = 9
	TypeSRational DataType = 10
	TypeFloat     DataType = 11
	TypeDouble    DataType = 12
	TypeIFD       DataType = 13
)

var typeSizes = map[DataType]int{
	TypeByte: 1, TypeASCII: 1, TypeShort: 2, TypeLong: 4, TypeRational: 8, TypeSByte: 1, TypeUndefined: 1,
	TypeSShort: 2, TypeSLong: 4, TypeSRational: 8, TypeFloat: 4, TypeDouble: 8, TypeIFD: 4,
}

var typeNames = map[DataType]string{
	TypeByte: "BYTE", TypeASCII: "ASCII", TypeShort: "SHORT", TypeLong: "LONG", TypeRational: "RATIONAL",
	TypeSByte: "SBYTE", TypeUndefined: "UNDEF", TypeSShort: "SSHORT", TypeSLong: "SLONG", TypeSRational: "SRATIONAL",
	TypeFloat: "FLOAT", TypeDouble: "DOUBLE", TypeIFD: "IFD",
}

// Size returns the size in bytes of one component, 0 for unknown types
func (t DataType) Size() int {
	return typeSizes[t]
}

func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// URational is an unsigned TIFF rational
type URational struct {
	Num, Den uint32
}

// Float64 returns the rational as a float, 0 when the denominator is 0
func (r URational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r URational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// SRational is a signed TIFF rational
type SRational struct {
	Num, Den int32
}

// Float64 returns the rational as a float, 0 when the denominator is 0
func (r SRational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r SRational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Entry is one IFD entry with its value bytes in the store's byte order
type Entry struct {
	Tag   uint16
	Type  DataType
	Count uint32
	Value []byte

	order    binary.ByteOrder
	pos      int    // offset of the 12 byte entry, -1 when new
	valueOff uint32 // offset of the out-of-line value, 0 when inline
	capacity int    // bytes reserved at valueOff
	raw      [4]byte
	opaque   bool // type or offset could not be decoded; written back as-is
	modified bool
}

// Len returns the byte length of the value
func (e *Entry) Len() int {
	return len(e.Value)
}

// String decodes an ASCII value up to the first NUL
func (e *Entry) String() string {
	v := e.Value
	if end := bytes.IndexByte(v, 0); end >= 0 {
		v = v[:end]
	}
	return string(v)
}

// Uint returns the i-th component of an unsigned integer value
func (e *Entry) Uint(i int) (uint32, bool) {
	size := e.Type.Size()
	if size == 0 || (i+1)*size > len(e.Value) {
		return 0, false
	}
	b := e.Value[i*size:]
	switch e.Type {
	case TypeByte, TypeUndefined:
		return uint32(b[0]), true
	case TypeShort:
		return uint32(e.order.Uint16(b)), true
	case TypeLong, TypeIFD:
		return e.order.Uint32(b), true
	}
	return 0, false
}

// Int returns the i-th component of a signed or unsigned integer value
func (e *Entry) Int(i int) (int64, bool) {
	size := e.Type.Size()
	if size == 0 || (i+1)*size > len(e.Value) {
		return 0, false
	}
	b := e.Value[i*size:]
	switch e.Type {
	case TypeSByte:
		return int64(int8(b[0])), true
	case TypeSShort:
		return int64(int16(e.order.Uint16(b))), true
	case TypeSLong:
		return int64(int32(e.order.Uint32(b))), true
	}
	v, ok := e.Uint(i)
	return int64(v), ok
}

// URational returns the i-th component of a RATIONAL value
func (e *Entry) URational(i int) (URational, bool) {
	if (e.Type != TypeRational && e.Type != TypeSRational) || (i+1)*8 > len(e.Value) {
		return URational{}, false
	}
	b := e.Value[i*8:]
	return URational{Num: e.order.Uint32(b[0:4]), Den: e.order.Uint32(b[4:8])}, true
}

// SRational returns the i-th component of an SRATIONAL value
func (e *Entry) SRational(i int) (SRational, bool) {
	if (e.Type != TypeRational && e.Type != TypeSRational) || (i+1)*8 > len(e.Value) {
		return SRational{}, false
	}
	b := e.Value[i*8:]
	return SRational{Num: int32(e.order.Uint32(b[0:4])), Den: int32(e.order.Uint32(b[4:8]))}, true
}

// Interface decodes the value into a Go value for display
func (e *Entry) Interface() any {
	switch e.Type {
	case TypeASCII:
		return e.String()
	case TypeUndefined:
		return e.Value
	case TypeByte, TypeShort, TypeLong, TypeIFD:
		return collect(e, e.Uint)
	case TypeSByte, TypeSShort, TypeSLong:
		return collect(e, e.Int)
	case TypeRational:
		return collect(e, e.URational)
	case TypeSRational:
		return collect(e, e.SRational)
	case TypeFloat:
		return collect(e, func(i int) (float32, bool) {
			if (i+1)*4 > len(e.Value) {
				return 0, false
			}
			return math.Float32frombits(e.order.Uint32(e.Value[i*4:])), true
		})
	case TypeDouble:
		return collect(e, func(i int) (float64, bool) {
			if (i+1)*8 > len(e.Value) {
				return 0, false
			}
			return math.Float64frombits(e.order.Uint64(e.Value[i*8:])), true
		})
	}
	return fmt.Sprintf("[%s×%d]", e.Type, e.Count)
}

// collect returns a single value for count 1, a slice otherwise
func collect[T any](e *Entry, at func(int) (T, bool)) any {
	if e.Count == 1 {
		v, _ := at(0)
		return v
	}
	vals := make([]T, 0, e.Count)
	for i := 0; i < int(e.Count); i++ {
		v, ok := at(i)
		if !ok {
			break
		}
		vals = append(vals, v)
	}
	return vals
}

// Format renders the value the way the dump tools print it
func (e *Entry) Format() string {
	switch v := e.Interface().(type) {
	case string:
		return v
	case []byte:
		if len(v) > 16 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("% X", v)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}
