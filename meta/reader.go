package meta

import (
	"sort"

	"greg-hacke/photosnorm/tags"
)

// Field represents a single metadata field
type Field struct {
	Namespace   string // IFD name or "XMP"
	Key         string // Tag name or property
	Value       string // Formatted value
	Description string // Human-readable description
}

// ReadMetadata opens filename and lists its metadata fields
func ReadMetadata(filename string) ([]Field, error) {
	m, err := Open(filename)
	if err != nil {
		return nil, err
	}
	return m.Fields(), nil
}

// Fields lists every decodable EXIF entry by directory, then the XMP
// properties in name order
func (m *Metadata) Fields() []Field {
	var fields []Field
	if m.store != nil {
		for _, d := range m.store.IFDs() {
			for _, e := range d.Entries {
				if _, ok := m.store.Get(d.Name, e.Tag); !ok {
					continue
				}
				f := Field{Namespace: d.Name, Key: tags.Name(d.Name, e.Tag), Value: e.Format()}
				if def, ok := tags.GetTag(d.Name, e.Tag); ok {
					f.Description = def.Description
					if len(def.Values) > 0 {
						if v, ok := e.Uint(0); ok {
							f.Value = def.ValueName(v)
						}
					}
				}
				fields = append(fields, f)
			}
		}
	}

	if m.hasXMP {
		keys := make([]string, 0, len(m.xmp.Fields))
		for k := range m.xmp.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, Field{Namespace: "XMP", Key: k, Value: m.xmp.Fields[k]})
		}
	}
	return fields
}
