// File: tags/types.go

package tags

import "fmt"

// TagTable represents the tags that may appear in a single IFD
type TagTable struct {
	IFD  string            // e.g. "IFD0", "ExifIFD", "GPS"
	Tags map[uint16]TagDef // Tag ID -> definition
}

// TagDef represents a single tag definition
type TagDef struct {
	ID          uint16            // Numeric tag ID
	Name        string            // Human-readable name
	Description string            // Tag description
	Format      string            // Preferred data format (e.g. "string", "int16u", "rational64u")
	IFD         string            // Directory the tag is written to
	Values      map[string]string // Value mappings (enums)
}

// AllTags consolidates all tag tables by IFD name
var AllTags = make(map[string]*TagTable)

// searchOrder is the order Find walks the tables in
var searchOrder = []string{IFD0, ExifIFD, InteropIFD, GPS}

// RegisterTagTable registers a tag table
func RegisterTagTable(ifd string, defs map[uint16]TagDef) {
	table := &TagTable{IFD: ifd, Tags: make(map[uint16]TagDef, len(defs))}
	for id, def := range defs {
		def.ID = id
		def.IFD = ifd
		table.Tags[id] = def
	}
	AllTags[ifd] = table
}

// GetTag retrieves a tag definition by IFD and ID
func GetTag(ifd string, id uint16) (TagDef, bool) {
	if ifd == IFD1 {
		ifd = IFD0
	}
	if table, ok := AllTags[ifd]; ok {
		tag, found := table.Tags[id]
		return tag, found
	}
	return TagDef{}, false
}

// Find looks a tag up in the image directories, IFD0 first.
// GPS ids overlap with IFD0 ids, so GPS tags should be fetched with GetTag.
func Find(id uint16) (TagDef, bool) {
	for _, ifd := range searchOrder {
		if tag, ok := GetTag(ifd, id); ok {
			return tag, true
		}
	}
	return TagDef{}, false
}

// Name returns the tag name, or a hex placeholder for unknown tags
func Name(ifd string, id uint16) string {
	if tag, ok := GetTag(ifd, id); ok {
		return tag.Name
	}
	return fmt.Sprintf("Tag_%04X", id)
}

// ValueName maps an enumerated value to its label, falling back to the raw value
func (d TagDef) ValueName(value any) string {
	key := fmt.Sprint(value)
	if mapped, ok := d.Values[key]; ok {
		return mapped
	}
	return key
}
