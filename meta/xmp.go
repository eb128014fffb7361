package meta

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"seehuhn.de/go/xmp"
)

// XMP holds the XMP properties used when EXIF has no value
type XMP struct {
	Fields map[string]string // "dc:description" -> value

	dates map[string]time.Time // dates decoded by the RDF parser
}

// xmpDateProperties map the date properties to their namespaces, in the
// order they are preferred
var xmpDateProperties = []struct {
	key, namespace, name string
}{
	{"exif:DateTimeOriginal", "http://ns.adobe.com/exif/1.0/", "DateTimeOriginal"},
	{"photoshop:DateCreated", "http://ns.adobe.com/photoshop/1.0/", "DateCreated"},
	{"xmp:CreateDate", "http://ns.adobe.com/xap/1.0/", "CreateDate"},
}

// xmpProperties are the properties read from an XMP packet
var xmpProperties = []string{
	"dc:description",
	"dc:title",
	"dc:creator",
	"photoshop:DateCreated",
	"xmp:CreateDate",
	"exif:DateTimeOriginal",
}

// xmpDateLayouts are the ISO 8601 forms found in XMP dates
var xmpDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var rdfItem = regexp.MustCompile(`(?s)<rdf:li[^>]*>(.*?)</rdf:li>`)

// scanXMP looks for an XMP packet anywhere in the file
func scanXMP(data []byte) (XMP, bool) {
	start := bytes.Index(data, []byte("<?xpacket begin="))
	if start < 0 {
		// Some writers omit the packet wrapper
		start = bytes.Index(data, []byte("<x:xmpmeta"))
		if start < 0 {
			return XMP{}, false
		}
	}
	end := bytes.Index(data[start:], []byte("<?xpacket end="))
	if end < 0 {
		closing := []byte("</x:xmpmeta>")
		if end = bytes.Index(data[start:], closing); end >= 0 {
			end += len(closing)
		}
	}
	if end <= 0 {
		return XMP{}, false
	}
	packet := data[start : start+end]

	x := XMP{Fields: make(map[string]string), dates: parseXMPDates(packet)}
	for _, prop := range xmpProperties {
		if v, ok := xmpValue(packet, prop); ok {
			x.Fields[prop] = v
		}
	}
	return x, true
}

// parseXMPDates decodes the date properties of a well-formed packet.
// Packets the RDF parser rejects yield nil.
func parseXMPDates(packet []byte) map[string]time.Time {
	p, err := xmp.Read(bytes.NewReader(packet))
	if err != nil {
		return nil
	}
	dates := make(map[string]time.Time)
	for _, prop := range xmpDateProperties {
		d, err := xmp.GetValue[xmp.Date](p, prop.namespace, prop.name)
		if err != nil || d.V.IsZero() {
			continue
		}
		dates[prop.key] = d.V
	}
	return dates
}

// xmpValue extracts a property written as an element or as an attribute
func xmpValue(packet []byte, prop string) (string, bool) {
	open := "<" + prop + ">"
	if idx := bytes.Index(packet, []byte(open)); idx >= 0 {
		rest := packet[idx+len(open):]
		if endIdx := bytes.Index(rest, []byte("</"+prop+">")); endIdx >= 0 {
			value := string(rest[:endIdx])
			// Language alternatives and sequences hold the value in rdf:li
			if m := rdfItem.FindStringSubmatch(value); m != nil {
				value = m[1]
			}
			value = strings.TrimSpace(value)
			if value != "" && !strings.Contains(value, "<") {
				return unescapeXML(value), true
			}
		}
	}

	attr := prop + `="`
	if idx := bytes.Index(packet, []byte(attr)); idx >= 0 {
		rest := packet[idx+len(attr):]
		if endIdx := bytes.IndexByte(rest, '"'); endIdx > 0 {
			return unescapeXML(strings.TrimSpace(string(rest[:endIdx]))), true
		}
	}
	return "", false
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// Description returns dc:description, falling back to dc:title
func (x XMP) Description() (string, bool) {
	for _, prop := range []string{"dc:description", "dc:title"} {
		if v, ok := x.Fields[prop]; ok {
			return v, true
		}
	}
	return "", false
}

// Date returns the first parseable creation date. The wall clock time is
// kept and the zone dropped, as EXIF dates carry none.
func (x XMP) Date() (time.Time, bool) {
	for _, prop := range xmpDateProperties {
		if t, ok := x.dates[prop.key]; ok {
			return wallClock(t), true
		}
		v, ok := x.Fields[prop.key]
		if !ok {
			continue
		}
		for _, layout := range xmpDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return wallClock(t), true
			}
		}
	}
	return time.Time{}, false
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
