package meta

import (
	"testing"
	"time"
)

const namespacedPacket = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>` +
	`<x:xmpmeta xmlns:x="adobe:ns:meta/">` +
	`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
	`<rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
	`<xmp:CreateDate>2012-03-04T05:06:07-05:00</xmp:CreateDate>` +
	`<dc:title><rdf:Alt><rdf:li xml:lang="x-default">Harbour</rdf:li></rdf:Alt></dc:title>` +
	`</rdf:Description></rdf:RDF></x:xmpmeta><?xpacket end="r"?>`

func TestScanXMP_Namespaced(t *testing.T) {
	x, ok := scanXMP([]byte("JUNK" + namespacedPacket + "JUNK"))
	if !ok {
		t.Fatal("packet not found")
	}
	if _, ok := x.dates["xmp:CreateDate"]; !ok {
		t.Errorf("CreateDate not decoded by the RDF parser: %v", x.dates)
	}
	date, ok := x.Date()
	if !ok || !date.Equal(time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC)) {
		t.Errorf("date = %v, %v", date, ok)
	}
	if d, ok := x.Description(); !ok || d != "Harbour" {
		t.Errorf("description = %q, %v", d, ok)
	}
}

func TestScanXMP_WithoutWrapper(t *testing.T) {
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:Description exif:DateTimeOriginal="2001-02-03T04:05:06"/></x:xmpmeta>`
	x, ok := scanXMP([]byte(packet))
	if !ok {
		t.Fatal("packet not found")
	}
	date, ok := x.Date()
	if !ok || !date.Equal(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)) {
		t.Errorf("date = %v, %v", date, ok)
	}
}
