package meta

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestTargetName(t *testing.T) {
	date := time.Date(2006, 10, 29, 16, 27, 21, 0, time.UTC)
	tests := []struct {
		name    string
		pattern string
		desc    string
		ext     string
		want    string
	}{
		{"with description", DefaultPattern, "A fun picture!", ".jpg", "2006_10_29-16_27_21 - A fun picture!.jpg"},
		{"no description", DefaultPattern, "  ", ".JPG", "2006_10_29-16_27_21.JPG"},
		{"default pattern", "", "", ".png", "2006_10_29-16_27_21.png"},
		{"custom pattern", "%Y/%m/%d", "", ".jpg", "2006_10_29.jpg"},
		{"unsafe description", DefaultPattern, `a:b*c?d`, ".jpg", "2006_10_29-16_27_21 - a_b_c_d.jpg"},
		{"percent", "%Y", "100% sure", ".jpg", "2006 - 100_ sure.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetName(tt.pattern, date, tt.desc, tt.ext); got != tt.want {
				t.Errorf("TargetName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.jpg", "plain.jpg"},
		{"tab\there.jpg", "tab_here.jpg"},
		{"a<b>c.jpg", "a_b_c.jpg"},
		{"trailing. .jpg", "trailing.jpg"},
		{".jpg", "_.jpg"},
		{"bad\xffbyte.jpg", "bad_byte.jpg"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, device := range []string{"CON.jpg", "nul.png", "Lpt1.jpg"} {
		got := SanitizeFileName(device)
		stem := strings.TrimSuffix(got, filepath.Ext(got))
		if reservedNames[strings.ToUpper(stem)] {
			t.Errorf("SanitizeFileName(%q) = %q, still a device name", device, got)
		}
	}

	long := SanitizeFileName(strings.Repeat("é", 200) + ".jpg")
	if len(long) > maxNameBytes || !utf8.ValidString(long) || !strings.HasSuffix(long, ".jpg") {
		t.Errorf("long name not truncated cleanly: %d bytes, %q", len(long), long)
	}
}

func TestIsVariantOf(t *testing.T) {
	target := "2006_10_29-16_27_21 - A fun picture!.jpg"
	tests := []struct {
		name string
		want bool
	}{
		{target, true},
		{"2006_10_29-16_27_21 - A fun picture! (1).jpg", true},
		{"2006_10_29-16_27_21 - A fun picture! (12).jpg", true},
		{"2006_10_29-16_27_21 - A fun picture! (x).jpg", false},
		{"2006_10_29-16_27_21 - A fun picture! ().jpg", false},
		{"2006_10_29-16_27_21 - A fun picture! (1).png", false},
		{"2006_10_29-16_27_21.jpg", false},
		{"IMG_0001.jpg", false},
	}
	for _, tt := range tests {
		if got := isVariantOf(tt.name, target); got != tt.want {
			t.Errorf("isVariantOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
