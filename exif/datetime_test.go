package exif

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2006:10:29 16:27:21\x00")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2006, 10, 29, 16, 27, 21, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if s := FormatDateTime(got); s != "2006:10:29 16:27:21" {
		t.Errorf("FormatDateTime = %q", s)
	}
}

func TestParseDateTime_Incomplete(t *testing.T) {
	for _, in := range []string{"2001:01:01", "", "0000:00:00 00:00:00", "2001-01-01 01:01:01"} {
		if _, err := ParseDateTime(in); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDateTime(%q) err = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestParseUserDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2001:01:01 01:01:01", time.Date(2001, 1, 1, 1, 1, 1, 0, time.UTC)},
		{"2001-01-01 01:01:01", time.Date(2001, 1, 1, 1, 1, 1, 0, time.UTC)},
		{"2001-01-01T01:01:01", time.Date(2001, 1, 1, 1, 1, 1, 0, time.UTC)},
		{" 2002-02-02 ", time.Date(2002, 2, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUserDate(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseUserDate("2001:01:01"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("incomplete date accepted: %v", err)
	}
}
