package meta

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"greg-hacke/photosnorm/formats"
)

// FileType represents the identified file format
type FileType struct {
	Format   formats.Format
	MIME     string
	Category string // image, document, audio, video or archive
}

// Identify determines the type of the file at path from its content
func Identify(path string) (FileType, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileType{}, fmt.Errorf("file does not exist: %s", path)
		}
		return FileType{}, fmt.Errorf("cannot access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return FileType{}, fmt.Errorf("not a regular file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return FileType{}, fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	format, err := formats.Sniff(file)
	if err != nil {
		return FileType{}, fmt.Errorf("cannot identify %s: %w", path, err)
	}
	return FileType{Format: format, MIME: format.MIME(), Category: category(format)}, nil
}

// category groups a format the way its MIME type does
func category(f formats.Format) string {
	switch {
	case f.IsImage():
		return "image"
	case f == formats.FormatPDF:
		return "document"
	case f == formats.FormatMP3:
		return "audio"
	case f == formats.FormatMP4:
		return "video"
	case f == formats.FormatZIP, f == formats.FormatGZIP:
		return "archive"
	}
	return "unknown"
}
