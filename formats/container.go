// File: formats/container.go

package formats

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoContainer is returned for formats that cannot carry an EXIF block
	ErrNoContainer = errors.New("no EXIF container for format")
	// ErrSegmentTooLarge is returned when the EXIF block does not fit its container
	ErrSegmentTooLarge = errors.New("EXIF block too large for container")
)

// Container locates and replaces the TIFF/EXIF block inside a file
type Container interface {
	// Extract returns the TIFF data, or nil when the file carries none
	Extract(data []byte) ([]byte, error)
	// Embed returns a copy of data carrying tiff as its EXIF block
	Embed(data, tiff []byte) ([]byte, error)
}

var (
	containersMu sync.RWMutex
	containers   = make(map[Format]Container)
)

// RegisterContainer registers the EXIF container for a format
func RegisterContainer(f Format, c Container) {
	containersMu.Lock()
	defer containersMu.Unlock()
	containers[f] = c
}

// GetContainer returns the EXIF container for the given format
func GetContainer(f Format) (Container, error) {
	containersMu.RLock()
	defer containersMu.RUnlock()
	c, ok := containers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContainer, f)
	}
	return c, nil
}

// exifHeader prefixes the TIFF data in JPEG APP1 segments
const exifHeader = "Exif\x00\x00"
