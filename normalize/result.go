package normalize

import (
	"time"

	"greg-hacke/photosnorm/formats"
	"greg-hacke/photosnorm/meta"
)

// Status is the outcome of one file
type Status int

const (
	StatusUnchanged Status = iota // processed, nothing to write
	StatusChanged                 // changes saved
	StatusSkipped                 // not an image, or nothing applicable
	StatusFailed
)

var statusNames = [...]string{"unchanged", "changed", "skipped", "failed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Result reports what happened to one input file
type Result struct {
	Path    string // path as expanded from the arguments
	NewPath string // path after a rename, empty otherwise
	Status  Status
	Changes meta.Changes
	Notes   []string
	Err     error
	Report  *Report // set by Info
}

func (r *Result) note(s string) {
	r.Notes = append(r.Notes, s)
}

// Report is the printable metadata of one image
type Report struct {
	Path        string
	Format      formats.Format
	Size        int64
	Width       int
	Height      int
	Date        time.Time
	HasDate     bool
	Description string
	Orientation string
	Camera      meta.CameraInfo
	Fields      []meta.Field // only when verbose
}

// Failed reports whether any result failed
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Count returns the number of results per status
func Count(results []Result) map[Status]int {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
