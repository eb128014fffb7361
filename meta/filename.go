package meta

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flytam/filenamify"
	"github.com/ncruces/go-strftime"
)

// DefaultPattern is the strftime pattern used to name files after their date
const DefaultPattern = "%Y_%m_%d-%H_%M_%S"

const maxNameBytes = 255

// TargetName builds "<date pattern>[ - description]<ext>", made safe for file systems
func TargetName(pattern string, date time.Time, description, ext string) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	name := strftime.Format(pattern, date)
	if d := strings.TrimSpace(description); d != "" {
		name += " - " + d
	}
	return SanitizeFileName(name + ext)
}

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeFileName makes name safe on common file systems. filenamify
// replaces reserved and control characters in the stem and the extension.
// Beyond that, '%' and invalid UTF-8 become '_', trailing dots and spaces
// are dropped and the name is cut to 255 bytes keeping the extension.
// Device names such as CON never come out bare.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || r == '%' {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	ext := filepath.Ext(name)
	stem := clean(strings.TrimRight(strings.TrimSuffix(name, ext), ". "))
	if ext != "" {
		ext = "." + clean(ext[1:])
	}
	stem = strings.TrimRight(stem, ". ")
	if reservedNames[strings.ToUpper(stem)] {
		stem = "_" + stem
	}
	if stem == "" {
		stem = "_"
	}
	for len(stem)+len(ext) > maxNameBytes && len(stem) > 1 {
		_, size := utf8.DecodeLastRuneInString(stem)
		stem = stem[:len(stem)-size]
	}
	return stem + ext
}

// clean runs filenamify on one part of a name
func clean(s string) string {
	if s == "" {
		return s
	}
	out, err := filenamify.Filenamify(s, filenamify.Options{Replacement: "_", MaxLength: 4 * maxNameBytes})
	if err != nil {
		// Only an invalid replacement fails
		return s
	}
	return out
}

// isVariantOf reports whether name is target or target with a " (N)" suffix
func isVariantOf(name, target string) bool {
	if name == target {
		return true
	}
	ext := filepath.Ext(target)
	rest, ok := strings.CutPrefix(name, strings.TrimSuffix(target, ext)+" (")
	if !ok {
		return false
	}
	digits, ok := strings.CutSuffix(rest, ")"+ext)
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolveName returns the path the file at current should move to. It
// reports false when the file already carries its target name.
func resolveName(current, target string) (string, bool, error) {
	dir := filepath.Dir(current)
	if isVariantOf(filepath.Base(current), target) {
		return current, false, nil
	}

	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	candidate := target
	for n := 1; n <= 10000; n++ {
		path := filepath.Join(dir, candidate)
		_, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, true, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("checking %s: %w", path, err)
		}
		candidate = SanitizeFileName(fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
	return "", false, fmt.Errorf("no free name for %s in %s", target, dir)
}
