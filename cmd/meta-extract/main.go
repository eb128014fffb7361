// meta-extract prints every raw EXIF entry of a file, grouped by IFD.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/formats"
	"greg-hacke/photosnorm/meta"
	"greg-hacke/photosnorm/tags"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Dump the EXIF entries of an image\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	verbose := flag.Bool("v", false, "Verbose output")
	showTables := flag.Bool("tables", false, "Show available tag tables")
	flag.Parse()

	if *showTables {
		listTables(os.Stdout)
		return
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := dump(os.Stdout, flag.Arg(0), *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listTables(w io.Writer) {
	names := make([]string, 0, len(tags.AllTags))
	for name := range tags.AllTags {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Available tag tables:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s (%d tags)\n", name, len(tags.AllTags[name].Tags))
	}
}

// dump prints the EXIF block of the file at path
func dump(w io.Writer, path string, verbose bool) error {
	ft, err := meta.Identify(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(w, "File: %s\n", path)
		fmt.Fprintf(w, "Format: %s (%s, %s)\n", ft.Format, ft.MIME, ft.Category)
		fmt.Fprintf(w, "Size: %d bytes\n", len(data))
		fmt.Fprintln(w)
	}

	c, err := formats.GetContainer(ft.Format)
	if err != nil {
		return err
	}
	blob, err := c.Extract(data)
	if err != nil {
		return err
	}
	if blob == nil {
		fmt.Fprintln(w, "No metadata found")
		return nil
	}
	store, err := exif.Parse(blob)
	if err != nil {
		return err
	}

	for i, d := range store.IFDs() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s ===\n", d.Name)

		maxLen := 0
		for _, e := range d.Entries {
			maxLen = max(maxLen, len(tags.Name(d.Name, e.Tag)))
		}
		for _, e := range d.Entries {
			name := tags.Name(d.Name, e.Tag)
			value := "(undecodable)"
			if _, ok := store.Get(d.Name, e.Tag); ok {
				value = e.Format()
			}
			if !verbose {
				fmt.Fprintf(w, "%-*s : %s\n", maxLen, name, value)
				continue
			}
			fmt.Fprintf(w, "%-*s [0x%04X %s×%d] : %s", maxLen, name, e.Tag, e.Type, e.Count, value)
			if def, ok := tags.GetTag(d.Name, e.Tag); ok && def.Description != "" {
				fmt.Fprintf(w, " (%s)", def.Description)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
