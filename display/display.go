// Package display renders command results as terminal tables.
package display

import (
	"fmt"
	"io"
	"strings"

	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/normalize"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxValueWidth = 60

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	return t
}

// Dimensions formats a pixel size, "Unknown" when not decoded
func Dimensions(width, height int) string {
	if width == 0 || height == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%dx%d", width, height)
}

// Size formats a byte count for humans
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Info prints one key/value table per image report
func Info(w io.Writer, results []normalize.Result) {
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		rep := r.Report
		date := "No date!"
		if rep.HasDate {
			date = exif.FormatDateTime(rep.Date)
		}
		desc := rep.Description
		if desc == "" {
			desc = "-"
		}

		t := newTable(w)
		t.SetTitle(rep.Path)
		t.AppendRows([]table.Row{
			{"Format", rep.Format},
			{"Size", Size(rep.Size)},
			{"Dimensions", Dimensions(rep.Width, rep.Height)},
			{"Date", date},
			{"Description", desc},
			{"Orientation", rep.Orientation},
			{"Camera", rep.Camera.String()},
		})
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: maxValueWidth}})
		t.Render()

		if len(rep.Fields) > 0 {
			ft := newTable(w)
			ft.AppendHeader(table.Row{"IFD", "Tag", "Value"})
			for _, f := range rep.Fields {
				ft.AppendRow(table.Row{f.Namespace, f.Key, f.Value})
			}
			ft.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: maxValueWidth}})
			ft.Render()
		}
	}
}

// Results prints a row per file that changed, was skipped with a reason
// or failed, followed by the totals
func Results(w io.Writer, results []normalize.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"File", "Status", "Changes", "Details"})
	rows := 0
	for _, r := range results {
		if r.Status == normalize.StatusUnchanged || (r.Status == normalize.StatusSkipped && isNonImage(r)) {
			continue
		}
		details := strings.Join(r.Notes, "; ")
		if r.Err != nil {
			details = r.Err.Error()
		}
		if r.NewPath != "" {
			details = strings.TrimPrefix(strings.Join([]string{details, "→ " + r.NewPath}, "; "), "; ")
		}
		changes := ""
		if !r.Changes.Empty() {
			changes = r.Changes.String()
		}
		t.AppendRow(table.Row{r.Path, r.Status, changes, details})
		rows++
	}

	counts := normalize.Count(results)
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(results)),
		fmt.Sprintf("%d changed", counts[normalize.StatusChanged]),
		fmt.Sprintf("%d unchanged", counts[normalize.StatusUnchanged]),
		fmt.Sprintf("%d skipped, %d failed", counts[normalize.StatusSkipped], counts[normalize.StatusFailed]),
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
		{Number: 4, WidthMax: maxValueWidth},
	})
	t.Render()
}

// isNonImage reports whether a skipped result is a silently ignored file
func isNonImage(r normalize.Result) bool {
	return len(r.Notes) == 1 && r.Notes[0] == "not an image"
}
