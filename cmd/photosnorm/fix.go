package main

import (
	"greg-hacke/photosnorm/display"
	"greg-hacke/photosnorm/normalize"

	"github.com/spf13/cobra"
)

var fixFlags struct {
	all         bool
	dimensions  bool
	name        bool
	orientation bool
}

func newFixCmd() *cobra.Command {
	fixFlags.all, fixFlags.dimensions, fixFlags.name, fixFlags.orientation = false, false, false, false
	cmd := &cobra.Command{
		Use:   "fix [-a] [-d] [-n] [-o] <FILES/FOLDERS>...",
		Short: "Fix dimensions, orientation and file names",
		Long: "Resync EXIF dimensions with the pixels, rotate JPEGs losslessly so that\n" +
			"the orientation tag is 1, and rename files after their capture date.\n" +
			"Without flags every fix is applied.",
		Args: cobra.MinimumNArgs(1),
		RunE: runFix,
	}
	f := cmd.Flags()
	f.BoolVarP(&fixFlags.all, "all", "a", false, "Apply every fix")
	f.BoolVarP(&fixFlags.dimensions, "dimensions", "d", false, "Fix EXIF image dimensions")
	f.BoolVarP(&fixFlags.name, "name", "n", false, "Rename files after their date and description")
	f.BoolVarP(&fixFlags.orientation, "orientation", "o", false, "Rotate JPEG pixels to match the orientation tag")
	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	req := normalize.FixRequest{
		Dimensions:  fixFlags.all || fixFlags.dimensions,
		Orientation: fixFlags.all || fixFlags.orientation,
		FileName:    fixFlags.all || fixFlags.name,
		Pattern:     settings.RenamePattern,
		Trim:        settings.Trim,
	}
	results := newRunner().Fix(cmd.Context(), args, req)
	display.Results(cmd.OutOrStdout(), results)
	return exitStatus(results)
}
