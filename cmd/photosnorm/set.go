package main

import (
	"greg-hacke/photosnorm/display"
	"greg-hacke/photosnorm/exif"
	"greg-hacke/photosnorm/normalize"

	"github.com/spf13/cobra"
)

var setFlags struct {
	text  string
	date  string
	force bool
}

func newSetCmd() *cobra.Command {
	setFlags.text, setFlags.date, setFlags.force = "", "", false
	cmd := &cobra.Command{
		Use:   "set [-t DESC] [-d DATE] [-f] <FILES/FOLDERS>...",
		Short: "Write a description and/or a date into EXIF",
		Long: "Write ImageDescription and/or DateTimeOriginal and CreateDate.\n" +
			"Dates are YYYY:MM:DD HH:MM:SS, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD.\n" +
			"With several files, tags already holding another value are kept unless --force is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: runSet,
	}
	f := cmd.Flags()
	f.StringVarP(&setFlags.text, "text", "t", "", "Description to write")
	f.StringVarP(&setFlags.date, "date", "d", "", "Capture date to write")
	f.BoolVarP(&setFlags.force, "force", "f", false, "Overwrite tags that are already set")
	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	req := normalize.SetRequest{Force: setFlags.force}
	if cmd.Flags().Changed("text") {
		req.Description = &setFlags.text
	}
	if cmd.Flags().Changed("date") {
		date, err := exif.ParseUserDate(setFlags.date)
		if err != nil {
			return err
		}
		req.Date = &date
	}

	results, err := newRunner().Set(cmd.Context(), args, req)
	if err != nil {
		return err
	}
	display.Results(cmd.OutOrStdout(), results)
	return exitStatus(results)
}
