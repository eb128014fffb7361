package main

import (
	"greg-hacke/photosnorm/display"

	"github.com/spf13/cobra"
)

var infoFlags struct {
	verbose bool
}

func newInfoCmd() *cobra.Command {
	infoFlags.verbose = false
	cmd := &cobra.Command{
		Use:   "info <FILES/FOLDERS>...",
		Short: "Print the metadata of images",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInfo,
	}
	cmd.Flags().BoolVarP(&infoFlags.verbose, "verbose", "v", false, "List every EXIF entry")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	results := newRunner().Info(cmd.Context(), args, infoFlags.verbose)
	display.Info(cmd.OutOrStdout(), results)
	return exitStatus(results)
}
