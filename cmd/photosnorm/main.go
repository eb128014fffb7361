// PhotosNorm inspects and normalizes photo metadata in place.
//
// Usage:
//
//	PhotosNorm info <FILES/FOLDERS>...
//	PhotosNorm set [-t DESC] [-d DATE] [-f] <FILES/FOLDERS>...
//	PhotosNorm fix [-a] [-d] [-n] [-o] <FILES/FOLDERS>...
//	PhotosNorm help [COMMAND]...
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
