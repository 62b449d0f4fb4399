// Command-line launcher for a single adaptation run.
// Usage:
//
//	cli [corruption] [method] [num_sample]
//
// With fewer than two arguments the run uses the default parameters
// (snow/bnm/100000). The dataset root is read from DATADIR. The resolved
// parameters are printed before the script starts; the script's exit
// status becomes this process's exit status.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/763021701/ttt-plus-plus/adaptation/internal/launcher"
)

func main() {
	cfg := launcher.Resolve(os.Args[1:])
	fmt.Print(cfg.Summary())

	err := launcher.New().Launch(context.Background(), cfg)
	if err != nil {
		if !launcher.Exited(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(launcher.ExitCode(err))
	}
}
