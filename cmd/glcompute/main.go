// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command glcompute prints, inspects and runs compute program
// definition files.
package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

func init() {
	// OpenGL calls must all come from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "glcompute",
		Short:        "Print, inspect and run compute program definitions",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	root.AddCommand(newSourceCmd(), newCapsCmd(), newRunCmd())
	return root
}
