// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/shaderdef"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newSourceCmd() *cobra.Command {
	var version int
	var defines []string
	var color string
	cmd := &cobra.Command{
		Use:   "source <definition>",
		Short: "Print the assembled source of a program",
		Long: "Print the source of a program as it would be compiled: the version line, " +
			"the enabled defines and the body. Defines bound to parameters use the declared values.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pr, err := openProgram(args[0])
			if err != nil {
				return err
			}
			pr.SyncDefines()
			for _, d := range defines {
				name, val, err := parseDefine(d)
				if err != nil {
					return err
				}
				if err := pr.SetDefine(name, val); err != nil {
					return err
				}
			}
			if version == 0 {
				version = slices.Max(pr.Versions())
			}
			return printSource(cmd.OutOrStdout(), pr.AssembleSource(version), color)
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "version to assemble for (default the highest declared)")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "set a define, as NAME=VALUE or NAME")
	cmd.Flags().StringVar(&color, "color", "auto", "highlight the source: auto, always or never")
	return cmd
}

// openProgram loads the program of the definition file at the given path,
// which can start with ~.
func openProgram(filename string) (*compute.Program, error) {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return nil, err
	}
	df, fsys, err := shaderdef.Open(filename)
	if err != nil {
		return nil, err
	}
	return df.NewProgram(fsys)
}

// printSource writes the source, highlighted as GLSL when color is
// "always", or "auto" and the output is a color terminal.
func printSource(w io.Writer, src, color string) error {
	formatter := ""
	switch color {
	case "never":
	case "always":
		formatter = "terminal256"
	case "auto":
		if f, ok := w.(*os.File); ok {
			formatter = formatterFor(termenv.NewOutput(f).Profile)
		}
	default:
		return fmt.Errorf("invalid color mode %q", color)
	}
	if formatter == "" {
		_, err := io.WriteString(w, src)
		return err
	}
	return quick.Highlight(w, src, "glsl", formatter, "monokai")
}

// formatterFor returns the chroma terminal formatter for the color profile.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	}
	return ""
}
