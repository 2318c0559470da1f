// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"cogentcore.org/glcompute/gldevice"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var groups string
	var sets, defines, images []string
	var repeat int
	var strict bool
	cmd := &cobra.Command{
		Use:   "run <definition>",
		Short: "Compile and dispatch a program on the OpenGL device",
		Long: "Compile and dispatch a program on the OpenGL device. Images given with --image " +
			"are created as RGBA32F textures bound to the named texture parameters, " +
			"and their mean value is printed after the dispatches.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, err := parseGroups(groups)
			if err != nil {
				return err
			}
			if repeat < 1 {
				return fmt.Errorf("invalid repeat count %d", repeat)
			}
			pr, err := openProgram(args[0])
			if err != nil {
				return err
			}
			pr.SetFailOnMissing(strict)
			for _, s := range sets {
				if err := setUniform(pr, s); err != nil {
					return err
				}
			}
			for _, d := range defines {
				name, val, err := parseDefine(d)
				if err != nil {
					return err
				}
				if err := pr.SetDefine(name, val); err != nil {
					return err
				}
			}

			cx, err := gldevice.NewContext()
			if err != nil {
				return err
			}
			defer cx.Release()
			dev := cx.Device
			defer pr.Release(dev)

			texs := map[string]*gldevice.Texture{}
			defer func() {
				for _, tx := range texs {
					tx.Delete()
				}
			}()
			for _, s := range images {
				name, size, err := parseImage(s)
				if err != nil {
					return err
				}
				un := pr.Uniform(name)
				if un == nil || !un.Kind().IsTexture() {
					return fmt.Errorf("image %s: the program has no texture parameter %s", name, name)
				}
				tx := gldevice.NewImage2D(size)
				texs[name] = tx
				if err := pr.Update(name, tx); err != nil {
					return err
				}
			}

			for i := range repeat {
				start := time.Now()
				if err := pr.Execute(dev, dev, gs[0], gs[1], gs[2]); err != nil {
					return err
				}
				cx.Finish()
				slog.Debug("dispatched", "program", pr.Name(), "run", i, "version", pr.Version(), "took", time.Since(start))
			}
			slog.Info("done", "program", pr.Name(), "runs", repeat, "groups", gs)
			for name, tx := range texs {
				printImage(cmd.OutOrStdout(), name, tx)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&groups, "groups", "g", "1,1,1", "number of work groups, as X,Y,Z")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "set a parameter, as NAME=VALUE")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "set a define, as NAME=VALUE or NAME")
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "create an image for a texture parameter, as NAME=WIDTHxHEIGHT")
	cmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "number of dispatches")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on parameters and defines the definition does not declare")
	return cmd
}

// printImage prints the mean RGBA value of the image.
func printImage(w io.Writer, name string, tx *gldevice.Texture) {
	px := tx.ReadRGBA32F()
	var sum [4]float64
	for i, v := range px {
		sum[i%4] += float64(v)
	}
	n := float64(max(len(px)/4, 1))
	fmt.Fprintf(w, "%s %dx%d mean: %.4g %.4g %.4g %.4g\n", name, tx.Size.X, tx.Size.Y, sum[0]/n, sum[1]/n, sum[2]/n, sum[3]/n)
}
