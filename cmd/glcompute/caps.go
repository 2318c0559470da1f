// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/gldevice"
	"cogentcore.org/glcompute/gldevice/glsl"
	"github.com/spf13/cobra"
)

func newCapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Print the OpenGL driver and the shading language versions it supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cx, err := gldevice.NewContext()
			if err != nil {
				return err
			}
			defer cx.Release()
			printCaps(cmd.OutOrStdout(), cx.Device)
			return nil
		},
	}
}

func printCaps(w io.Writer, dev *gldevice.Device) {
	fmt.Fprintf(w, "vendor:        %s\n", dev.Vendor)
	fmt.Fprintf(w, "renderer:      %s\n", dev.Renderer)
	fmt.Fprintf(w, "opengl:        %s\n", dev.GLVersion)
	fmt.Fprintf(w, "glsl:          %s\n", dev.Caps.Raw)
	fmt.Fprintf(w, "texture units: %d\n", dev.MaxTextureUnits)
	fmt.Fprintf(w, "image units:   %d\n", dev.MaxImageUnits)
	var names []string
	for _, v := range dev.Caps.Supported(compute.MinVersion) {
		names = append(names, glsl.Name(v))
	}
	fmt.Fprintf(w, "compute:       %s\n", strings.Join(names, " "))
}
