// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glsl parses the shading language version reported by an
// OpenGL driver into the set of GLSL versions it supports.
package glsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Known are all of the desktop GLSL versions, in increasing order.
var Known = []int{110, 120, 130, 140, 150, 330, 400, 410, 420, 430, 440, 450, 460}

// Capabilities are the shading language versions supported by a driver.
// It implements compute.Capabilities.
type Capabilities struct {
	// Version is the highest supported version, e.g., 450.
	Version int

	// Raw is the version string reported by the driver.
	Raw string
}

// Parse parses a driver shading language version string, such as
// "4.50 NVIDIA" or "4.60 (Core Profile) Mesa 23.2.1". The first field
// that is a valid version number is used.
func Parse(s string) (*Capabilities, error) {
	for _, f := range strings.Fields(s) {
		v, err := semver.NewVersion(f)
		if err != nil {
			continue
		}
		minor := int(v.Minor())
		if minor < 10 {
			minor *= 10
		}
		return &Capabilities{Version: int(v.Major())*100 + minor, Raw: s}, nil
	}
	return nil, fmt.Errorf("glsl: no version number in %q", s)
}

// SupportsVersion returns true if the version is a known GLSL version
// no higher than the highest supported one.
func (cp *Capabilities) SupportsVersion(version int) bool {
	return version <= cp.Version && slices.Contains(Known, version)
}

// Supported returns all supported versions at or above the given minimum.
func (cp *Capabilities) Supported(minVersion int) []int {
	var vs []int
	for _, v := range Known {
		if v >= minVersion && cp.SupportsVersion(v) {
			vs = append(vs, v)
		}
	}
	return vs
}

// ParseName parses a version name as used in definition files,
// e.g., "GLSL430", into its number.
func ParseName(name string) (int, error) {
	num, ok := strings.CutPrefix(strings.ToUpper(name), "GLSL")
	if !ok {
		return 0, fmt.Errorf("glsl: version %q must start with GLSL", name)
	}
	var v int
	if _, err := fmt.Sscanf(num, "%d", &v); err != nil || fmt.Sprint(v) != num {
		return 0, fmt.Errorf("glsl: invalid version %q", name)
	}
	return v, nil
}

// Name returns the definition file name of the version, e.g., "GLSL430".
func Name(version int) string {
	return fmt.Sprintf("GLSL%d", version)
}
