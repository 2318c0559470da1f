// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/shaderdef"
)

// splitAssign splits a NAME=VALUE argument. The value is empty and ok is
// false if there is no =.
func splitAssign(s string) (name, value string, ok bool, err error) {
	name, value, ok = strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false, fmt.Errorf("missing name in %q", s)
	}
	return name, strings.TrimSpace(value), ok, nil
}

// parseDefine parses a --define argument. NAME alone defines it as 1,
// and NAME= leaves it undefined.
func parseDefine(s string) (string, any, error) {
	name, value, ok, err := splitAssign(s)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return name, 1, nil
	}
	if value == "" {
		return name, nil, nil
	}
	return name, parseLiteral(value), nil
}

// parseLiteral returns the int, float or bool value of a literal,
// or the literal itself.
func parseLiteral(s string) any {
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(i)
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return float32(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// setUniform applies a --set argument to the program. The value is parsed
// for the kind of the declared uniform, and a scalar literal declares a
// new uniform of its own kind.
func setUniform(pr *compute.Program, s string) error {
	name, value, ok, err := splitAssign(s)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("missing value in %q", s)
	}
	if un := pr.Uniform(name); un != nil {
		v, err := shaderdef.ParseValue(un.Kind(), value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		return pr.Update(name, v)
	}
	v := parseLiteral(value)
	kind, ok := compute.KindOf(v)
	if !ok || !kind.IsScalar() {
		return fmt.Errorf("setting %s: %q is not a scalar value, declare the parameter in the definition", name, value)
	}
	return pr.Set(name, kind, v)
}

// parseGroups parses the X,Y,Z number of work groups. Missing trailing
// counts are 1.
func parseGroups(s string) ([3]uint32, error) {
	gs := [3]uint32{1, 1, 1}
	fields := strings.Split(s, ",")
	if len(fields) > 3 {
		return gs, fmt.Errorf("invalid work groups %q: at most 3 counts", s)
	}
	for i, f := range fields {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
		if err != nil || n == 0 {
			return gs, fmt.Errorf("invalid work groups %q: counts must be positive integers", s)
		}
		gs[i] = uint32(n)
	}
	return gs, nil
}

// parseImage parses an --image NAME=WxH argument.
func parseImage(s string) (string, image.Point, error) {
	name, value, ok, err := splitAssign(s)
	if err != nil {
		return "", image.Point{}, err
	}
	w, h, found := strings.Cut(value, "x")
	if !ok || !found {
		return "", image.Point{}, fmt.Errorf("invalid image %q: want NAME=WIDTHxHEIGHT", s)
	}
	x, errx := strconv.Atoi(w)
	y, erry := strconv.Atoi(h)
	if errx != nil || erry != nil || x <= 0 || y <= 0 {
		return "", image.Point{}, fmt.Errorf("invalid image size in %q", s)
	}
	return name, image.Pt(x, y), nil
}
