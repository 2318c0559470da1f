// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaderdef

import (
	"fmt"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
	"cogentcore.org/glcompute/compute"
)

// Default returns the initial value of a parameter of the given kind that
// has no declared value: false, zero, zero vectors, identity matrices,
// empty arrays, and nil for textures.
func Default(kind compute.Kinds) any {
	switch kind {
	case compute.Bool:
		return false
	case compute.Int:
		return int32(0)
	case compute.Float:
		return float32(0)
	case compute.Vector2:
		return math32.Vector2{}
	case compute.Vector3:
		return math32.Vector3{}
	case compute.Vector4:
		return math32.Vector4{}
	case compute.Matrix3:
		return math32.Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	case compute.Matrix4:
		return math32.Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	case compute.IntArray:
		return []int32{}
	case compute.FloatArray:
		return []float32{}
	case compute.Vector2Array:
		return []math32.Vector2{}
	case compute.Vector3Array:
		return []math32.Vector3{}
	case compute.Vector4Array:
		return []math32.Vector4{}
	case compute.Matrix3Array:
		return []math32.Matrix3{}
	case compute.Matrix4Array:
		return []math32.Matrix4{}
	}
	return nil
}

// ParseValue returns the value of the given kind for a declared value,
// which is a string of space separated literals, a bool, a number, or a
// list of them. Vectors and matrices need exactly their number of
// components, and arrays any multiple of the element size.
// A nil value returns the [Default] for the kind.
func ParseValue(kind compute.Kinds, v any) (any, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%s: %w", kind, compute.ErrUnsupportedKind)
	}
	if v == nil {
		return Default(kind), nil
	}
	if kind.IsTexture() {
		return nil, fmt.Errorf("%s cannot have a declared value", kind)
	}
	fields, err := literals(v)
	if err != nil {
		return nil, err
	}
	switch kind {
	case compute.Bool:
		if err := count(fields, 1); err != nil {
			return nil, err
		}
		return strconv.ParseBool(fields[0])
	case compute.Int:
		if err := count(fields, 1); err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(i), nil
	case compute.IntArray:
		is := make([]int32, len(fields))
		for i, f := range fields {
			n, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return nil, err
			}
			is[i] = int32(n)
		}
		return is, nil
	}

	fs, err := floats(fields)
	if err != nil {
		return nil, err
	}
	el := kind.Elements()
	if kind.IsArray() {
		if len(fs)%el != 0 {
			return nil, fmt.Errorf("%s needs a multiple of %d values, found %d", kind, el, len(fs))
		}
	} else if err := count(fields, el); err != nil {
		return nil, err
	}
	n := len(fs) / el
	switch kind {
	case compute.Float:
		return fs[0], nil
	case compute.Vector2:
		return math32.Vec2(fs[0], fs[1]), nil
	case compute.Vector3:
		return math32.Vec3(fs[0], fs[1], fs[2]), nil
	case compute.Vector4:
		return math32.Vec4(fs[0], fs[1], fs[2], fs[3]), nil
	case compute.Matrix3:
		var m math32.Matrix3
		copy(m[:], fs)
		return m, nil
	case compute.Matrix4:
		var m math32.Matrix4
		copy(m[:], fs)
		return m, nil
	case compute.FloatArray:
		return fs, nil
	case compute.Vector2Array:
		vs := make([]math32.Vector2, n)
		for i := range vs {
			vs[i] = math32.Vec2(fs[2*i], fs[2*i+1])
		}
		return vs, nil
	case compute.Vector3Array:
		vs := make([]math32.Vector3, n)
		for i := range vs {
			vs[i] = math32.Vec3(fs[3*i], fs[3*i+1], fs[3*i+2])
		}
		return vs, nil
	case compute.Vector4Array:
		vs := make([]math32.Vector4, n)
		for i := range vs {
			vs[i] = math32.Vec4(fs[4*i], fs[4*i+1], fs[4*i+2], fs[4*i+3])
		}
		return vs, nil
	case compute.Matrix3Array:
		ms := make([]math32.Matrix3, n)
		for i := range ms {
			copy(ms[i][:], fs[9*i:])
		}
		return ms, nil
	case compute.Matrix4Array:
		ms := make([]math32.Matrix4, n)
		for i := range ms {
			copy(ms[i][:], fs[16*i:])
		}
		return ms, nil
	}
	return nil, fmt.Errorf("%s cannot have a declared value: %w", kind, compute.ErrUnsupportedKind)
}

// literals returns the literal fields of a declared value.
func literals(v any) ([]string, error) {
	switch v := v.(type) {
	case string:
		return strings.Fields(v), nil
	case []any:
		fs := make([]string, 0, len(v))
		for _, e := range v {
			sub, err := literals(e)
			if err != nil {
				return nil, err
			}
			fs = append(fs, sub...)
		}
		return fs, nil
	case bool, int, int64, uint64, float64:
		return []string{fmt.Sprint(v)}, nil
	}
	return nil, fmt.Errorf("invalid value %v of type %T", v, v)
}

func count(fields []string, n int) error {
	if len(fields) != n {
		return fmt.Errorf("wrong number of values (requires: %d, found: %d)", n, len(fields))
	}
	return nil
}

func floats(fields []string) ([]float32, error) {
	fs := make([]float32, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		fs[i] = float32(x)
	}
	return fs, nil
}
