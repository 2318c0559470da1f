// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compute manages OpenGL compute programs: typed uniforms, defines
// injected into the source, lazy recompilation and dispatch.
package compute

//go:generate core generate

import (
	"image/color"

	"cogentcore.org/core/math32"
)

// See: https://www.khronos.org/opengl/wiki/Data_Type_(GLSL)

// Kinds is the closed set of uniform value kinds that a [Program]
// knows how to store and upload.
type Kinds int32 //enums:enum

const (
	UndefinedKind Kinds = iota

	Bool
	Int
	Float

	Vector2
	Vector3

	// Vector4 accepts [math32.Vector4], [math32.Quat] and [color.RGBA],
	// which all share the same packed layout.
	Vector4

	Matrix3
	Matrix4

	IntArray
	FloatArray
	Vector2Array
	Vector3Array
	Vector4Array
	Matrix3Array
	Matrix4Array

	Texture2D
	Texture3D
	TextureArray
	TextureCubeMap
)

// kindElements is the packed element count of one element of each kind.
var kindElements = [KindsN]int{
	Bool:           1,
	Int:            1,
	Float:          1,
	Vector2:        2,
	Vector3:        3,
	Vector4:        4,
	Matrix3:        9,
	Matrix4:        16,
	IntArray:       1,
	FloatArray:     1,
	Vector2Array:   2,
	Vector3Array:   3,
	Vector4Array:   4,
	Matrix3Array:   9,
	Matrix4Array:   16,
	Texture2D:      1,
	Texture3D:      1,
	TextureArray:   1,
	TextureCubeMap: 1,
}

// IsValid returns true if this is one of the defined kinds.
func (k Kinds) IsValid() bool {
	return k > UndefinedKind && k < KindsN
}

// Elements returns the number of packed scalar components in one element
// of this kind: 16 for a Matrix4 or Matrix4Array, 1 for scalars and textures.
func (k Kinds) Elements() int {
	if !k.IsValid() {
		return 0
	}
	return kindElements[k]
}

// IsScalar returns true for Bool, Int and Float.
func (k Kinds) IsScalar() bool {
	return k == Bool || k == Int || k == Float
}

// IsArray returns true for the homogeneous array kinds.
func (k Kinds) IsArray() bool {
	return k >= IntArray && k <= Matrix4Array
}

// IsTexture returns true for the texture handle kinds.
func (k Kinds) IsTexture() bool {
	return k >= Texture2D && k <= TextureCubeMap
}

// usesFloats returns true if values of this kind are packed into a float buffer.
func (k Kinds) usesFloats() bool {
	switch k {
	case Matrix3, Matrix4, FloatArray, Vector2Array, Vector3Array, Vector4Array, Matrix3Array, Matrix4Array:
		return true
	}
	return false
}

// KindOf returns the kind for the given Go value, and false if the
// value does not correspond to any kind.
func KindOf(v any) (Kinds, bool) {
	switch v.(type) {
	case bool:
		return Bool, true
	case int, int32:
		return Int, true
	case float32, float64:
		return Float, true
	case math32.Vector2, *math32.Vector2:
		return Vector2, true
	case math32.Vector3, *math32.Vector3:
		return Vector3, true
	case math32.Vector4, *math32.Vector4, math32.Quat, *math32.Quat, color.RGBA, *color.RGBA:
		return Vector4, true
	case math32.Matrix3, *math32.Matrix3:
		return Matrix3, true
	case math32.Matrix4, *math32.Matrix4:
		return Matrix4, true
	case []int32, []int:
		return IntArray, true
	case []float32:
		return FloatArray, true
	case []math32.Vector2:
		return Vector2Array, true
	case []math32.Vector3:
		return Vector3Array, true
	case []math32.Vector4:
		return Vector4Array, true
	case []math32.Matrix3:
		return Matrix3Array, true
	case []math32.Matrix4:
		return Matrix4Array, true
	case Texture:
		return Texture2D, true
	}
	return UndefinedKind, false
}
