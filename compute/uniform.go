// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"fmt"
	"image/color"
	"math"

	"cogentcore.org/core/math32"
)

// Uniform is a named, typed parameter of a [Program]. The value is owned by
// the uniform: arrays and matrices are copied in and never aliased, and
// values are packed into a reusable buffer for upload.
// The Kind is fixed when the uniform is created.
type Uniform struct {
	// name of the uniform in the shader source
	name string

	// kind of value, immutable
	kind Kinds

	// isSet is false when the uniform holds no value.
	isSet bool

	// store is the owned storage for the current value. Scalars and textures
	// are stored directly, vectors and matrices by pointer so they can be
	// updated in place. Array values live only in the packed buffers.
	// The storage is kept when the value is unset, for reuse.
	store any

	// number of elements of an array value
	n int

	// packed float buffer for matrix and float based array kinds,
	// grown but never shrunk
	floats []float32

	// packed int buffer for IntArray, grown but never shrunk
	ints []int32

	// staging value for Vector4, shared by all of its representations
	vec4 [4]float32

	uploadNeeded bool
}

// NewUniform returns a new [Uniform] with no value, which needs upload.
func NewUniform(name string, kind Kinds) *Uniform {
	return &Uniform{name: name, kind: kind, uploadNeeded: true}
}

// Name returns the name of the uniform.
func (un *Uniform) Name() string { return un.name }

// Kind returns the kind of the uniform.
func (un *Uniform) Kind() Kinds { return un.kind }

// IsSet returns true if the uniform currently holds a value.
func (un *Uniform) IsSet() bool { return un.isSet }

// IsUploadNeeded returns true if the value must be pushed to the device
// before the next dispatch.
func (un *Uniform) IsUploadNeeded() bool { return un.uploadNeeded }

// ClearUploadNeeded clears the upload flag. It is called by the [Program]
// right after the value has been uploaded.
func (un *Uniform) ClearUploadNeeded() { un.uploadNeeded = false }

// String returns the name and kind of the uniform.
func (un *Uniform) String() string {
	return fmt.Sprintf("Uniform[name:%s, kind:%s]", un.name, un.kind)
}

// SetValue sets the value using the uniform's own kind. See [Uniform.SetKindValue].
func (un *Uniform) SetValue(val any) error {
	return un.SetKindValue(un.kind, val)
}

// SetKindValue sets the value, which must be of the given kind, and the
// kind must be the kind of the uniform. A nil value unsets the uniform.
// On a mismatch, an error wrapping [ErrTypeMismatch] is returned and the
// uniform is not modified.
func (un *Uniform) SetKindValue(kind Kinds, val any) error {
	val = deref(val)
	if val == nil {
		if un.isSet {
			un.uploadNeeded = true
		}
		un.isSet = false
		un.n = 0
		return nil
	}
	if kind != un.kind {
		return fmt.Errorf("compute: %s: expected %s, received %s: %w", un, un.kind, kind, ErrTypeMismatch)
	}
	ok := true
	switch un.kind {
	case Bool:
		var v bool
		if v, ok = val.(bool); ok {
			un.setScalar(v)
		}
	case Int:
		switch v := val.(type) {
		case int32:
			un.setScalar(v)
		case int:
			if v < math.MinInt32 || v > math.MaxInt32 {
				return un.rangeError(v)
			}
			un.setScalar(int32(v))
		default:
			ok = false
		}
	case Float:
		switch v := val.(type) {
		case float32:
			un.setScalar(v)
		case float64:
			un.setScalar(float32(v))
		default:
			ok = false
		}
	case Vector2:
		var v math32.Vector2
		if v, ok = val.(math32.Vector2); ok {
			setInPlace(un, v)
		}
	case Vector3:
		var v math32.Vector3
		if v, ok = val.(math32.Vector3); ok {
			setInPlace(un, v)
		}
	case Vector4:
		ok = un.setVector4(val)
	case Matrix3:
		var m math32.Matrix3
		if m, ok = val.(math32.Matrix3); ok && setInPlace(un, m) {
			copy(un.growFloats(9), m[:])
		}
	case Matrix4:
		var m math32.Matrix4
		if m, ok = val.(math32.Matrix4); ok && setInPlace(un, m) {
			copy(un.growFloats(16), m[:])
		}
	case IntArray:
		switch v := val.(type) {
		case []int32:
			copy(un.growInts(len(v)), v)
		case []int:
			for _, x := range v {
				if x < math.MinInt32 || x > math.MaxInt32 {
					return un.rangeError(x)
				}
			}
			buf := un.growInts(len(v))
			for i, x := range v {
				buf[i] = int32(x)
			}
		default:
			ok = false
		}
		if ok {
			un.setArray(len(un.ints))
		}
	case FloatArray:
		var v []float32
		if v, ok = val.([]float32); ok {
			copy(un.growFloats(len(v)), v)
			un.setArray(len(v))
		}
	case Vector2Array:
		var v []math32.Vector2
		if v, ok = val.([]math32.Vector2); ok {
			buf := un.growFloats(2 * len(v))
			for i, e := range v {
				buf[2*i], buf[2*i+1] = e.X, e.Y
			}
			un.setArray(len(v))
		}
	case Vector3Array:
		var v []math32.Vector3
		if v, ok = val.([]math32.Vector3); ok {
			buf := un.growFloats(3 * len(v))
			for i, e := range v {
				buf[3*i], buf[3*i+1], buf[3*i+2] = e.X, e.Y, e.Z
			}
			un.setArray(len(v))
		}
	case Vector4Array:
		var v []math32.Vector4
		if v, ok = val.([]math32.Vector4); ok {
			buf := un.growFloats(4 * len(v))
			for i, e := range v {
				buf[4*i], buf[4*i+1], buf[4*i+2], buf[4*i+3] = e.X, e.Y, e.Z, e.W
			}
			un.setArray(len(v))
		}
	case Matrix3Array:
		var v []math32.Matrix3
		if v, ok = val.([]math32.Matrix3); ok {
			buf := un.growFloats(9 * len(v))
			for i := range v {
				copy(buf[9*i:], v[i][:])
			}
			un.setArray(len(v))
		}
	case Matrix4Array:
		var v []math32.Matrix4
		if v, ok = val.([]math32.Matrix4); ok {
			buf := un.growFloats(16 * len(v))
			for i := range v {
				copy(buf[16*i:], v[i][:])
			}
			un.setArray(len(v))
		}
	case Texture2D, Texture3D, TextureArray, TextureCubeMap:
		var tx Texture
		if tx, ok = val.(Texture); ok {
			// textures are compared by handle, since implementations
			// need not be comparable
			old, _ := un.store.(Texture)
			if !un.isSet || old == nil || old.Handle() != tx.Handle() {
				un.uploadNeeded = true
			}
			un.store = tx
			un.isSet = true
		}
	default:
		return fmt.Errorf("compute: %s: %w", un, ErrUnsupportedKind)
	}
	if !ok {
		return fmt.Errorf("compute: %s: value of type %T is not a %s: %w", un, val, un.kind, ErrTypeMismatch)
	}
	return nil
}

func (un *Uniform) rangeError(v int) error {
	return fmt.Errorf("compute: %s: value %d is out of the int32 range: %w", un, v, ErrTypeMismatch)
}

// setScalar stores a directly comparable value, marking the uniform
// for upload only if the value changed.
func (un *Uniform) setScalar(v any) {
	if un.isSet && un.store == v {
		return
	}
	un.store = v
	un.isSet = true
	un.uploadNeeded = true
}

// setInPlace updates the owned value of type T in place, allocating it
// on first use. It returns false if the value was already equal.
func setInPlace[T comparable](un *Uniform, v T) bool {
	if p, ok := un.store.(*T); ok {
		if un.isSet && *p == v {
			return false
		}
		*p = v
	} else {
		un.store = &v
	}
	un.isSet = true
	un.uploadNeeded = true
	return true
}

// setArray records an array value of n elements. Arrays are not compared
// with the previous value, so they always need upload.
func (un *Uniform) setArray(n int) {
	un.n = n
	un.isSet = true
	un.uploadNeeded = true
}

// growFloats returns the float buffer resized to n, reallocating only
// when the capacity is too small.
func (un *Uniform) growFloats(n int) []float32 {
	if cap(un.floats) < n {
		un.floats = make([]float32, n)
	}
	un.floats = un.floats[:n]
	return un.floats
}

// growInts returns the int buffer resized to n, reallocating only
// when the capacity is too small.
func (un *Uniform) growInts(n int) []int32 {
	if cap(un.ints) < n {
		un.ints = make([]int32, n)
	}
	un.ints = un.ints[:n]
	return un.ints
}

// Value returns a copy of the current value, or nil if unset.
// Vector4 values are returned in the representation first stored.
func (un *Uniform) Value() any {
	if !un.isSet {
		return nil
	}
	switch un.kind {
	case Vector2:
		return *un.store.(*math32.Vector2)
	case Vector3:
		return *un.store.(*math32.Vector3)
	case Vector4:
		return loadVector4(un.store)
	case Matrix3:
		return *un.store.(*math32.Matrix3)
	case Matrix4:
		return *un.store.(*math32.Matrix4)
	case IntArray:
		v := make([]int32, un.n)
		copy(v, un.ints)
		return v
	case FloatArray:
		v := make([]float32, un.n)
		copy(v, un.floats)
		return v
	case Vector2Array:
		v := make([]math32.Vector2, un.n)
		for i := range v {
			v[i] = math32.Vec2(un.floats[2*i], un.floats[2*i+1])
		}
		return v
	case Vector3Array:
		v := make([]math32.Vector3, un.n)
		for i := range v {
			v[i] = math32.Vec3(un.floats[3*i], un.floats[3*i+1], un.floats[3*i+2])
		}
		return v
	case Vector4Array:
		v := make([]math32.Vector4, un.n)
		for i := range v {
			v[i] = math32.Vec4(un.floats[4*i], un.floats[4*i+1], un.floats[4*i+2], un.floats[4*i+3])
		}
		return v
	case Matrix3Array:
		v := make([]math32.Matrix3, un.n)
		for i := range v {
			copy(v[i][:], un.floats[9*i:])
		}
		return v
	case Matrix4Array:
		v := make([]math32.Matrix4, un.n)
		for i := range v {
			copy(v[i][:], un.floats[16*i:])
		}
		return v
	}
	return un.store
}

// Floats returns a copy of the packed float data: the components of a
// vector, or the packed buffer of a matrix or float based array.
func (un *Uniform) Floats() []float32 {
	if !un.isSet {
		return nil
	}
	switch un.kind {
	case Float:
		return []float32{un.store.(float32)}
	case Vector2:
		v := un.store.(*math32.Vector2)
		return []float32{v.X, v.Y}
	case Vector3:
		v := un.store.(*math32.Vector3)
		return []float32{v.X, v.Y, v.Z}
	case Vector4:
		v := un.vec4
		return v[:]
	}
	if !un.kind.usesFloats() {
		return nil
	}
	v := make([]float32, len(un.floats))
	copy(v, un.floats)
	return v
}

// Ints returns a copy of the packed int data of an IntArray, Int or Bool.
func (un *Uniform) Ints() []int32 {
	if !un.isSet {
		return nil
	}
	switch un.kind {
	case Int:
		return []int32{un.store.(int32)}
	case Bool:
		if un.store.(bool) {
			return []int32{1}
		}
		return []int32{0}
	case IntArray:
		v := make([]int32, un.n)
		copy(v, un.ints)
		return v
	}
	return nil
}

// defineValue returns the value fed to defines bound to this uniform:
// the scalar value for scalar kinds, otherwise a presence flag.
func (un *Uniform) defineValue() any {
	if !un.isSet {
		return nil
	}
	if un.kind.IsScalar() {
		return un.store
	}
	return 1
}

//////// Vector4 representations

// vector4Reps enumerates the concrete representations accepted by a
// Vector4 uniform. The first one stored fixes the representation.
type vector4Reps int32

const (
	repVector4 vector4Reps = iota
	repQuat
	repColor
)

// vector4New allocates the owned storage for each representation.
var vector4New = [...]func() any{
	repVector4: func() any { return &math32.Vector4{} },
	repQuat:    func() any { return &math32.Quat{} },
	repColor:   func() any { return &color.RGBA{} },
}

// vector4Of returns the representation and components of a Vector4 value.
func vector4Of(val any) (vector4Reps, [4]float32, bool) {
	switch v := val.(type) {
	case math32.Vector4:
		return repVector4, [4]float32{v.X, v.Y, v.Z, v.W}, true
	case math32.Quat:
		return repQuat, [4]float32{v.X, v.Y, v.Z, v.W}, true
	case color.RGBA:
		return repColor, [4]float32{float32(v.R) / 255, float32(v.G) / 255, float32(v.B) / 255, float32(v.A) / 255}, true
	}
	return 0, [4]float32{}, false
}

// setVector4 converts the value through the staging components into the
// representation already stored. The staging components are then read back
// from the stored form, so they always match what [Uniform.Value] returns.
func (un *Uniform) setVector4(val any) bool {
	rep, s, ok := vector4Of(val)
	if !ok {
		return false
	}
	if un.store == nil {
		un.store = vector4New[rep]()
	}
	switch st := un.store.(type) {
	case *math32.Vector4:
		*st = math32.Vec4(s[0], s[1], s[2], s[3])
	case *math32.Quat:
		*st = math32.Quat{X: s[0], Y: s[1], Z: s[2], W: s[3]}
	case *color.RGBA:
		*st = color.RGBA{R: toByte(s[0]), G: toByte(s[1]), B: toByte(s[2]), A: toByte(s[3])}
	}
	_, s, _ = vector4Of(loadVector4(un.store))
	if un.isSet && s == un.vec4 {
		return true
	}
	un.vec4 = s
	un.isSet = true
	un.uploadNeeded = true
	return true
}

func loadVector4(store any) any {
	switch st := store.(type) {
	case *math32.Vector4:
		return *st
	case *math32.Quat:
		return *st
	case *color.RGBA:
		return *st
	}
	return nil
}

func toByte(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// deref returns the value pointed to by the supported pointer forms,
// and nil for a nil pointer.
func deref(val any) any {
	switch v := val.(type) {
	case *math32.Vector2:
		if v != nil {
			return *v
		}
	case *math32.Vector3:
		if v != nil {
			return *v
		}
	case *math32.Vector4:
		if v != nil {
			return *v
		}
	case *math32.Quat:
		if v != nil {
			return *v
		}
	case *color.RGBA:
		if v != nil {
			return *v
		}
	case *math32.Matrix3:
		if v != nil {
			return *v
		}
	case *math32.Matrix4:
		if v != nil {
			return *v
		}
	default:
		return val
	}
	return nil
}
