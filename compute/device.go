// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

// Device is the set of graphics device calls used by a [Program].
// All calls are issued in program order on the thread that owns the
// device context. See the gldevice package for an OpenGL implementation.
type Device interface {
	// CreateProgram creates a new, empty device program object.
	CreateProgram() uint32

	// DeleteProgram deletes the device program object.
	DeleteProgram(program uint32)

	// CreateComputeShader creates a new compute shader unit.
	CreateComputeShader() uint32

	// DeleteShader deletes the shader unit.
	DeleteShader(shader uint32)

	// ShaderSource sets the source code of the shader unit.
	ShaderSource(shader uint32, src string)

	// CompileShader compiles the source of the shader unit.
	CompileShader(shader uint32)

	// ShaderCompiled returns true if the last compile of the shader succeeded.
	ShaderCompiled(shader uint32) bool

	// ShaderInfoLog returns the diagnostic log of the last compile.
	ShaderInfoLog(shader uint32) string

	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)

	// LinkProgram links the shader units attached to the program.
	LinkProgram(program uint32)

	// ProgramLinked returns true if the last link of the program succeeded.
	ProgramLinked(program uint32) bool

	// ProgramInfoLog returns the diagnostic log of the last link.
	ProgramInfoLog(program uint32) string

	// UseProgram makes the program the active one.
	UseProgram(program uint32)

	// UniformLocation returns the location of the named uniform in the
	// program, or -1 if it is not an active uniform.
	UniformLocation(program uint32, name string) int32

	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	Uniform1iv(location int32, v []int32)
	Uniform1fv(location int32, v []float32)
	Uniform2fv(location int32, v []float32)
	Uniform3fv(location int32, v []float32)
	Uniform4fv(location int32, v []float32)

	// UniformMatrix3fv uploads column-major 3x3 matrices (9 floats each).
	UniformMatrix3fv(location int32, v []float32)

	// UniformMatrix4fv uploads column-major 4x4 matrices (16 floats each).
	UniformMatrix4fv(location int32, v []float32)

	// BindTexture binds the texture to the given texture unit.
	BindTexture(unit int, tex Texture) error

	// DispatchCompute dispatches the active program with the given
	// number of work groups in each dimension.
	DispatchCompute(x, y, z uint32)

	// MemoryBarrier orders memory transactions issued before the barrier
	// relative to those issued after it.
	MemoryBarrier(barriers Barriers)
}

// Barriers is a bit set of memory barriers.
type Barriers uint32

const (
	// BarrierShaderImageAccess makes image writes from a dispatch visible
	// to image loads in subsequent dispatches.
	BarrierShaderImageAccess Barriers = 1 << iota

	// BarrierShaderStorage makes shader storage buffer writes visible.
	BarrierShaderStorage

	// BarrierTextureFetch makes writes visible to texture fetches.
	BarrierTextureFetch

	// BarrierUniform makes writes visible to uniform buffer reads.
	BarrierUniform
)

// Texture is a device texture that a texture uniform refers to.
type Texture interface {
	// Handle returns the device handle of the texture.
	Handle() uint32
}

// Capabilities reports the features of a device.
type Capabilities interface {
	// SupportsVersion returns true if the device supports the given
	// shading language version, e.g., 430.
	SupportsVersion(version int) bool
}

// Versions is a static [Capabilities] listing the supported versions.
type Versions map[int]bool

// NewVersions returns a [Versions] that supports exactly the given versions.
func NewVersions(versions ...int) Versions {
	vs := make(Versions, len(versions))
	for _, v := range versions {
		vs[v] = true
	}
	return vs
}

func (vs Versions) SupportsVersion(version int) bool {
	return vs[version]
}

// TextureBinder binds textures to texture units. It is an indirection over
// [Device.BindTexture] so that texture unit assignment can be exercised
// without a live device.
type TextureBinder interface {
	BindTexture(unit int, tex Texture) error
}

// DeviceBinder is the default [TextureBinder], which forwards to the device.
type DeviceBinder struct {
	Device Device
}

func (db DeviceBinder) BindTexture(unit int, tex Texture) error {
	return db.Device.BindTexture(unit, tex)
}

// TextureBinderFunc is a function that implements [TextureBinder].
type TextureBinderFunc func(unit int, tex Texture) error

func (f TextureBinderFunc) BindTexture(unit int, tex Texture) error {
	return f(unit, tex)
}
