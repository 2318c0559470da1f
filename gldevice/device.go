// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gldevice implements [compute.Device] on OpenGL 4.3 core,
// which is the first version with compute shaders.
//
// All calls must be made on the thread that owns the current context,
// as for any other OpenGL code.
package gldevice

import (
	"fmt"
	"strings"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/gldevice/glsl"
	"github.com/go-gl/gl/v4.3-core/gl"
)

// Device is a [compute.Device] for the current OpenGL context.
// Use [New] after the context has been made current.
type Device struct {
	// Caps are the shading language versions supported by the driver.
	Caps *glsl.Capabilities

	// Vendor and Renderer are the driver identification strings.
	Vendor, Renderer string

	// GLVersion is the OpenGL version string.
	GLVersion string

	// MaxTextureUnits is the number of combined texture image units.
	MaxTextureUnits int

	// MaxImageUnits is the number of image units for image load / store.
	MaxImageUnits int
}

// New initializes the OpenGL function pointers for the current context
// and returns a [Device] with its capabilities.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gldevice: gl init: %w", err)
	}
	dv := &Device{
		Vendor:    gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:  gl.GoStr(gl.GetString(gl.RENDERER)),
		GLVersion: gl.GoStr(gl.GetString(gl.VERSION)),
	}
	caps, err := glsl.Parse(gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	if err != nil {
		return nil, err
	}
	dv.Caps = caps
	var n int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &n)
	dv.MaxTextureUnits = int(n)
	gl.GetIntegerv(gl.MAX_IMAGE_UNITS, &n)
	dv.MaxImageUnits = int(n)
	return dv, nil
}

func (dv *Device) SupportsVersion(version int) bool {
	return dv.Caps.SupportsVersion(version)
}

func (dv *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (dv *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (dv *Device) CreateComputeShader() uint32 { return gl.CreateShader(gl.COMPUTE_SHADER) }

func (dv *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

// ShaderSource sets the source of the shader. The source does not need
// to be null terminated.
func (dv *Device) ShaderSource(shader uint32, src string) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	csources, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (dv *Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (dv *Device) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (dv *Device) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (dv *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (dv *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (dv *Device) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (dv *Device) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (dv *Device) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	msg := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
	return strings.TrimRight(msg, "\x00")
}

func (dv *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (dv *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (dv *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (dv *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (dv *Device) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (dv *Device) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (dv *Device) Uniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}

// The array uploads below take packed values, and the count is the
// number of elements of the uniform type. Empty slices are ignored.

func (dv *Device) Uniform1iv(location int32, v []int32) {
	if len(v) > 0 {
		gl.Uniform1iv(location, int32(len(v)), &v[0])
	}
}

func (dv *Device) Uniform1fv(location int32, v []float32) {
	if len(v) > 0 {
		gl.Uniform1fv(location, int32(len(v)), &v[0])
	}
}

func (dv *Device) Uniform2fv(location int32, v []float32) {
	if len(v) >= 2 {
		gl.Uniform2fv(location, int32(len(v)/2), &v[0])
	}
}

func (dv *Device) Uniform3fv(location int32, v []float32) {
	if len(v) >= 3 {
		gl.Uniform3fv(location, int32(len(v)/3), &v[0])
	}
}

func (dv *Device) Uniform4fv(location int32, v []float32) {
	if len(v) >= 4 {
		gl.Uniform4fv(location, int32(len(v)/4), &v[0])
	}
}

func (dv *Device) UniformMatrix3fv(location int32, v []float32) {
	if len(v) >= 9 {
		gl.UniformMatrix3fv(location, int32(len(v)/9), false, &v[0])
	}
}

func (dv *Device) UniformMatrix4fv(location int32, v []float32) {
	if len(v) >= 16 {
		gl.UniformMatrix4fv(location, int32(len(v)/16), false, &v[0])
	}
}

// BindTexture binds the texture to the texture unit, and also to the
// image unit of the same index if it is a [Texture] with image access.
// Textures of other types are bound as 2D textures.
func (dv *Device) BindTexture(unit int, tex compute.Texture) error {
	if unit < 0 || (dv.MaxTextureUnits > 0 && unit >= dv.MaxTextureUnits) {
		return fmt.Errorf("gldevice: texture unit %d is out of range [0, %d)", unit, dv.MaxTextureUnits)
	}
	target := uint32(gl.TEXTURE_2D)
	tx, isTex := tex.(*Texture)
	if isTex {
		target = tx.Target
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(target, tex.Handle())
	if !isTex || tx.Access == 0 {
		return nil
	}
	if dv.MaxImageUnits > 0 && unit >= dv.MaxImageUnits {
		return fmt.Errorf("gldevice: image unit %d is out of range [0, %d)", unit, dv.MaxImageUnits)
	}
	gl.BindImageTexture(uint32(unit), tx.ID, 0, tx.Layered(), 0, tx.Access, tx.Format)
	return nil
}

func (dv *Device) DispatchCompute(x, y, z uint32) { gl.DispatchCompute(x, y, z) }

var glBarriers = []struct {
	barrier compute.Barriers
	bits    uint32
}{
	{compute.BarrierShaderImageAccess, gl.SHADER_IMAGE_ACCESS_BARRIER_BIT},
	{compute.BarrierShaderStorage, gl.SHADER_STORAGE_BARRIER_BIT},
	{compute.BarrierTextureFetch, gl.TEXTURE_FETCH_BARRIER_BIT},
	{compute.BarrierUniform, gl.UNIFORM_BARRIER_BIT},
}

func (dv *Device) MemoryBarrier(barriers compute.Barriers) {
	var bits uint32
	for _, b := range glBarriers {
		if barriers&b.barrier != 0 {
			bits |= b.bits
		}
	}
	if bits != 0 {
		gl.MemoryBarrier(bits)
	}
}
