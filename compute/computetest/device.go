// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package computetest provides a recording fake [compute.Device]
// for testing programs without a graphics context.
package computetest

import (
	"slices"
	"strings"

	"cogentcore.org/glcompute/compute"
)

// Call is one recorded device call.
type Call struct {
	// Name is the name of the device method, e.g., "Uniform1f".
	Name string

	// Args are the arguments, with slices copied at call time.
	Args []any
}

// Device is a [compute.Device] that records every call and keeps enough
// state to check what a real device would have seen.
type Device struct {
	// Calls are all of the calls since creation or the last [Device.Reset].
	Calls []Call

	// FailCompile makes every compile fail with [Device.CompileLog].
	FailCompile bool

	// FailCompileIf makes compiles of sources containing this text fail.
	FailCompileIf string

	// CompileLog is the info log reported for failed compiles.
	CompileLog string

	// FailLink makes every link fail.
	FailLink bool

	// FailUnits are texture units that BindTexture refuses.
	FailUnits map[int]bool

	// Inactive are uniform names that are reported as not active.
	Inactive map[string]bool

	// Compiled are the sources of all successful compiles, in order.
	Compiled []string

	// Programs are the live device programs.
	Programs map[uint32]bool

	// Shaders are the live shader units, with their sources.
	Shaders map[uint32]string

	// Active is the program last passed to UseProgram.
	Active uint32

	// Values are the last values uploaded per uniform name.
	Values map[string]any

	// Bound is the texture handle bound per texture unit.
	Bound map[int]uint32

	// Dispatches are the work group counts of all dispatches.
	Dispatches [][3]uint32

	// Barriers are the memory barriers issued, in order.
	Barriers []compute.Barriers

	compiled map[uint32]bool
	linked   map[uint32]bool
	names    []string
	next     uint32
}

// NewDevice returns a new [Device] with no programs.
func NewDevice() *Device {
	return &Device{
		FailUnits: make(map[int]bool),
		Inactive:  make(map[string]bool),
		Programs:  make(map[uint32]bool),
		Shaders:   make(map[uint32]string),
		Values:    make(map[string]any),
		Bound:     make(map[int]uint32),
		compiled:  make(map[uint32]bool),
		linked:    make(map[uint32]bool),
	}
}

// Reset clears the recorded calls, uploaded values and bindings,
// keeping the device objects.
func (dv *Device) Reset() {
	dv.Calls = nil
	dv.Dispatches = nil
	dv.Barriers = nil
	clear(dv.Values)
	clear(dv.Bound)
}

// Count returns the number of recorded calls of the named method.
func (dv *Device) Count(name string) int {
	n := 0
	for _, c := range dv.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Uploads returns the number of recorded Uniform* calls for the named
// uniform, including texture unit assignments.
func (dv *Device) Uploads(name string) int {
	n := 0
	for _, c := range dv.Calls {
		if !strings.HasPrefix(c.Name, "Uniform") || c.Name == "UniformLocation" {
			continue
		}
		if dv.nameOf(c.Args[0].(int32)) == name {
			n++
		}
	}
	return n
}

func (dv *Device) record(name string, args ...any) {
	dv.Calls = append(dv.Calls, Call{Name: name, Args: args})
}

func (dv *Device) newHandle() uint32 {
	dv.next++
	return dv.next
}

func (dv *Device) CreateProgram() uint32 {
	h := dv.newHandle()
	dv.Programs[h] = true
	dv.record("CreateProgram", h)
	return h
}

func (dv *Device) DeleteProgram(program uint32) {
	delete(dv.Programs, program)
	dv.record("DeleteProgram", program)
}

func (dv *Device) CreateComputeShader() uint32 {
	h := dv.newHandle()
	dv.Shaders[h] = ""
	dv.record("CreateComputeShader", h)
	return h
}

func (dv *Device) DeleteShader(shader uint32) {
	delete(dv.Shaders, shader)
	dv.record("DeleteShader", shader)
}

func (dv *Device) ShaderSource(shader uint32, src string) {
	dv.Shaders[shader] = src
	dv.record("ShaderSource", shader, src)
}

func (dv *Device) CompileShader(shader uint32) {
	src := dv.Shaders[shader]
	ok := !dv.FailCompile && (dv.FailCompileIf == "" || !strings.Contains(src, dv.FailCompileIf))
	dv.compiled[shader] = ok
	if ok {
		dv.Compiled = append(dv.Compiled, src)
	}
	dv.record("CompileShader", shader)
}

func (dv *Device) ShaderCompiled(shader uint32) bool {
	return dv.compiled[shader]
}

func (dv *Device) ShaderInfoLog(shader uint32) string {
	return dv.CompileLog
}

func (dv *Device) AttachShader(program, shader uint32) {
	dv.record("AttachShader", program, shader)
}

func (dv *Device) DetachShader(program, shader uint32) {
	dv.record("DetachShader", program, shader)
}

func (dv *Device) LinkProgram(program uint32) {
	dv.linked[program] = !dv.FailLink
	dv.record("LinkProgram", program)
}

func (dv *Device) ProgramLinked(program uint32) bool {
	return dv.linked[program]
}

func (dv *Device) ProgramInfoLog(program uint32) string {
	if dv.linked[program] {
		return ""
	}
	return "link failed"
}

func (dv *Device) UseProgram(program uint32) {
	dv.Active = program
	dv.record("UseProgram", program)
}

// UniformLocation assigns locations in order of first request.
func (dv *Device) UniformLocation(program uint32, name string) int32 {
	dv.record("UniformLocation", program, name)
	if dv.Inactive[name] {
		return -1
	}
	if i := slices.Index(dv.names, name); i >= 0 {
		return int32(i)
	}
	dv.names = append(dv.names, name)
	return int32(len(dv.names) - 1)
}

func (dv *Device) nameOf(location int32) string {
	if location < 0 || int(location) >= len(dv.names) {
		return ""
	}
	return dv.names[location]
}

func (dv *Device) upload(call string, location int32, v any) {
	dv.Values[dv.nameOf(location)] = v
	dv.record(call, location, v)
}

func (dv *Device) Uniform1i(location int32, v int32) { dv.upload("Uniform1i", location, v) }

func (dv *Device) Uniform1f(location int32, v float32) { dv.upload("Uniform1f", location, v) }

func (dv *Device) Uniform2f(location int32, x, y float32) {
	dv.upload("Uniform2f", location, []float32{x, y})
}

func (dv *Device) Uniform3f(location int32, x, y, z float32) {
	dv.upload("Uniform3f", location, []float32{x, y, z})
}

func (dv *Device) Uniform4f(location int32, x, y, z, w float32) {
	dv.upload("Uniform4f", location, []float32{x, y, z, w})
}

func (dv *Device) Uniform1iv(location int32, v []int32) {
	dv.upload("Uniform1iv", location, slices.Clone(v))
}

func (dv *Device) Uniform1fv(location int32, v []float32) {
	dv.upload("Uniform1fv", location, slices.Clone(v))
}

func (dv *Device) Uniform2fv(location int32, v []float32) {
	dv.upload("Uniform2fv", location, slices.Clone(v))
}

func (dv *Device) Uniform3fv(location int32, v []float32) {
	dv.upload("Uniform3fv", location, slices.Clone(v))
}

func (dv *Device) Uniform4fv(location int32, v []float32) {
	dv.upload("Uniform4fv", location, slices.Clone(v))
}

func (dv *Device) UniformMatrix3fv(location int32, v []float32) {
	dv.upload("UniformMatrix3fv", location, slices.Clone(v))
}

func (dv *Device) UniformMatrix4fv(location int32, v []float32) {
	dv.upload("UniformMatrix4fv", location, slices.Clone(v))
}

func (dv *Device) BindTexture(unit int, tex compute.Texture) error {
	dv.record("BindTexture", unit, tex.Handle())
	if dv.FailUnits[unit] {
		return errTextureUnit
	}
	dv.Bound[unit] = tex.Handle()
	return nil
}

func (dv *Device) DispatchCompute(x, y, z uint32) {
	dv.Dispatches = append(dv.Dispatches, [3]uint32{x, y, z})
	dv.record("DispatchCompute", x, y, z)
}

func (dv *Device) MemoryBarrier(barriers compute.Barriers) {
	dv.Barriers = append(dv.Barriers, barriers)
	dv.record("MemoryBarrier", barriers)
}
