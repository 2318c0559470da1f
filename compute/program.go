// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"fmt"
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
)

// MinVersion is the lowest shading language version that supports
// compute shaders.
const MinVersion = 430

// Program is a compute shader program: a body source, the uniforms and
// defines that parameterize it, and the device program compiled from it.
// The source is recompiled lazily, only when a define change or an explicit
// [Program.Invalidate] has made it dirty, and only uniforms that changed
// since the last dispatch are uploaded.
//
// A Program is not safe for concurrent use: all calls must come from the
// thread that owns the device context.
type Program struct {
	// name of the program, for diagnostics
	name string

	// body source, without the version line and defines
	source string

	// acceptable shading language versions
	versions []int

	// negotiated version, 0 until first compiled; never changes after that
	version int

	// uniforms by name
	uniforms map[string]*Uniform

	// sorted uniform names, which fixes the texture unit order
	order []string

	// defines by name
	defines map[string]*Define

	// dirty is true when the source must be recompiled before the next dispatch.
	dirty bool

	// failOnMissing makes references to unknown names errors
	// instead of creating them.
	failOnMissing bool

	// device program handle, 0 if not yet created
	handle uint32

	// uniform locations in the current device program
	locations map[string]int32

	// last successfully compiled source
	compiled string
}

// NewProgram returns a new [Program] with the given name, acceptable
// shading language versions, and body source. At least one version must
// be given, and all must be at least [MinVersion].
func NewProgram(name string, versions []int, source string) (*Program, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("compute: program %s: at least one version must be specified: %w", name, ErrUnsupportedVersion)
	}
	for _, v := range versions {
		if v < MinVersion {
			return nil, fmt.Errorf("compute: program %s: version %d is below the minimum compute version %d: %w", name, v, MinVersion, ErrUnsupportedVersion)
		}
	}
	pr := &Program{
		name:      name,
		source:    source,
		versions:  slices.Clone(versions),
		uniforms:  make(map[string]*Uniform),
		defines:   make(map[string]*Define),
		locations: make(map[string]int32),
		dirty:     true,
	}
	return pr, nil
}

// Name returns the name of the program.
func (pr *Program) Name() string { return pr.name }

// Source returns the body source of the program.
func (pr *Program) Source() string { return pr.source }

// Versions returns the acceptable shading language versions.
func (pr *Program) Versions() []int { return slices.Clone(pr.versions) }

// Version returns the negotiated shading language version,
// or 0 if the program has not been compiled yet.
func (pr *Program) Version() int { return pr.version }

// CompiledSource returns the last successfully compiled source, including
// the version line and defines.
func (pr *Program) CompiledSource() string { return pr.compiled }

// IsDirty returns true if the source will be recompiled on the next dispatch.
func (pr *Program) IsDirty() bool { return pr.dirty }

// Invalidate forces a recompile on the next dispatch.
func (pr *Program) Invalidate() { pr.dirty = true }

// SetFailOnMissing sets whether references to uniforms or defines that do
// not exist fail with [ErrMissingReference] instead of creating them.
func (pr *Program) SetFailOnMissing(fail bool) { pr.failOnMissing = fail }

// FailOnMissing returns true if references to missing names are errors.
// See [Program.SetFailOnMissing].
func (pr *Program) FailOnMissing() bool { return pr.failOnMissing }

// SetUniform adds the uniform to the program, replacing any uniform of
// the same name.
func (pr *Program) SetUniform(un *Uniform) {
	pr.addUniform(un)
	un.uploadNeeded = true
}

func (pr *Program) addUniform(un *Uniform) {
	if _, has := pr.uniforms[un.name]; !has {
		i, _ := slices.BinarySearch(pr.order, un.name)
		pr.order = slices.Insert(pr.order, i, un.name)
	}
	pr.uniforms[un.name] = un
}

// Set sets the value of the named uniform, which must be of the given kind.
// If the uniform does not exist, it is created with that kind, unless the
// program fails on missing references.
func (pr *Program) Set(name string, kind Kinds, val any) error {
	if un, ok := pr.uniforms[name]; ok {
		return un.SetKindValue(kind, val)
	}
	if pr.failOnMissing {
		return fmt.Errorf("compute: program %s: uniform[name:%s, kind:%s] does not exist: %w", pr.name, name, kind, ErrMissingReference)
	}
	un := NewUniform(name, kind)
	if err := un.SetKindValue(kind, val); err != nil {
		return err
	}
	pr.addUniform(un)
	return nil
}

// Update sets the value of an existing uniform using its own kind.
func (pr *Program) Update(name string, val any) error {
	un, ok := pr.uniforms[name]
	if !ok {
		return pr.missingUniform(name)
	}
	return un.SetValue(val)
}

// Get returns a copy of the current value of the named uniform,
// which is nil if the uniform is unset.
func (pr *Program) Get(name string) (any, error) {
	un, ok := pr.uniforms[name]
	if !ok {
		return nil, pr.missingUniform(name)
	}
	return un.Value(), nil
}

func (pr *Program) missingUniform(name string) error {
	return fmt.Errorf("compute: program %s: uniform %q does not exist: %w", pr.name, name, ErrMissingReference)
}

// Exists returns true if a uniform of the given name exists.
func (pr *Program) Exists(name string) bool {
	_, ok := pr.uniforms[name]
	return ok
}

// Uniform returns the named uniform, or nil.
func (pr *Program) Uniform(name string) *Uniform {
	return pr.uniforms[name]
}

// Uniforms returns all uniforms, sorted by name.
func (pr *Program) Uniforms() []*Uniform {
	us := make([]*Uniform, len(pr.order))
	for i, nm := range pr.order {
		us[i] = pr.uniforms[nm]
	}
	return us
}

// UniformNames returns the sorted uniform names.
func (pr *Program) UniformNames() []string {
	return slices.Clone(pr.order)
}

// SetDefineCell adds the define to the program, replacing any define of
// the same name. The source is marked dirty if either define is enabled.
func (pr *Program) SetDefineCell(df *Define) {
	if old, ok := pr.defines[df.name]; ok && old.IsEnabled() {
		pr.dirty = true
	}
	if df.IsEnabled() {
		pr.dirty = true
	}
	pr.defines[df.name] = df
}

// SetDefine sets the value of the named define. If the define does not
// exist, it is created, unless the program fails on missing references.
// The source is marked dirty if this changes the emitted define lines.
func (pr *Program) SetDefine(name string, val any) error {
	df, ok := pr.defines[name]
	if !ok {
		if pr.failOnMissing {
			return fmt.Errorf("compute: program %s: define %q does not exist: %w", pr.name, name, ErrMissingReference)
		}
		df = NewDefine(name)
		pr.defines[name] = df
	}
	if _, changed := df.set(val); changed {
		pr.dirty = true
	}
	return nil
}

// Define returns the named define, or nil.
func (pr *Program) Define(name string) *Define {
	return pr.defines[name]
}

// DefineNames returns the sorted define names.
func (pr *Program) DefineNames() []string {
	return sortedKeys(pr.defines)
}

// Delete unsets the uniform and the define of the given name, if present.
// The entries are kept for reuse.
func (pr *Program) Delete(name string) {
	if un, ok := pr.uniforms[name]; ok {
		un.SetValue(nil)
	}
	if df, ok := pr.defines[name]; ok {
		if _, changed := df.set(nil); changed {
			pr.dirty = true
		}
	}
}

// Execute runs the program on the device with the given number of work
// groups, binding textures through the device. See [Program.ExecuteWith].
func (pr *Program) Execute(dev Device, caps Capabilities, x, y, z uint32) error {
	return pr.ExecuteWith(dev, DeviceBinder{dev}, caps, x, y, z)
}

// ExecuteWith runs the program with the given number of work groups:
// it updates defines bound to parameters, recompiles if the source is dirty,
// activates the program, uploads uniforms that need it, binds textures
// through the binder, and dispatches followed by a memory barrier.
// Any error aborts the dispatch.
func (pr *Program) ExecuteWith(dev Device, tb TextureBinder, caps Capabilities, x, y, z uint32) error {
	pr.SyncDefines()
	if err := pr.compile(dev, caps); err != nil {
		return err
	}
	dev.UseProgram(pr.handle)
	if err := pr.upload(dev, tb); err != nil {
		return err
	}
	dev.DispatchCompute(x, y, z)
	dev.MemoryBarrier(BarrierShaderImageAccess)
	pr.dirty = false
	return nil
}

// SyncDefines feeds the value of each bound uniform into its define,
// marking the source dirty when one changes. [Program.ExecuteWith] calls it
// before compiling.
func (pr *Program) SyncDefines() {
	for _, df := range pr.defines {
		if df.param == "" {
			continue
		}
		un, ok := pr.uniforms[df.param]
		if !ok {
			continue
		}
		if _, changed := df.set(un.defineValue()); changed {
			pr.dirty = true
		}
	}
}

// negotiateVersion returns the highest acceptable version supported by
// the device. It is resolved once and then cached.
func (pr *Program) negotiateVersion(caps Capabilities) (int, error) {
	if pr.version > 0 {
		return pr.version, nil
	}
	best := 0
	for _, v := range pr.versions {
		if v > best && caps.SupportsVersion(v) {
			best = v
		}
	}
	if best < MinVersion {
		return 0, fmt.Errorf("compute: program %s: none of versions %v is supported by the device: %w", pr.name, pr.versions, ErrUnsupportedVersion)
	}
	pr.version = best
	return best, nil
}

// compile recompiles the source if it is dirty. The compute shader unit is
// deleted on every path, and the new device program replaces the current
// one only when it links, so a failure leaves the last good program in place.
func (pr *Program) compile(dev Device, caps Capabilities) error {
	if !pr.dirty {
		return nil
	}
	version, err := pr.negotiateVersion(caps)
	if err != nil {
		return errors.Log(err)
	}
	src := pr.AssembleSource(version)

	sh := dev.CreateComputeShader()
	defer dev.DeleteShader(sh)
	dev.ShaderSource(sh, src)
	dev.CompileShader(sh)
	if !dev.ShaderCompiled(sh) {
		slog.Error("compute: bad compile", "program", pr.name, "source", "\n"+NumberedSource(src))
		return &CompileError{Program: pr.name, Version: version, Log: dev.ShaderInfoLog(sh), Source: src}
	}

	handle := dev.CreateProgram()
	dev.AttachShader(handle, sh)
	dev.LinkProgram(handle)
	dev.DetachShader(handle, sh)
	if !dev.ProgramLinked(handle) {
		lg := dev.ProgramInfoLog(handle)
		dev.DeleteProgram(handle)
		slog.Error("compute: bad link", "program", pr.name, "source", "\n"+NumberedSource(src))
		return &CompileError{Program: pr.name, Version: version, Log: lg, Source: src}
	}
	if pr.handle != 0 {
		dev.DeleteProgram(pr.handle)
	}
	pr.handle = handle
	clear(pr.locations)
	// a newly linked program has default uniform values
	for _, un := range pr.uniforms {
		un.uploadNeeded = true
	}
	pr.compiled = src
	pr.dirty = false
	slog.Debug("compute: compiled program", "program", pr.name, "version", version)
	return nil
}

// location returns the cached uniform location in the current device program.
func (pr *Program) location(dev Device, name string) int32 {
	loc, ok := pr.locations[name]
	if !ok {
		loc = dev.UniformLocation(pr.handle, name)
		pr.locations[name] = loc
	}
	return loc
}

// upload pushes uniforms that need it, and binds every set texture to a
// texture unit, counting up from 0 in name order. Upload flags are cleared
// for every uniform visited.
func (pr *Program) upload(dev Device, tb TextureBinder) error {
	unit := 0
	for _, nm := range pr.order {
		un := pr.uniforms[nm]
		switch {
		case un.kind.IsTexture():
			if un.isSet {
				if err := pr.bindTexture(dev, tb, un, unit); err != nil {
					return err
				}
				unit++
			}
		case un.uploadNeeded && un.isSet:
			if err := pr.uploadValue(dev, un); err != nil {
				return err
			}
		}
		un.ClearUploadNeeded()
	}
	return nil
}

func (pr *Program) bindTexture(dev Device, tb TextureBinder, un *Uniform, unit int) error {
	if loc := pr.location(dev, un.name); loc >= 0 {
		dev.Uniform1i(loc, int32(unit))
	}
	if err := tb.BindTexture(unit, un.store.(Texture)); err != nil {
		return fmt.Errorf("compute: program %s: error uploading texture %s to unit %d: %w: %w", pr.name, un.name, unit, ErrTextureUnit, err)
	}
	return nil
}

// uploadValue pushes the value of a non-texture uniform with the
// device call for its kind.
func (pr *Program) uploadValue(dev Device, un *Uniform) error {
	loc := pr.location(dev, un.name)
	if loc < 0 {
		slog.Debug("compute: uniform is not active", "program", pr.name, "uniform", un.name)
		return nil
	}
	if un.kind.IsArray() && un.n == 0 {
		return nil
	}
	switch un.kind {
	case Bool:
		var b int32
		if un.store.(bool) {
			b = 1
		}
		dev.Uniform1i(loc, b)
	case Int:
		dev.Uniform1i(loc, un.store.(int32))
	case Float:
		f := un.store.(float32)
		pr.checkFloats(un, f)
		dev.Uniform1f(loc, f)
	case Vector2:
		v := un.store.(*math32.Vector2)
		pr.checkFloats(un, v.X, v.Y)
		dev.Uniform2f(loc, v.X, v.Y)
	case Vector3:
		v := un.store.(*math32.Vector3)
		pr.checkFloats(un, v.X, v.Y, v.Z)
		dev.Uniform3f(loc, v.X, v.Y, v.Z)
	case Vector4:
		v := un.vec4
		pr.checkFloats(un, v[:]...)
		dev.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case Matrix3:
		pr.checkFloats(un, un.floats...)
		dev.UniformMatrix3fv(loc, un.floats)
	case Matrix4:
		pr.checkFloats(un, un.floats...)
		dev.UniformMatrix4fv(loc, un.floats)
	case IntArray:
		dev.Uniform1iv(loc, un.ints[:un.n])
	case FloatArray:
		pr.checkFloats(un, un.floats...)
		dev.Uniform1fv(loc, un.floats)
	case Vector2Array:
		pr.checkFloats(un, un.floats...)
		dev.Uniform2fv(loc, un.floats)
	case Vector3Array:
		pr.checkFloats(un, un.floats...)
		dev.Uniform3fv(loc, un.floats)
	case Vector4Array:
		pr.checkFloats(un, un.floats...)
		dev.Uniform4fv(loc, un.floats)
	case Matrix3Array:
		pr.checkFloats(un, un.floats...)
		dev.UniformMatrix3fv(loc, un.floats)
	case Matrix4Array:
		pr.checkFloats(un, un.floats...)
		dev.UniformMatrix4fv(loc, un.floats)
	default:
		return fmt.Errorf("compute: program %s: no upload for %s: %w", pr.name, un, ErrUnsupportedKind)
	}
	return nil
}

// checkFloats warns about NaN or infinite values, which are uploaded as is.
func (pr *Program) checkFloats(un *Uniform, fs ...float32) {
	if i := invalidFloat(fs); i >= 0 {
		slog.Warn("compute: invalid float value", "program", pr.name, "uniform", un.name, "index", i, "value", fs[i])
	}
}

// Release deletes the device program. The program is recompiled on the
// next dispatch.
func (pr *Program) Release(dev Device) {
	if pr.handle != 0 {
		dev.DeleteProgram(pr.handle)
		pr.handle = 0
	}
	clear(pr.locations)
	pr.dirty = true
}
