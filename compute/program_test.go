// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute_test

import (
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/compute/computetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "layout(local_size_x = 8) in;\nvoid main() {}\n"

func newProgram(t *testing.T, versions ...int) *compute.Program {
	t.Helper()
	if len(versions) == 0 {
		versions = []int{430}
	}
	pr, err := compute.NewProgram("test", versions, body)
	require.NoError(t, err)
	return pr
}

func TestNewProgramVersions(t *testing.T) {
	_, err := compute.NewProgram("none", nil, body)
	assert.ErrorIs(t, err, compute.ErrUnsupportedVersion)

	_, err = compute.NewProgram("old", []int{330, 430}, body)
	assert.ErrorIs(t, err, compute.ErrUnsupportedVersion)

	pr := newProgram(t, 430, 450)
	assert.True(t, pr.IsDirty())
	assert.Equal(t, 0, pr.Version())
	assert.Equal(t, []int{430, 450}, pr.Versions())
}

func TestVersionNegotiation(t *testing.T) {
	dev := computetest.NewDevice()
	pr := newProgram(t, 430, 450, 460)
	require.NoError(t, pr.Execute(dev, computetest.Caps(430, 450), 1, 1, 1))
	assert.Equal(t, 450, pr.Version())
	assert.Contains(t, pr.CompiledSource(), "#version 450 core\n")

	pr.Invalidate()
	require.NoError(t, pr.Execute(dev, computetest.Caps(430, 450, 460), 1, 1, 1))
	assert.Equal(t, 450, pr.Version())
}

func TestUnsupportedVersion(t *testing.T) {
	dev := computetest.NewDevice()
	pr := newProgram(t, 450, 460)
	err := pr.Execute(dev, computetest.Caps(430), 1, 1, 1)
	assert.ErrorIs(t, err, compute.ErrUnsupportedVersion)
	assert.True(t, compute.IsDeviceError(err))
	assert.Empty(t, dev.Dispatches)
	assert.Equal(t, 0, dev.Count("CreateComputeShader"))
}

func TestRecompileOnlyWhenDirty(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 1, dev.Count("CompileShader"))
	assert.False(t, pr.IsDirty())

	require.NoError(t, pr.SetDefine("N", 2))
	assert.True(t, pr.IsDirty())
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 2, dev.Count("CompileShader"))

	// a new value of an enabled define changes the source
	require.NoError(t, pr.SetDefine("N", 3))
	assert.True(t, pr.IsDirty())
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Contains(t, pr.CompiledSource(), "#define N 3\n")

	// disabled defines can change value without a recompile
	require.NoError(t, pr.SetDefine("OFF", 0))
	require.NoError(t, pr.SetDefine("OFF", false))
	assert.False(t, pr.IsDirty())

	// shader units never outlive a compile, and only one program is live
	assert.Empty(t, dev.Shaders)
	assert.Len(t, dev.Programs, 1)
}

func TestAssembleSource(t *testing.T) {
	pr := newProgram(t)
	require.NoError(t, pr.SetDefine("B", 2.0))
	require.NoError(t, pr.SetDefine("A", true))
	require.NoError(t, pr.SetDefine("C", 0))
	require.NoError(t, pr.SetDefine("D", "vec2(1.0, 2.0)"))
	want := "#version 450 core\n#define A 1\n#define B 2.0\n#define D vec2(1.0, 2.0)\n" + body
	assert.Equal(t, want, pr.AssembleSource(450))
	assert.Equal(t, []string{"A", "B", "C", "D"}, pr.DefineNames())
}

func TestParamBoundDefine(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	pr.SetDefineCell(compute.NewParamDefine("USE_FOG", "fog", nil))
	require.NoError(t, pr.Set("fog", compute.Bool, true))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Contains(t, pr.CompiledSource(), "#define USE_FOG 1\n")

	require.NoError(t, pr.Set("fog", compute.Bool, false))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.NotContains(t, pr.CompiledSource(), "USE_FOG")
	assert.Equal(t, 2, dev.Count("CompileShader"))

	// a bound array only signals presence
	pr.SetDefineCell(compute.NewParamDefine("HAS_WEIGHTS", "weights", nil))
	require.NoError(t, pr.Set("weights", compute.FloatArray, []float32{0.5}))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Contains(t, pr.CompiledSource(), "#define HAS_WEIGHTS 1\n")

	// a bound scalar feeds its value
	pr.SetDefineCell(compute.NewParamDefine("SAMPLES", "samples", nil))
	require.NoError(t, pr.Set("samples", compute.Int, 4))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Contains(t, pr.CompiledSource(), "#define SAMPLES 4\n")
}

func TestNaNBoundDefineCompilesOnce(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	pr.SetDefineCell(compute.NewParamDefine("GAIN", "gain", nil))
	require.NoError(t, pr.Set("gain", compute.Float, float32(math.NaN())))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 1, dev.Count("CompileShader"))
	assert.False(t, pr.IsDirty())
}

func TestCompileFailureKeepsProgram(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Set("time", compute.Float, float32(1)))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	good := pr.CompiledSource()
	active := dev.Active
	dev.Reset()

	dev.FailCompileIf = "#define BROKEN"
	dev.CompileLog = "0:3: error: syntax error"
	require.NoError(t, pr.SetDefine("BROKEN", 1))
	err := pr.Execute(dev, caps, 1, 1, 1)
	var ce *compute.CompileError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, compute.ErrCompile)
	assert.Equal(t, "test", ce.Program)
	assert.Equal(t, 430, ce.Version)
	assert.Equal(t, dev.CompileLog, ce.Log)
	assert.Contains(t, ce.Source, "#define BROKEN 1\n")

	assert.True(t, pr.IsDirty())
	assert.Equal(t, good, pr.CompiledSource())
	assert.True(t, dev.Programs[active])
	assert.Empty(t, dev.Shaders)
	assert.Empty(t, dev.Dispatches)

	require.NoError(t, pr.SetDefine("BROKEN", nil))
	require.NoError(t, pr.Execute(dev, caps, 2, 1, 1))
	assert.False(t, pr.IsDirty())
	assert.False(t, dev.Programs[active])
	assert.Len(t, dev.Programs, 1)
	assert.Equal(t, [][3]uint32{{2, 1, 1}}, dev.Dispatches)
	// the relinked program gets the values again
	assert.Equal(t, float32(1), dev.Values["time"])
}

func TestLinkFailure(t *testing.T) {
	dev := computetest.NewDevice()
	dev.FailLink = true
	pr := newProgram(t)
	err := pr.Execute(dev, computetest.Caps(430), 1, 1, 1)
	var ce *compute.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "link failed", ce.Log)
	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Shaders)
	assert.True(t, pr.IsDirty())
}

func TestUploadOnlyWhenNeeded(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Set("time", compute.Float, float32(1)))
	require.NoError(t, pr.Set("scale", compute.Vector3, math32.Vec3(1, 2, 3)))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, float32(1), dev.Values["time"])
	assert.Equal(t, []float32{1, 2, 3}, dev.Values["scale"])

	dev.Reset()
	require.NoError(t, pr.Set("time", compute.Float, float32(1)))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 0, dev.Uploads("time"))
	assert.Equal(t, 0, dev.Uploads("scale"))

	require.NoError(t, pr.Update("time", float32(2)))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 1, dev.Uploads("time"))
	assert.Equal(t, float32(2), dev.Values["time"])
	assert.Equal(t, 0, dev.Uploads("scale"))
	assert.False(t, pr.Uniform("time").IsUploadNeeded())
}

func TestRelinkReuploads(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Set("time", compute.Float, float32(1)))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	dev.Reset()

	require.NoError(t, pr.SetDefine("A", 1))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 1, dev.Uploads("time"))
	assert.Equal(t, 1, dev.Count("UniformLocation"))
}

func TestUploadKinds(t *testing.T) {
	dev := computetest.NewDevice()
	pr := newProgram(t)
	m3 := math32.Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	require.NoError(t, pr.Set("on", compute.Bool, true))
	require.NoError(t, pr.Set("count", compute.Int, 3))
	require.NoError(t, pr.Set("offset", compute.Vector2, math32.Vec2(1, 2)))
	require.NoError(t, pr.Set("rot", compute.Vector4, math32.Quat{W: 1}))
	require.NoError(t, pr.Set("basis", compute.Matrix3, m3))
	require.NoError(t, pr.Set("ids", compute.IntArray, []int32{4, 5}))
	require.NoError(t, pr.Set("bases", compute.Matrix3Array, []math32.Matrix3{m3, m3}))
	require.NoError(t, pr.Set("empty", compute.FloatArray, []float32{}))
	require.NoError(t, pr.Execute(dev, computetest.Caps(430), 1, 1, 1))

	assert.Equal(t, int32(1), dev.Values["on"])
	assert.Equal(t, int32(3), dev.Values["count"])
	assert.Equal(t, []float32{1, 2}, dev.Values["offset"])
	assert.Equal(t, []float32{0, 0, 0, 1}, dev.Values["rot"])
	assert.Equal(t, m3[:], dev.Values["basis"])
	assert.Equal(t, []int32{4, 5}, dev.Values["ids"])
	assert.Len(t, dev.Values["bases"], 18)
	assert.Equal(t, 2, dev.Count("UniformMatrix3fv"))
	assert.NotContains(t, dev.Values, "empty")
}

func TestTextureUnits(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Set("output", compute.Texture2D, computetest.Texture(7)))
	require.NoError(t, pr.Set("input", compute.Texture2D, computetest.Texture(8)))
	require.NoError(t, pr.Set("lut", compute.Texture3D, nil))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, map[int]uint32{0: 8, 1: 7}, dev.Bound)
	assert.Equal(t, int32(0), dev.Values["input"])
	assert.Equal(t, int32(1), dev.Values["output"])

	// textures are rebound every time
	dev.Reset()
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, 2, dev.Count("BindTexture"))

	// unset textures take no unit
	dev.Reset()
	require.NoError(t, pr.Set("input", compute.Texture2D, nil))
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, map[int]uint32{0: 7}, dev.Bound)
}

func TestTextureBinderFunc(t *testing.T) {
	dev := computetest.NewDevice()
	pr := newProgram(t)
	require.NoError(t, pr.Set("b", compute.Texture2D, computetest.Texture(2)))
	require.NoError(t, pr.Set("a", compute.TextureArray, computetest.Texture(1)))
	var units []int
	tb := compute.TextureBinderFunc(func(unit int, tex compute.Texture) error {
		units = append(units, unit, int(tex.Handle()))
		return nil
	})
	require.NoError(t, pr.ExecuteWith(dev, tb, computetest.Caps(430), 1, 1, 1))
	assert.Equal(t, []int{0, 1, 1, 2}, units)
	assert.Equal(t, 0, dev.Count("BindTexture"))
}

func TestTextureUnitError(t *testing.T) {
	dev := computetest.NewDevice()
	dev.FailUnits[0] = true
	pr := newProgram(t)
	require.NoError(t, pr.Set("img", compute.Texture2D, computetest.Texture(1)))
	err := pr.Execute(dev, computetest.Caps(430), 1, 1, 1)
	assert.ErrorIs(t, err, compute.ErrTextureUnit)
	assert.True(t, compute.IsDeviceError(err))
	assert.Contains(t, err.Error(), "img")
	assert.Empty(t, dev.Dispatches)
}

func TestDispatchBarrier(t *testing.T) {
	dev := computetest.NewDevice()
	pr := newProgram(t)
	require.NoError(t, pr.Execute(dev, computetest.Caps(430), 8, 4, 1))
	assert.Equal(t, [][3]uint32{{8, 4, 1}}, dev.Dispatches)
	assert.Equal(t, []compute.Barriers{compute.BarrierShaderImageAccess}, dev.Barriers)

	n := len(dev.Calls)
	assert.Equal(t, "DispatchCompute", dev.Calls[n-2].Name)
	assert.Equal(t, "MemoryBarrier", dev.Calls[n-1].Name)
}

func TestMissingReferences(t *testing.T) {
	pr := newProgram(t)
	_, err := pr.Get("nope")
	assert.ErrorIs(t, err, compute.ErrMissingReference)
	assert.ErrorIs(t, pr.Update("nope", 1), compute.ErrMissingReference)

	pr.SetFailOnMissing(true)
	assert.True(t, pr.FailOnMissing())
	err = pr.Set("x", compute.Float, float32(1))
	assert.ErrorIs(t, err, compute.ErrMissingReference)
	assert.True(t, compute.IsConfigError(err))
	assert.False(t, pr.Exists("x"))
	assert.ErrorIs(t, pr.SetDefine("X", 1), compute.ErrMissingReference)

	pr.SetUniform(compute.NewUniform("x", compute.Float))
	assert.NoError(t, pr.Set("x", compute.Float, float32(1)))
	assert.ErrorIs(t, pr.Set("x", compute.Int, 1), compute.ErrTypeMismatch)
	v, err := pr.Get("x")
	assert.NoError(t, err)
	assert.Equal(t, float32(1), v)
}

func TestSetRejectsBadValueWithoutCreating(t *testing.T) {
	pr := newProgram(t)
	assert.ErrorIs(t, pr.Set("x", compute.Float, "one"), compute.ErrTypeMismatch)
	assert.False(t, pr.Exists("x"))
}

func TestDelete(t *testing.T) {
	pr := newProgram(t)
	require.NoError(t, pr.Set("x", compute.Int, 1))
	require.NoError(t, pr.SetDefine("x", 1))
	pr.Delete("x")
	assert.True(t, pr.Exists("x"))
	v, err := pr.Get("x")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, pr.Define("x").IsEnabled())
	pr.Delete("unknown")
	assert.Equal(t, []string{"x"}, pr.UniformNames())
}

func TestRelease(t *testing.T) {
	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	pr := newProgram(t)
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Len(t, dev.Programs, 1)
	pr.Release(dev)
	assert.Empty(t, dev.Programs)
	assert.True(t, pr.IsDirty())
	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Len(t, dev.Programs, 1)
}

func TestInactiveUniform(t *testing.T) {
	dev := computetest.NewDevice()
	dev.Inactive["unused"] = true
	pr := newProgram(t)
	require.NoError(t, pr.Set("unused", compute.Float, float32(1)))
	require.NoError(t, pr.Execute(dev, computetest.Caps(430), 1, 1, 1))
	assert.Equal(t, 0, dev.Uploads("unused"))
	assert.False(t, pr.Uniform("unused").IsUploadNeeded())
}
