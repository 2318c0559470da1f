// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"image/color"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsString(t *testing.T) {
	for k := Bool; k < KindsN; k++ {
		var got Kinds
		require.NoError(t, got.SetString(k.String()))
		assert.Equal(t, k, got)
	}
	var k Kinds
	assert.Error(t, k.SetString("Vec5"))
	assert.Equal(t, "99", Kinds(99).String())
	assert.Len(t, KindsValues(), int(KindsN))
	assert.Contains(t, Vector4.Desc(), "math32.Quat")

	require.NoError(t, k.SetString("UndefinedKind"))
	assert.False(t, k.IsValid())
}

func TestKindsElements(t *testing.T) {
	assert.Equal(t, 16, Matrix4.Elements())
	assert.Equal(t, 16, Matrix4Array.Elements())
	assert.Equal(t, 9, Matrix3.Elements())
	assert.Equal(t, 4, Vector4Array.Elements())
	assert.Equal(t, 1, Texture3D.Elements())
	assert.Equal(t, 0, UndefinedKind.Elements())

	assert.True(t, Float.IsScalar())
	assert.False(t, Vector2.IsScalar())
	assert.True(t, Matrix3Array.IsArray())
	assert.False(t, Matrix3.IsArray())
	assert.True(t, TextureArray.IsTexture())
	assert.False(t, IntArray.IsTexture())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		val  any
		want Kinds
	}{
		{true, Bool},
		{3, Int},
		{1.5, Float},
		{math32.Vec3(1, 2, 3), Vector3},
		{color.RGBA{}, Vector4},
		{&math32.Matrix4{}, Matrix4},
		{[]float32{1}, FloatArray},
		{[]math32.Matrix3{{}}, Matrix3Array},
		{testTexture(1), Texture2D},
	}
	for _, test := range tests {
		k, ok := KindOf(test.val)
		assert.True(t, ok)
		assert.Equal(t, test.want, k, "%T", test.val)
	}
	_, ok := KindOf("string")
	assert.False(t, ok)
}

func TestKindsText(t *testing.T) {
	b, err := Matrix4Array.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Matrix4Array", string(b))
	var k Kinds
	require.NoError(t, k.UnmarshalText([]byte("TextureCubeMap")))
	assert.Equal(t, TextureCubeMap, k)
	// unknown names are logged and leave the value as it was
	assert.NoError(t, k.UnmarshalText([]byte("Sampler")))
	assert.Equal(t, TextureCubeMap, k)
}
