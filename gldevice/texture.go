// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gldevice

import (
	"image"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Texture is an OpenGL texture that can be bound to a texture uniform.
// When Access is set, it is also bound as an image for load / store.
type Texture struct {
	// ID is the texture object name.
	ID uint32

	// Target is the texture target, e.g., gl.TEXTURE_2D.
	Target uint32

	// Format is the sized internal format, e.g., gl.RGBA32F.
	Format uint32

	// Access is the image access (gl.READ_ONLY, gl.WRITE_ONLY or
	// gl.READ_WRITE), or 0 if it is only sampled.
	Access uint32

	// Size is the size of the base level.
	Size image.Point

	// Depth is the depth or number of layers, 1 for 2D textures.
	Depth int
}

// NewTexture2D allocates immutable storage for a 2D texture of the given
// size and format, bound for image access with the given access.
func NewTexture2D(size image.Point, format, access uint32) *Texture {
	tx := &Texture{Target: gl.TEXTURE_2D, Format: format, Access: access, Size: size, Depth: 1}
	gl.GenTextures(1, &tx.ID)
	gl.BindTexture(gl.TEXTURE_2D, tx.ID)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, format, int32(size.X), int32(size.Y))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return tx
}

// NewImage2D returns a new RGBA32F 2D texture of the given size,
// bound for reading and writing as an image.
func NewImage2D(size image.Point) *Texture {
	return NewTexture2D(size, gl.RGBA32F, gl.READ_WRITE)
}

// NewTexture3D allocates immutable storage for a 3D texture, or a 2D
// texture array if target is gl.TEXTURE_2D_ARRAY.
func NewTexture3D(target uint32, size image.Point, depth int, format, access uint32) *Texture {
	tx := &Texture{Target: target, Format: format, Access: access, Size: size, Depth: depth}
	gl.GenTextures(1, &tx.ID)
	gl.BindTexture(target, tx.ID)
	gl.TexStorage3D(target, 1, format, int32(size.X), int32(size.Y), int32(depth))
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return tx
}

func (tx *Texture) Handle() uint32 { return tx.ID }

// Layered returns true if all layers are bound as an image.
func (tx *Texture) Layered() bool {
	switch tx.Target {
	case gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY, gl.TEXTURE_CUBE_MAP:
		return true
	}
	return false
}

// ReadRGBA32F reads back the base level of an RGBA32F texture as
// 4 floats per texel, in row order.
func (tx *Texture) ReadRGBA32F() []float32 {
	px := make([]float32, 4*tx.Size.X*tx.Size.Y*max(tx.Depth, 1))
	gl.BindTexture(tx.Target, tx.ID)
	gl.GetTexImage(tx.Target, 0, gl.RGBA, gl.FLOAT, gl.Ptr(px))
	return px
}

// Delete deletes the texture object.
func (tx *Texture) Delete() {
	if tx.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &tx.ID)
	tx.ID = 0
}
