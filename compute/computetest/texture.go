// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package computetest

import (
	"cogentcore.org/core/base/errors"
	"cogentcore.org/glcompute/compute"
)

var errTextureUnit = errors.New("computetest: texture unit refused")

// Texture is a fake [compute.Texture] identified by its handle.
type Texture uint32

func (tx Texture) Handle() uint32 { return uint32(tx) }

// Caps returns [compute.Versions] supporting the given versions.
func Caps(versions ...int) compute.Versions {
	return compute.NewVersions(versions...)
}
