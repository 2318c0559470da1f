// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import "github.com/chewxy/math32"

// invalidFloat returns the index of the first NaN or infinite value, or -1.
func invalidFloat(fs []float32) int {
	for i, f := range fs {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return i
		}
	}
	return -1
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// sameDefineValue compares normalized define values, with all NaNs equal.
func sameDefineValue(a, b any) bool {
	fa, aok := a.(float32)
	fb, bok := b.(float32)
	if aok && bok && math32.IsNaN(fa) && math32.IsNaN(fb) {
		return true
	}
	return a == b
}
