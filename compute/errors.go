// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"fmt"

	"cogentcore.org/core/base/errors"
)

var (
	// ErrTypeMismatch is returned when a value does not match the kind
	// of the uniform it is set on. The uniform is not modified.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMissingReference is returned when a uniform or define is referenced
	// by name but does not exist, and cannot be created on demand.
	ErrMissingReference = errors.New("missing reference")

	// ErrUnsupportedVersion is returned when none of the acceptable versions of
	// a program are supported by the device, or a version is below [MinVersion].
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrCompile is wrapped by every [CompileError].
	ErrCompile = errors.New("compile error")

	// ErrTextureUnit is returned when the device refuses to bind a texture to a unit.
	ErrTextureUnit = errors.New("texture unit error")

	// ErrUnsupportedKind is returned when a value of a kind with no
	// device upload mapping is uploaded.
	ErrUnsupportedKind = errors.New("unsupported kind")
)

// CompileError is returned by [Program.Execute] when the device rejects the
// assembled source. The program stays dirty, so a later Execute retries.
type CompileError struct {
	// Program is the name of the program that failed to compile.
	Program string

	// Version is the shading language version the source was assembled for.
	Version int

	// Log is the diagnostic log reported by the device.
	Log string

	// Source is the full assembled source that was compiled.
	Source string
}

func (ce *CompileError) Error() string {
	return fmt.Sprintf("compute: compile error in %s (version %d):\n%s", ce.Program, ce.Version, ce.Log)
}

func (ce *CompileError) Unwrap() error {
	return ErrCompile
}

// IsConfigError returns true if the error indicates a caller bug that can be
// fixed without a device: [ErrTypeMismatch] or [ErrMissingReference].
func IsConfigError(err error) bool {
	return errors.Is(err, ErrTypeMismatch) || errors.Is(err, ErrMissingReference)
}

// IsDeviceError returns true if the error comes from the environment or the
// shader source: [ErrUnsupportedVersion], [ErrCompile] or [ErrTextureUnit].
func IsDeviceError(err error) bool {
	return errors.Is(err, ErrUnsupportedVersion) || errors.Is(err, ErrCompile) || errors.Is(err, ErrTextureUnit)
}
