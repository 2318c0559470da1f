// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaderdef loads compute program definition files, which name
// a GLSL body source and declare the versions, parameters and defines of
// the program, in TOML or YAML. For example:
//
//	name = "blur"
//	shader = "blur.comp"
//	versions = ["GLSL430", "GLSL450"]
//
//	[[parameters]]
//	type = "Float"
//	name = "radius"
//	value = 2.5
//
//	[[defines]]
//	name = "HORIZONTAL"
//	param = "horizontal"
package shaderdef

//go:generate core generate

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/gldevice/glsl"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Formats are the supported definition file formats.
type Formats int32 //enums:enum

const (
	TOML Formats = iota
	YAML
)

// FormatOf returns the format for the extension of the file name.
func FormatOf(filename string) (Formats, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return TOML, fmt.Errorf("shaderdef: unknown definition file format %q", filename)
}

// Definition is a compute program definition.
type Definition struct {
	// Name is the name of the program.
	Name string `toml:"name" yaml:"name"`

	// Shader is the path of the GLSL body source, relative to the
	// directory of the definition file.
	Shader string `toml:"shader" yaml:"shader"`

	// Versions are the acceptable versions, as "GLSL430" style names
	// or plain numbers.
	Versions []any `toml:"versions" yaml:"versions"`

	// Parameters are the uniforms of the program, with initial values.
	Parameters []Parameter `toml:"parameters" yaml:"parameters"`

	// Defines are the defines of the program.
	Defines []Define `toml:"defines" yaml:"defines"`

	// Path is the path of the definition file, set by [Load].
	Path string `toml:"-" yaml:"-"`
}

// Parameter declares a uniform.
type Parameter struct {
	// Type is the kind of the uniform.
	Type compute.Kinds `toml:"type" yaml:"type"`

	// Name is the name of the uniform.
	Name string `toml:"name" yaml:"name"`

	// Value is the initial value: a string of space separated literals,
	// a number, a bool, or a list of numbers. If it is absent, the
	// default for the kind is used.
	Value any `toml:"value,omitempty" yaml:"value,omitempty"`
}

// Define declares a define.
type Define struct {
	// Name is the name of the define.
	Name string `toml:"name" yaml:"name"`

	// Param is the name of the parameter that the define is bound to.
	// It defaults to the name of the define, unless a Value is given.
	Param string `toml:"param,omitempty" yaml:"param,omitempty"`

	// Value is a literal value, for a define that is not bound to any parameter.
	Value any `toml:"value,omitempty" yaml:"value,omitempty"`
}

// Parse parses a definition in the given format.
func Parse(data []byte, format Formats) (*Definition, error) {
	df := &Definition{}
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(df)
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(df)
	default:
		err = fmt.Errorf("unknown format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("shaderdef: parsing %v: %w", format, err)
	}
	if err := df.Validate(); err != nil {
		return nil, err
	}
	return df, nil
}

// Load reads and parses the definition file at the given path in the
// file system, with the format determined by its extension.
func Load(fsys fs.FS, filename string) (*Definition, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("shaderdef: %w", err)
	}
	df, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	df.Path = filename
	return df, nil
}

// Open loads the definition file at the given OS path, returning the
// definition and the file system of its directory, in which the
// definition has a path of just its base name.
func Open(filename string) (*Definition, fs.FS, error) {
	fsys := os.DirFS(filepath.Dir(filename))
	df, err := Load(fsys, filepath.Base(filename))
	return df, fsys, err
}

// Validate checks the definition for missing fields and invalid versions.
func (df *Definition) Validate() error {
	if df.Name == "" {
		return fmt.Errorf("shaderdef: definition has no name")
	}
	if df.Shader == "" {
		return fmt.Errorf("shaderdef: %s: shader source not specified", df.Name)
	}
	if len(df.Versions) == 0 {
		return fmt.Errorf("shaderdef: %s: supported versions not specified", df.Name)
	}
	if _, err := df.VersionNumbers(); err != nil {
		return err
	}
	for _, pm := range df.Parameters {
		if pm.Name == "" || !pm.Type.IsValid() {
			return fmt.Errorf("shaderdef: %s: parameter must have type and name", df.Name)
		}
	}
	for _, d := range df.Defines {
		if d.Name == "" {
			return fmt.Errorf("shaderdef: %s: define must have a name", df.Name)
		}
	}
	return nil
}

// VersionNumbers returns the acceptable versions as numbers.
func (df *Definition) VersionNumbers() ([]int, error) {
	vs := make([]int, 0, len(df.Versions))
	for _, v := range df.Versions {
		var n int
		switch v := v.(type) {
		case string:
			var err error
			if n, err = glsl.ParseName(v); err != nil {
				return nil, fmt.Errorf("shaderdef: %s: %w", df.Name, err)
			}
		case int:
			n = v
		case int64:
			n = int(v)
		case uint64:
			n = int(v)
		default:
			return nil, fmt.Errorf("shaderdef: %s: invalid version %v", df.Name, v)
		}
		if n < compute.MinVersion {
			return nil, fmt.Errorf("shaderdef: %s: compute shaders are not supported before version %d: %w", df.Name, compute.MinVersion, compute.ErrUnsupportedVersion)
		}
		vs = append(vs, n)
	}
	return vs, nil
}

// ShaderPath returns the path of the shader source in the file system.
func (df *Definition) ShaderPath() string {
	return path.Join(path.Dir(df.Path), df.Shader)
}

// NewProgram reads the shader source from the file system and returns
// a new program with the declared parameters and defines.
func (df *Definition) NewProgram(fsys fs.FS) (*compute.Program, error) {
	src, err := fs.ReadFile(fsys, df.ShaderPath())
	if err != nil {
		return nil, fmt.Errorf("shaderdef: %s: %w", df.Name, err)
	}
	versions, err := df.VersionNumbers()
	if err != nil {
		return nil, err
	}
	pr, err := compute.NewProgram(df.Name, versions, string(src))
	if err != nil {
		return nil, err
	}
	for _, d := range df.Defines {
		switch {
		case d.Value != nil:
			pr.SetDefineCell(compute.NewParamDefine(d.Name, "", d.Value))
		case d.Param != "":
			pr.SetDefineCell(compute.NewParamDefine(d.Name, d.Param, nil))
		default:
			pr.SetDefineCell(compute.NewParamDefine(d.Name, d.Name, nil))
		}
	}
	for _, pm := range df.Parameters {
		val, err := ParseValue(pm.Type, pm.Value)
		if err != nil {
			return nil, fmt.Errorf("shaderdef: %s: parameter %s: %w", df.Name, pm.Name, err)
		}
		un := compute.NewUniform(pm.Name, pm.Type)
		if err := un.SetValue(val); err != nil {
			return nil, err
		}
		pr.SetUniform(un)
	}
	return pr, nil
}
