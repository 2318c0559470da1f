// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaderlib keeps a library of compute programs loaded from
// definition files, and reloads them when their files change.
package shaderlib

import (
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/shaderdef"
	"golang.org/x/exp/maps"
)

// Library is a set of named programs loaded from definition files in a
// file system. Changes to the files are recorded with [Library.MarkChanged],
// which is safe to call from any goroutine, and applied by [Library.Sync]
// on the goroutine that owns the device. All other methods must be called
// from that goroutine.
type Library struct {
	// FS is the file system that definitions are loaded from.
	FS fs.FS

	// entries by program name
	entries map[string]*entry

	// pending are the changed paths, guarded by mu.
	pending map[string]bool
	mu      sync.Mutex
}

// entry is one program in the library.
type entry struct {
	def     *shaderdef.Definition
	program *compute.Program
}

// uses returns true if the entry is loaded from the given path.
func (en *entry) uses(path string) bool {
	return en.def.Path == path || en.def.ShaderPath() == path
}

// NewLibrary returns a new empty [Library] over the file system.
func NewLibrary(fsys fs.FS) *Library {
	return &Library{FS: fsys, entries: make(map[string]*entry), pending: make(map[string]bool)}
}

// Add loads the definition file at the given path and adds its program,
// replacing any program of the same name.
func (lb *Library) Add(path string) (*compute.Program, error) {
	en, err := lb.load(path)
	if err != nil {
		return nil, err
	}
	lb.entries[en.def.Name] = en
	return en.program, nil
}

func (lb *Library) load(path string) (*entry, error) {
	df, err := shaderdef.Load(lb.FS, path)
	if err != nil {
		return nil, err
	}
	pr, err := df.NewProgram(lb.FS)
	if err != nil {
		return nil, err
	}
	return &entry{def: df, program: pr}, nil
}

// Program returns the program of the given name, or nil.
func (lb *Library) Program(name string) *compute.Program {
	if en, ok := lb.entries[name]; ok {
		return en.program
	}
	return nil
}

// Names returns the sorted names of the programs.
func (lb *Library) Names() []string {
	ns := maps.Keys(lb.entries)
	slices.Sort(ns)
	return ns
}

// Paths returns the sorted definition and shader paths of all programs.
func (lb *Library) Paths() []string {
	var ps []string
	for _, en := range lb.entries {
		ps = append(ps, en.def.Path, en.def.ShaderPath())
	}
	slices.Sort(ps)
	return slices.Compact(ps)
}

// MarkChanged records that the file at the given path has changed.
// Programs that use it are reloaded on the next [Library.Sync].
func (lb *Library) MarkChanged(path string) {
	lb.mu.Lock()
	lb.pending[path] = true
	lb.mu.Unlock()
}

// Pending returns true if there are changes that have not been synced.
func (lb *Library) Pending() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.pending) > 0
}

// Sync reloads every program that uses a changed file. The set uniform
// values of the old program are copied into the new one, and the device
// program of the old one is released. A program that fails to reload is
// kept as it is, and the errors are returned together.
func (lb *Library) Sync(dev compute.Device) error {
	lb.mu.Lock()
	changed := lb.pending
	lb.pending = make(map[string]bool)
	lb.mu.Unlock()
	if len(changed) == 0 {
		return nil
	}
	var errs []error
	for _, name := range lb.Names() {
		old := lb.entries[name]
		if !slices.ContainsFunc(maps.Keys(changed), old.uses) {
			continue
		}
		en, err := lb.load(old.def.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("shaderlib: reloading %s: %w", name, err))
			continue
		}
		if en.def.Name != name {
			errs = append(errs, fmt.Errorf("shaderlib: reloading %s: definition was renamed to %s", name, en.def.Name))
			continue
		}
		copyState(en.program, old)
		old.program.Release(dev)
		lb.entries[name] = en
		slog.Info("shaderlib: reloaded program", "program", name)
	}
	return errors.Join(errs...)
}

// copyState carries the runtime state of the old entry over to the new
// program: every set uniform value, the values of unbound defines that
// were added or changed after loading, and the fail on missing setting.
// Uniforms and defines that the new program does not declare are added to it.
func copyState(to *compute.Program, from *entry) {
	for _, un := range from.program.Uniforms() {
		if !un.IsSet() {
			continue
		}
		if nu := to.Uniform(un.Name()); nu != nil && nu.Kind() != un.Kind() {
			slog.Warn("shaderlib: uniform changed kind, value not kept", "program", to.Name(), "uniform", un.Name(), "old", un.Kind(), "new", nu.Kind())
			continue
		}
		errors.Log(to.Set(un.Name(), un.Kind(), un.Value()))
	}
	declared := make(map[string]*compute.Define)
	for _, d := range from.def.Defines {
		if d.Value != nil {
			declared[d.Name] = compute.NewParamDefine(d.Name, "", d.Value)
		}
	}
	for _, name := range from.program.DefineNames() {
		df := from.program.Define(name)
		if df.Param() != "" {
			continue
		}
		if dd, ok := declared[name]; ok && dd.Value() == df.Value() {
			continue
		}
		errors.Log(to.SetDefine(name, df.Value()))
	}
	to.SetFailOnMissing(from.program.FailOnMissing())
}

// Release releases the device programs of all programs.
func (lb *Library) Release(dev compute.Device) {
	for _, en := range lb.entries {
		en.program.Release(dev)
	}
}
