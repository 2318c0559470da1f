// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaderlib

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"cogentcore.org/glcompute/compute"
	"cogentcore.org/glcompute/compute/computetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillDef = `
name = "fill"
shader = "fill.comp"
versions = ["GLSL430"]

[[parameters]]
type = "Float"
name = "level"
value = 0.5

[[parameters]]
type = "Int"
name = "count"
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"lib/fill.toml": {Data: []byte(fillDef)},
		"lib/fill.comp": {Data: []byte("void main() {}\n")},
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary(testFS())
	pr, err := lib.Add("lib/fill.toml")
	require.NoError(t, err)
	assert.Same(t, pr, lib.Program("fill"))
	assert.Nil(t, lib.Program("none"))
	assert.Equal(t, []string{"fill"}, lib.Names())
	assert.Equal(t, []string{"lib/fill.comp", "lib/fill.toml"}, lib.Paths())

	_, err = lib.Add("lib/none.toml")
	assert.Error(t, err)
}

func TestSyncReload(t *testing.T) {
	fsys := testFS()
	lib := NewLibrary(fsys)
	old, err := lib.Add("lib/fill.toml")
	require.NoError(t, err)
	require.NoError(t, old.Set("count", compute.Int, 7))

	dev := computetest.NewDevice()
	caps := computetest.Caps(430)
	require.NoError(t, old.Execute(dev, caps, 1, 1, 1))
	require.Len(t, dev.Programs, 1)

	// nothing pending
	require.NoError(t, lib.Sync(dev))
	assert.Same(t, old, lib.Program("fill"))

	fsys["lib/fill.comp"] = &fstest.MapFile{Data: []byte("void main() { }\n")}
	lib.MarkChanged("lib/other.comp")
	lib.MarkChanged("lib/fill.comp")
	assert.True(t, lib.Pending())
	require.NoError(t, lib.Sync(dev))
	assert.False(t, lib.Pending())

	pr := lib.Program("fill")
	assert.NotSame(t, old, pr)
	assert.Equal(t, "void main() { }\n", pr.Source())
	assert.Empty(t, dev.Programs)
	v, err := pr.Get("count")
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
	v, err = pr.Get("level")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), v)

	require.NoError(t, pr.Execute(dev, caps, 1, 1, 1))
	assert.Equal(t, int32(7), dev.Values["count"])
}

const fillDefines = fillDef + `
[[defines]]
name = "FAST"
value = 1

[[defines]]
name = "MODE"
value = 2
`

func TestSyncKeepsDefines(t *testing.T) {
	fsys := testFS()
	fsys["lib/fill.toml"] = &fstest.MapFile{Data: []byte(fillDefines)}
	lib := NewLibrary(fsys)
	old, err := lib.Add("lib/fill.toml")
	require.NoError(t, err)
	require.NoError(t, old.SetDefine("EXTRA", 3))
	require.NoError(t, old.SetDefine("FAST", 0))
	old.SetFailOnMissing(true)

	fsys["lib/fill.toml"] = &fstest.MapFile{Data: []byte(strings.Replace(fillDefines, "value = 2", "value = 4", 1))}
	lib.MarkChanged("lib/fill.toml")
	require.NoError(t, lib.Sync(computetest.NewDevice()))

	pr := lib.Program("fill")
	require.NotSame(t, old, pr)
	assert.True(t, pr.FailOnMissing())
	require.NotNil(t, pr.Define("EXTRA"))
	assert.Equal(t, 3, pr.Define("EXTRA").Value())
	assert.Equal(t, 0, pr.Define("FAST").Value())
	// unchanged at runtime, so the edited definition wins
	assert.Equal(t, 4, pr.Define("MODE").Value())
}

func TestSyncFailureKeepsProgram(t *testing.T) {
	fsys := testFS()
	lib := NewLibrary(fsys)
	old, err := lib.Add("lib/fill.toml")
	require.NoError(t, err)

	fsys["lib/fill.toml"] = &fstest.MapFile{Data: []byte("name = \"fill\"\n")}
	lib.MarkChanged("lib/fill.toml")
	err = lib.Sync(computetest.NewDevice())
	assert.ErrorContains(t, err, "reloading fill")
	assert.Same(t, old, lib.Program("fill"))
}

func TestMarkChangedConcurrent(t *testing.T) {
	lib := NewLibrary(testFS())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lib.MarkChanged("lib/fill.comp")
		}()
	}
	wg.Wait()
	assert.True(t, lib.Pending())
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fill.toml"), []byte(fillDef), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fill.comp"), []byte("void main() {}\n"), 0o644))

	lib := NewLibrary(os.DirFS(root))
	_, err := lib.Add("lib/fill.toml")
	require.NoError(t, err)
	wt, err := NewWatcher(lib, root)
	require.NoError(t, err)
	defer wt.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fill.comp"), []byte("void main() { }\n"), 0o644))
	assert.Eventually(t, lib.Pending, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, lib.Sync(computetest.NewDevice()))
	assert.Equal(t, "void main() { }\n", lib.Program("fill").Source())
}

func TestWatcherCloseTwice(t *testing.T) {
	root := t.TempDir()
	wt, err := NewWatcher(NewLibrary(os.DirFS(root)), root)
	require.NoError(t, err)
	assert.NoError(t, wt.Close())
	assert.NotPanics(t, func() { assert.NoError(t, wt.Close()) })
}
