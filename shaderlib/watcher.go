// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaderlib

import (
	"log/slog"
	"path"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the files of the programs in a [Library] on the OS file
// system and marks them as changed. The library file system must be
// rooted at Root, as with os.DirFS(Root).
type Watcher struct {
	// Root is the OS directory that library paths are relative to.
	Root string

	lib     *Library
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	closeErr  error

	// watched directories
	watched map[string]bool
}

// NewWatcher returns a new [Watcher] for the library, watching the
// directories of all of its current programs.
func NewWatcher(lib *Library, root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wt := &Watcher{Root: root, lib: lib, watcher: fw, done: make(chan struct{}), watched: make(map[string]bool)}
	if err := wt.Update(); err != nil {
		fw.Close()
		return nil, err
	}
	wt.wg.Add(1)
	go wt.watch()
	return wt, nil
}

// Update adds the directories of programs added to the library since
// the watcher was created. It must be called on the goroutine that
// owns the library.
func (wt *Watcher) Update() error {
	for _, p := range wt.lib.Paths() {
		dir := filepath.Join(wt.Root, filepath.FromSlash(path.Dir(p)))
		if wt.watched[dir] {
			continue
		}
		if err := wt.watcher.Add(dir); err != nil {
			return err
		}
		wt.watched[dir] = true
	}
	return nil
}

func (wt *Watcher) watch() {
	defer wt.wg.Done()
	for {
		select {
		case <-wt.done:
			return
		case event, ok := <-wt.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if p, ok := wt.libPath(event.Name); ok {
					wt.lib.MarkChanged(p)
				}
			}
		case err, ok := <-wt.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("shaderlib: watcher error", "err", err)
		}
	}
}

// libPath returns the library path of an OS file name under Root.
func (wt *Watcher) libPath(name string) (string, bool) {
	rel, err := filepath.Rel(wt.Root, name)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Close stops watching. Calling it again has no effect and returns the
// error of the first call.
func (wt *Watcher) Close() error {
	wt.closeOnce.Do(func() {
		close(wt.done)
		wt.closeErr = wt.watcher.Close()
		wt.wg.Wait()
	})
	return wt.closeErr
}
