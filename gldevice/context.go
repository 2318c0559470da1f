// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Context is a hidden glfw window that owns an OpenGL 4.3 core context,
// for running compute programs without any visible surface.
// It must be created and used on a goroutine locked to its OS thread
// (usually the main goroutine, see runtime.LockOSThread).
type Context struct {
	// Window is the hidden window that owns the context.
	Window *glfw.Window

	// Device is the device for the context.
	Device *Device
}

// NewContext initializes glfw, creates a hidden window with an
// OpenGL 4.3 core context, makes it current and returns it.
func NewContext() (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("gldevice: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(1, 1, "glcompute", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("gldevice: glfw create window: %w", err)
	}
	win.MakeContextCurrent()
	dev, err := New()
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	return &Context{Window: win, Device: dev}, nil
}

// Finish blocks until all previously issued commands are complete.
func (cx *Context) Finish() {
	gl.Finish()
}

// Release destroys the window and terminates glfw.
func (cx *Context) Release() {
	if cx.Window != nil {
		cx.Window.Destroy()
		cx.Window = nil
	}
	glfw.Terminate()
}
