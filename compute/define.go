// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"log/slog"
	"strconv"
	"strings"
)

// Define is a preprocessor define that is injected into the source of a
// [Program] as "#define Name Value" whenever it is enabled.
// A Define can be bound to a parameter (uniform) name, in which case the
// program feeds the current value of that uniform into the define before
// every dispatch.
type Define struct {
	// name of the define in the shader source
	name string

	// name of the uniform that sources the value, or "" if unbound
	param string

	// current value: nil, bool, int, float32 or string
	value any
}

// NewDefine returns a new unbound [Define] with no value.
func NewDefine(name string) *Define {
	return &Define{name: name}
}

// NewParamDefine returns a new [Define] bound to the given parameter name,
// with the given initial value (which can be nil).
func NewParamDefine(name, param string, val any) *Define {
	df := &Define{name: name, param: param}
	df.SetValue(val)
	return df
}

// Name returns the name of the define.
func (df *Define) Name() string { return df.name }

// Param returns the name of the parameter the define is bound to, or "".
func (df *Define) Param() string { return df.param }

// Value returns the current normalized value, nil if absent.
func (df *Define) Value() any { return df.value }

// IsEnabled returns true if the value is present and is not the
// false-like value of its type (false, 0, 0.0 or "").
func (df *Define) IsEnabled() bool {
	switch v := df.value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case float32:
		return v != 0
	case string:
		return v != ""
	}
	return true
}

// SetValue sets the value of the define, and returns true exactly when this
// flips the enabled state, in either direction. Values other than bool,
// integers, floats and strings are stored as a presence flag of 1.
func (df *Define) SetValue(val any) bool {
	flipped, _ := df.set(val)
	return flipped
}

// set sets the value, returning whether the enabled state flipped and
// whether the emitted source line changed as a result.
func (df *Define) set(val any) (flipped, changed bool) {
	val = normalizeDefine(val)
	if sameDefineValue(val, df.value) {
		return false, false
	}
	if f, ok := val.(float32); ok && !isFinite(f) {
		slog.Warn("compute: define value is not a finite number", "define", df.name, "value", f)
	}
	was := df.IsEnabled()
	df.value = val
	is := df.IsEnabled()
	return was != is, was || is
}

// Literal returns the text emitted after the define name: booleans as 1
// or 0, floats always with a decimal point, strings verbatim.
func (df *Define) Literal() string {
	switch v := df.value.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case float32:
		s := strconv.FormatFloat(float64(v), 'g', -1, 32)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case string:
		return v
	}
	return ""
}

func normalizeDefine(val any) any {
	switch v := val.(type) {
	case nil, bool, int, float32, string:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return float32(v)
	}
	return 1
}
