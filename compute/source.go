// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// AssembleSource returns the full source compiled for the given version:
// the version line, a define line for every enabled define in name order,
// and then the body source.
func (pr *Program) AssembleSource(version int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#version %d core\n", version)
	for _, nm := range sortedKeys(pr.defines) {
		df := pr.defines[nm]
		if !df.IsEnabled() {
			continue
		}
		sb.WriteString("#define ")
		sb.WriteString(df.name)
		sb.WriteByte(' ')
		sb.WriteString(df.Literal())
		sb.WriteByte('\n')
	}
	sb.WriteString(pr.source)
	return sb.String()
}

// NumberedSource returns the source with a line number in front of
// each line, matching the line numbers in device compile logs.
func NumberedSource(src string) string {
	lines := strings.Split(src, "\n")
	var sb strings.Builder
	for i, ln := range lines {
		fmt.Fprintf(&sb, "%4d\t%s\n", i+1, ln)
	}
	return sb.String()
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	ks := maps.Keys(m)
	slices.Sort(ks)
	return ks
}
