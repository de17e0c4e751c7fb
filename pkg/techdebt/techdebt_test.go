// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package techdebt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func TestScan_FindsAllSixMarkerKinds(t *testing.T) {
	files := []model.FileRecord{{RelPath: "mod.py", ParseStatus: model.ParseStatusParsed}}
	src := `x = 1
# TODO: refactor this
# FIXME handle the edge case
# HACK: workaround for upstream bug
# XXX this is fragile
# BUG: off by one somewhere
# OPTIMIZE: avoid the extra pass
`
	read := func(f model.FileRecord) (string, error) { return src, nil }
	out := Scan(files, read)
	require.Len(t, out, 6)

	markers := map[string]model.TechDebtMarker{}
	for _, m := range out {
		markers[m.Marker] = m
	}
	assert.Equal(t, "refactor this", markers["TODO"].Text)
	assert.Equal(t, "handle the edge case", markers["FIXME"].Text)
	assert.Equal(t, 2, markers["TODO"].Line)
}

func TestScan_UnreadableFileSkipped(t *testing.T) {
	files := []model.FileRecord{{RelPath: "bad.py", ParseStatus: model.ParseStatusUnreadable}}
	read := func(f model.FileRecord) (string, error) { return "", fmt.Errorf("unreachable") }
	out := Scan(files, read)
	assert.Empty(t, out)
}
