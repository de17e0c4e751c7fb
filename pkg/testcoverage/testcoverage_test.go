// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package testcoverage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func reader(contents map[string]string) Reader {
	return func(f model.FileRecord) (string, error) {
		text, ok := contents[f.RelPath]
		if !ok {
			return "", fmt.Errorf("no fixture for %s", f.RelPath)
		}
		return text, nil
	}
}

func TestBuild_CategorizesBySubdirectory(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "tests/unit/test_a.py", ParseStatus: model.ParseStatusParsed},
		{RelPath: "tests/integration/test_b.py", ParseStatus: model.ParseStatusParsed},
		{RelPath: "tests/test_top.py", ParseStatus: model.ParseStatusParsed},
	}
	contents := map[string]string{
		"tests/unit/test_a.py":        "def test_one():\n    pass\n\ndef test_two():\n    pass\n",
		"tests/integration/test_b.py": "def test_flow():\n    pass\n",
		"tests/test_top.py":           "def test_root():\n    pass\n",
	}
	out := Build(files, reader(contents))
	require.Len(t, out.Dirs, 3)

	byPath := map[string]model.TestDirStats{}
	for _, d := range out.Dirs {
		byPath[d.RelPath] = d
	}
	assert.Equal(t, "unit", byPath["tests/unit"].Category)
	assert.Equal(t, 2, byPath["tests/unit"].TestFuncCount)
	assert.Equal(t, "integration", byPath["tests/integration"].Category)
	assert.Equal(t, "", byPath["tests"].Category)
}

func TestBuild_ExtractsFixturesFromConftest(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "tests/conftest.py", ParseStatus: model.ParseStatusParsed},
	}
	src := "import pytest\n\n@pytest.fixture\ndef client():\n    return object()\n\n@pytest.fixture(scope=\"session\")\ndef db():\n    return None\n"
	out := Build(files, reader(map[string]string{"tests/conftest.py": src}))
	require.Len(t, out.Fixtures, 2)
	assert.Equal(t, "client", out.Fixtures[0].Name)
	assert.Equal(t, "db", out.Fixtures[1].Name)
}

func TestBuild_TestedVsUntestedSourceDirs(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "pkg/widget.py", ParseStatus: model.ParseStatusParsed},
		{RelPath: "util/helpers.py", ParseStatus: model.ParseStatusParsed},
		{RelPath: "tests/pkg/test_widget.py", ParseStatus: model.ParseStatusParsed},
	}
	contents := map[string]string{
		"pkg/widget.py":             "class Widget: pass\n",
		"util/helpers.py":           "def helper(): pass\n",
		"tests/pkg/test_widget.py":  "def test_widget():\n    pass\n",
	}
	out := Build(files, reader(contents))
	assert.Contains(t, out.TestedSourceDirs, "pkg")
	assert.Contains(t, out.UntestedSourceDirs, "util")
}
