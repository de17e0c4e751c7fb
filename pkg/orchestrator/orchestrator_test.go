// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRun_EndToEndOverSmallTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/widget.py", "import os\n\n\ndef load():\n    return os.getenv(\"WIDGET_PATH\", \"/tmp\")\n\n\nclass Widget:\n    def render(self):\n        if True:\n            print(\"ok\")\n        return 1\n")
	writeFile(t, dir, "main.py", "from pkg.widget import Widget\n\n\ndef main():\n    Widget().render()\n\n\nif __name__ == \"__main__\":\n    main()\n")
	writeFile(t, dir, "tests/test_widget.py", "def test_render():\n    assert True\n\n\n# TODO: add a failure case\n")

	bundle, err := New().Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, bundle.TotalFiles)
	assert.Equal(t, 3, bundle.ParsedFiles)
	assert.NotEmpty(t, bundle.ImportGraph.Edges)
	assert.NotEmpty(t, bundle.EnvVars)
	assert.Len(t, bundle.TechDebt, 1)
	assert.Equal(t, "TODO", bundle.TechDebt[0].Marker)
	assert.NotZero(t, bundle.TestCoverage)
	assert.Len(t, bundle.GitWarnings, 1, "target is not a git repository")
	assert.False(t, bundle.GeneratedAt.IsZero())
	assert.Equal(t, DefaultToolVersion, bundle.ToolVersion)
}

func TestRun_SyntaxErrorFileDoesNotAbortRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.py", "x = 1\n")
	writeFile(t, dir, "broken.py", "def broken(:\n    pass\n")

	bundle, err := New().Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, bundle.TotalFiles)

	var sawOk, sawBroken bool
	for _, f := range bundle.Files {
		if f.RelPath == "ok.py" {
			sawOk = f.ParseStatus == model.ParseStatusParsed
		}
		if f.RelPath == "broken.py" {
			sawBroken = f.ParseStatus == model.ParseStatusSyntaxError
		}
	}
	assert.True(t, sawOk)
	assert.True(t, sawBroken)
}

func TestRun_TargetNotFoundReturnsError(t *testing.T) {
	_, err := New().Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestRun_RespectsMaxWorkersOfOne(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, filepath.Join("pkg", "m"+string(rune('a'+i))+".py"), "x = 1\n")
	}

	bundle, err := New(WithMaxWorkers(1)).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, bundle.ParsedFiles)
}
