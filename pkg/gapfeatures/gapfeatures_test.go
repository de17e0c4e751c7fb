// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pyxray/pkg/model"
)

func textReader(contents map[string]string) Reader {
	return func(f model.FileRecord) (string, error) {
		text, ok := contents[f.RelPath]
		if !ok {
			return "", fmt.Errorf("no fixture for %s", f.RelPath)
		}
		return text, nil
	}
}

func TestHazards_LargeAndDataReasons(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "pkg/big.py", TokenEst: 50000, ParseStatus: model.ParseStatusParsed},
		{RelPath: "artifacts/dump.py", TokenEst: 10, ParseStatus: model.ParseStatusParsed},
		{RelPath: "pkg/small.py", TokenEst: 10, ParseStatus: model.ParseStatusParsed},
	}
	out := Hazards(files, HazardOptions{})
	require.Len(t, out, 2)

	byPath := map[string]model.Hazard{}
	for _, h := range out {
		byPath[h.RelPath] = h
	}
	assert.Equal(t, model.HazardReasonLarge, byPath["pkg/big.py"].Reason)
	assert.Equal(t, model.HazardReasonData, byPath["artifacts/dump.py"].Reason)
}

func TestHazards_DirectoryCollapsesToGlob(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "pkg/a.py", TokenEst: 50000, ParseStatus: model.ParseStatusParsed},
		{RelPath: "pkg/b.py", TokenEst: 50000, ParseStatus: model.ParseStatusParsed},
	}
	out := Hazards(files, HazardOptions{})
	require.Len(t, out, 2)
	for _, h := range out {
		assert.Equal(t, "pkg/**", h.SuggestedGlob)
	}
}

func TestEntryPoints_MainGuardAndArgparse(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "cli.py", ParseStatus: model.ParseStatusParsed},
	}
	src := `
import argparse

def main():
	parser = argparse.ArgumentParser()
	parser.add_argument("--name", default="world", help="who to greet")
	parser.add_argument("--verbose", required=True)

if __name__ == "__main__":
	main()
`
	out := EntryPoints(files, textReader(map[string]string{"cli.py": src}))
	require.Len(t, out, 1)
	assert.Equal(t, model.EntryKindMainGuard, out[0].Kind)
	assert.Equal(t, model.CLIFrameworkArgparse, out[0].Framework)
	require.Len(t, out[0].Args, 2)
	assert.Equal(t, "name", out[0].Args[0].Name)
	assert.Equal(t, `"world"`, out[0].Args[0].Default)
	assert.True(t, out[0].Args[1].Required)
}

func TestEntryPoints_ScriptNameWithoutGuardStillDetected(t *testing.T) {
	files := []model.FileRecord{{RelPath: "app.py", ParseStatus: model.ParseStatusParsed}}
	out := EntryPoints(files, textReader(map[string]string{"app.py": "x = 1\n"}))
	require.Len(t, out, 1)
	assert.Equal(t, model.EntryKindScriptEntry, out[0].Kind)
}

func TestEnvVars_GetenvEnvironGetAndSubscript(t *testing.T) {
	files := []model.FileRecord{{RelPath: "config.py", ParseStatus: model.ParseStatusParsed}}
	src := `
HOST = os.getenv("HOST", "localhost")
PORT = os.environ.get("PORT")
KEY = os.environ["SECRET_KEY"]
`
	out := EnvVars(files, textReader(map[string]string{"config.py": src}))
	require.Len(t, out, 3)

	byName := map[string]model.EnvVar{}
	for _, e := range out {
		byName[e.Name] = e
	}
	assert.False(t, byName["HOST"].Required)
	assert.Equal(t, `"localhost"`, byName["HOST"].Default)
	assert.True(t, byName["PORT"].Required)
	assert.True(t, byName["SECRET_KEY"].Required)
}

func TestLinterRules_PyprojectRuffTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", `
[tool.ruff]
line-length = 100
select = ["E", "F"]
ignore = ["E203"]
`)
	rules := LinterRules(dir)
	assert.Equal(t, 100, rules.LineLength)
	assert.Equal(t, []string{"E", "F"}, rules.Select)
	assert.Equal(t, []string{"E203"}, rules.Ignore)
	assert.Equal(t, "pyproject.toml", rules.Source)
}

func TestLinterRules_FlakeIniFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".flake8", "[flake8]\nmax-line-length = 120\nignore = E501,W503\n")
	rules := LinterRules(dir)
	assert.Equal(t, 120, rules.LineLength)
	assert.Equal(t, []string{"E501", "W503"}, rules.Ignore)
	assert.Equal(t, ".flake8", rules.Source)
}

func TestLinterRules_NoConfigYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	rules := LinterRules(dir)
	assert.Equal(t, model.LinterRules{}, rules)
}

func TestPillars_RankedByInDegree(t *testing.T) {
	edges := []model.ImportEdge{
		{Source: "a", Target: "core", Kind: model.ImportKindInternal},
		{Source: "b", Target: "core", Kind: model.ImportKindInternal},
		{Source: "a", Target: "util", Kind: model.ImportKindInternal},
		{Source: "a", Target: "requests", Kind: model.ImportKindExternal},
	}
	out := Pillars(edges, 1)
	require.Len(t, out, 1)
	assert.Equal(t, model.ModulePath("core"), out[0])
}

func TestMaintenanceHotspots_TopKSlice(t *testing.T) {
	risk := []model.RiskEntry{{RelPath: "a.py", Score: 0.9}, {RelPath: "b.py", Score: 0.5}}
	out := MaintenanceHotspots(risk, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "a.py", out[0].RelPath)
}

func TestPersonas_LongPromptLikeLiteralDetected(t *testing.T) {
	files := []model.FileRecord{{RelPath: "agents/support.py", ParseStatus: model.ParseStatusParsed}}
	longPrompt := `"""You are a helpful assistant. ` + repeatChar(200) + `"""`
	out := Personas(files, textReader(map[string]string{"agents/support.py": longPrompt}))
	require.Len(t, out, 1)
	assert.Equal(t, "agents/support.py", out[0].RelPath)
}

func TestPersonas_ShortOrNonPromptLiteralSkipped(t *testing.T) {
	files := []model.FileRecord{{RelPath: "agents/support.py", ParseStatus: model.ParseStatusParsed}}
	out := Personas(files, textReader(map[string]string{"agents/support.py": `"""short docstring"""`}))
	assert.Empty(t, out)
}

func TestTestExample_PicksHighestVarietyUnderLineCap(t *testing.T) {
	files := []model.FileRecord{
		{RelPath: "tests/test_simple.py", ParseStatus: model.ParseStatusParsed},
		{RelPath: "tests/test_rich.py", ParseStatus: model.ParseStatusParsed},
	}
	contents := map[string]string{
		"tests/test_simple.py": "def test_one():\n    assert 1 == 1\n",
		"tests/test_rich.py":   "@pytest.fixture\ndef client():\n    return mock.MagicMock()\n\ndef test_two(client):\n    assert client\n",
	}
	out := TestExample(files, textReader(contents))
	require.NotNil(t, out)
	assert.Equal(t, "tests/test_rich.py", out.RelPath)
}

func repeatChar(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
