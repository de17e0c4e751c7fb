// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gitanalysis

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGitT(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=tester", "GIT_AUTHOR_EMAIL=tester@example.com",
		"GIT_COMMITTER_NAME=tester", "GIT_COMMITTER_EMAIL=tester@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeAndCommit(t *testing.T, dir, path, content, subject string) {
	t.Helper()
	full := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	runGitT(t, dir, "add", path)
	runGitT(t, dir, "commit", "-m", subject)
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGitT(t, dir, "init", "-q")
	return dir
}

func TestRun_RiskWindowSurfacesChurnedFile(t *testing.T) {
	dir := newTestRepo(t)
	writeAndCommit(t, dir, "a.py", "x = 1\n", "initial commit")
	writeAndCommit(t, dir, "a.py", "x = 2\n", "fix: correct value")
	writeAndCommit(t, dir, "a.py", "x = 3\n", "tweak again")
	writeAndCommit(t, dir, "b.py", "y = 1\n", "unrelated file")

	res := New(dir).Run(context.Background())
	require.NotEmpty(t, res.Risk)

	for _, r := range res.Risk {
		if r.RelPath == "a.py" {
			assert.GreaterOrEqual(t, r.Churn, 3)
			assert.GreaterOrEqual(t, r.Hotfix, 1)
			return
		}
	}
	t.Fatal("expected a.py in risk results")
}

func TestRun_CouplingFindsCoChangedPair(t *testing.T) {
	dir := newTestRepo(t)
	for i := 0; i < 3; i++ {
		digit := string(rune('0' + i))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "x.py"), []byte("x = "+digit+"\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "y.py"), []byte("y = "+digit+"\n"), 0o644))
		runGitT(t, dir, "add", "-A")
		runGitT(t, dir, "commit", "-m", "touch x and y together")
	}

	a := New(dir, WithMinCouplingCount(1))
	res := a.Run(context.Background())

	found := false
	for _, c := range res.Coupling {
		if (c.A == "x.py" && c.B == "y.py") || (c.A == "y.py" && c.B == "x.py") {
			found = true
		}
	}
	assert.True(t, found, "expected x.py/y.py coupling pair, got %+v", res.Coupling)
}

func TestRun_FreshnessCategorizesByAge(t *testing.T) {
	dir := newTestRepo(t)
	writeAndCommit(t, dir, "old.py", "pass\n", "old commit")

	a := New(dir, WithNow(time.Now().Add(200*24*time.Hour)))
	res := a.Run(context.Background())

	var got bool
	for _, f := range res.Freshness {
		if f.RelPath == "old.py" {
			assert.Equal(t, "dormant", string(f.Category))
			got = true
		}
	}
	assert.True(t, got)
}

func TestRun_NonRepoYieldsWarningNotError(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	res := New(dir).Run(context.Background())
	assert.NotEmpty(t, res.Warnings)
	assert.Empty(t, res.Risk)
}
