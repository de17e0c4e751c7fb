// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/pyxray/pkg/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverer_Walk_ExcludesDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "import os\n")
	writeFile(t, root, "pkg/util.py", "def f(): pass\n")
	writeFile(t, root, "venv/lib/site.py", "x = 1\n")
	writeFile(t, root, "__pycache__/app.cpython-312.pyc", "")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, "README.md", "not python\n")

	result, err := New().Walk(root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	var paths []string
	for _, f := range result.Files {
		paths = append(paths, f.RelPath)
	}

	want := map[string]bool{"app.py": true, "pkg/util.py": true}
	if len(paths) != len(want) {
		t.Fatalf("Walk() found %v, want exactly %v", paths, want)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected file in result: %s", p)
		}
	}
}

func TestDiscoverer_Walk_RecordsUnreadableOnOversize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", "x = 1\n")

	d := New(WithMaxFileSize(1))
	result, err := d.Walk(root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(result.Files))
	}
	if result.Files[0].ParseStatus != model.ParseStatusUnreadable {
		t.Errorf("ParseStatus = %v, want unreadable", result.Files[0].ParseStatus)
	}
}

func TestDiscoverer_Walk_MarksEntryNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "lib/helpers.py", "def f(): pass\n")
	writeFile(t, root, "tests/test_helpers.py", "def test_f(): pass\n")

	result, err := New().Walk(root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	byPath := map[string]model.FileRecord{}
	for _, f := range result.Files {
		byPath[f.RelPath] = f
	}

	if !byPath["main.py"].IsEntryName {
		t.Error("main.py should be marked as an entry name")
	}
	if byPath["lib/helpers.py"].IsEntryName {
		t.Error("lib/helpers.py should not be marked as an entry name")
	}
	if !byPath["tests/test_helpers.py"].IsEntryName {
		t.Error("tests/test_helpers.py should be marked as an entry name (test_ prefix)")
	}
}

func TestDiscoverer_Walk_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.py", "")
	writeFile(t, root, "a.py", "")
	writeFile(t, root, "m/b.py", "")

	result, err := New().Walk(root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	for i := 1; i < len(result.Files); i++ {
		if result.Files[i-1].RelPath > result.Files[i].RelPath {
			t.Fatalf("files not sorted: %s before %s", result.Files[i-1].RelPath, result.Files[i].RelPath)
		}
	}
}

func TestDiscoverer_Walk_TargetNotFound(t *testing.T) {
	d := New()
	if _, err := d.Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing target")
	}
}
