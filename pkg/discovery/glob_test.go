// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import "testing"

func TestMatchesGlob_BasicPatterns(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"exact match", "main.py", "main.py", true},
		{"exact no match", "main.py", "app.py", false},

		{"star suffix", "foo.pyc", "*.pyc", true},
		{"star prefix", "test_foo.py", "test_*", true},
		{"star no match ext", "foo.txt", "*.py", false},

		{"doublestar prefix any depth", "a/b/c/foo.py", "**/*.py", true},
		{"doublestar prefix root", "foo.py", "**/*.py", true},
		{"doublestar suffix", "venv/lib/site.py", "venv/**", true},
		{"doublestar suffix nested", "venv/a/b/c/d.py", "venv/**", true},

		{"question single", "foo.py", "fo?.py", true},
		{"question no match", "fooo.py", "fo?.py", false},

		{"char class match", "foo.py", "foo.[pq]y", true},
		{"char class no match", "foo.py", "foo.[ab]y", false},
		{"char range match", "file1.py", "file[0-9].py", true},
		{"char range no match", "filea.py", "file[0-9].py", false},
		{"negated class match", "foo.py", "foo.[!ab]y", true},

		{".git dir exact", ".git", ".git/**", true},
		{".git subdir", ".git/objects/pack", ".git/**", true},
		{"pycache deep", "__pycache__/mod.cpython-312.pyc", "__pycache__/**", true},

		{"implicit prefix", "src/conftest.py", "conftest.py", true},
		{"implicit prefix nested", "a/b/c/conftest.py", "conftest.py", true},

		{"bin nested dir", "apps/service/bin", "bin/**", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesGlob(tt.path, tt.pattern); got != tt.want {
				t.Errorf("matchesGlob(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatchCharClass(t *testing.T) {
	tests := []struct {
		c     byte
		class string
		want  bool
	}{
		{'a', "abc", true},
		{'d', "abc", false},
		{'5', "0-9", true},
		{'x', "0-9", false},
		{'a', "!abc", false},
		{'d', "!abc", true},
	}
	for _, tt := range tests {
		if got := matchCharClass(tt.c, tt.class); got != tt.want {
			t.Errorf("matchCharClass(%q, %q) = %v, want %v", tt.c, tt.class, got, tt.want)
		}
	}
}
