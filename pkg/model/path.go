// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package model holds the closed set of record types produced by the
// analysis pipeline (FileRecord, ClassRecord, MethodRecord, ImportEdge,
// CallSite, ...) and the graph/aggregate structures built on top of them.
// Every type here is immutable once constructed by its producing component;
// none holds a reference to another node, so traversals always go through
// an owning graph structure rather than pointer chasing.
package model

import (
	"path"
	"strings"
)

// ModulePath is the canonical dotted identifier for a source file within
// a target tree: directory separators become dots, the ".py" suffix is
// stripped, and an "__init__" leaf segment is stripped.
type ModulePath string

// NormalizeRelPath cleans a relative path the same way regardless of the
// platform it was discovered on: forward slashes, no leading "./", no
// leading slash.
func NormalizeRelPath(p string) string {
	if strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = path.Clean(filepathToSlash(p))
	p = strings.TrimPrefix(p, "/")
	return p
}

// filepathToSlash converts OS-specific separators to forward slashes
// without importing path/filepath into this leaf package.
func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// NewModulePath derives the canonical ModulePath for a relative .py path.
//
//	pkg/foo/bar.py        -> pkg.foo.bar
//	pkg/foo/__init__.py   -> pkg.foo
//	__init__.py           -> "" (package root; callers treat specially)
func NewModulePath(relPath string) ModulePath {
	rel := NormalizeRelPath(relPath)
	rel = strings.TrimSuffix(rel, ".py")
	segments := strings.Split(rel, "/")
	if n := len(segments); n > 0 && segments[n-1] == "__init__" {
		segments = segments[:n-1]
	}
	return ModulePath(strings.Join(segments, "."))
}

// String returns the dotted path as plain text.
func (m ModulePath) String() string { return string(m) }
