// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package gapfeatures

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultHazardTokenThreshold flags any file whose estimated token count
// exceeds this as a "large" hazard.
const DefaultHazardTokenThreshold = 10000

// dataDirPatterns are directory-name globs whose contents are flagged as
// "data" hazards regardless of size, mirroring the generated-artifact
// directories a context-window-bounded reader should skip.
var dataDirPatterns = []string{"artifacts", "cache", "logs", "neo4j_*", "*.egg-info"}

// HazardOptions configures Hazards.
type HazardOptions struct {
	TokenThreshold int64
}

func (o HazardOptions) withDefaults() HazardOptions {
	if o.TokenThreshold <= 0 {
		o.TokenThreshold = DefaultHazardTokenThreshold
	}
	return o
}

// Hazards implements GapFeatures' hazard sub-feature: every oversized or
// generated/data-directory file becomes a Hazard, then hazards sharing a
// directory (>= 2 of them) collapse to a single directory glob.
func Hazards(files []model.FileRecord, opts HazardOptions) []model.Hazard {
	opts = opts.withDefaults()

	var out []model.Hazard
	for _, f := range files {
		if f.ParseStatus == model.ParseStatusUnreadable {
			continue
		}
		if inDataDir(f.RelPath) {
			out = append(out, model.Hazard{RelPath: f.RelPath, TokenEst: f.TokenEst, Reason: model.HazardReasonData})
			continue
		}
		if f.TokenEst > opts.TokenThreshold {
			out = append(out, model.Hazard{RelPath: f.RelPath, TokenEst: f.TokenEst, Reason: model.HazardReasonLarge})
		}
	}

	perDir := map[string]int{}
	for _, h := range out {
		perDir[filepath.Dir(h.RelPath)]++
	}
	for i, h := range out {
		dir := filepath.Dir(h.RelPath)
		if perDir[dir] >= 2 {
			out[i].SuggestedGlob = dir + "/**"
		} else {
			out[i].SuggestedGlob = h.RelPath
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}

func inDataDir(relPath string) bool {
	segments := strings.Split(filepath.Dir(relPath), "/")
	for _, seg := range segments {
		for _, pattern := range dataDirPatterns {
			if ok, _ := filepath.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}
