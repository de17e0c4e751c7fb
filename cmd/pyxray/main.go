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

// Package main implements the pyxray CLI: a thin front-end over
// pkg/orchestrator that resolves the effective section-enable map and
// writes the resulting AnalysisBundle as JSON.
//
// Usage:
//
//	pyxray <path>                       Analyze a directory, print JSON to stdout
//	pyxray <path> --preset minimal      Use a narrower section-enable map
//	pyxray <path> --config pyxray.yaml  Merge a user config over the preset
//	pyxray <path> --no-git --no-prose   Disable individual sections
//	pyxray --init-config                Print a config template and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/pyxray/internal/config"
	pxerrors "github.com/kraklabs/pyxray/internal/errors"
	"github.com/kraklabs/pyxray/internal/logging"
	"github.com/kraklabs/pyxray/internal/output"
	"github.com/kraklabs/pyxray/internal/ui"
	"github.com/kraklabs/pyxray/pkg/gapfeatures"
	"github.com/kraklabs/pyxray/pkg/hotspots"
	"github.com/kraklabs/pyxray/pkg/orchestrator"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		presetName  = flag.String("preset", "", "Section-enable preset: minimal, standard, or full")
		configPath  = flag.String("config", "", "Path to a YAML section-enable config")
		outPrefix   = flag.String("out", "", "Write <prefix>.json instead of stdout")
		quiet       = flag.Bool("quiet", false, "Suppress progress output")
		jsonMode    = flag.Bool("json-errors", false, "Report errors as JSON instead of formatted text")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.Int("verbose", 0, "Verbosity level for diagnostic logging")
		initConfig  = flag.Bool("init-config", false, "Print a default config template and exit")
	)

	// One --no-<section> bool flag per recognised section, registered
	// dynamically since the canonical set lives in internal/config.
	noFlags := make(map[string]*bool, len(config.AllSections()))
	for _, name := range config.AllSections() {
		noFlags[name] = flag.Bool("no-"+name, false, "Disable the "+name+" section")
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `pyxray - static structure and risk analysis for Python repositories

Usage:
  pyxray <path> [options]
  pyxray --init-config

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pyxray ./myrepo
  pyxray ./myrepo --preset minimal
  pyxray ./myrepo --config pyxray.yaml --no-git --no-prose
  pyxray ./myrepo --out report
  pyxray --init-config > pyxray.yaml
`)
	}

	// flag.Parse stops at the first non-flag argument; keep parsing after
	// each positional so options may follow <path>.
	var args []string
	rest := os.Args[1:]
	for {
		_ = flag.CommandLine.Parse(rest)
		rest = flag.Args()
		if len(rest) == 0 {
			break
		}
		args = append(args, rest[0])
		rest = rest[1:]
	}

	globals := GlobalFlags{Quiet: *quiet, JSON: *jsonMode, NoColor: *noColor, Verbose: *verbose}
	ui.InitColors(globals.NoColor)

	if *showVersion {
		fmt.Printf("pyxray version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(pxerrors.ExitSuccess)
	}

	if *initConfig {
		fmt.Print(config.DefaultTemplate())
		os.Exit(pxerrors.ExitSuccess)
	}

	if len(args) != 1 {
		flag.Usage()
		os.Exit(pxerrors.ExitInvalidArgs)
	}
	target := args[0]

	var disabled []string
	for name, ptr := range noFlags {
		if *ptr {
			disabled = append(disabled, name)
		}
	}

	cfg, err := resolveConfig(*presetName, *configPath, disabled, globals)
	if err != nil {
		pxerrors.FatalError(err, globals.JSON)
	}

	logger := logging.Default(nil)
	if globals.Verbose > 0 {
		logger = logging.New(os.Stderr, slog.LevelDebug)
	}

	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithToolVersion(version),
		orchestrator.WithEnabledSections(cfg.EnabledMap()),
		orchestrator.WithPillarCount(countOr(cfg, config.SectionPillars, gapfeatures.DefaultPillarCount)),
		orchestrator.WithHotspotCount(countOr(cfg, config.SectionMaintenanceHotspots, gapfeatures.DefaultHotspotCount)),
		orchestrator.WithHazardTokenThreshold(thresholdOr(cfg, config.SectionHazards, gapfeatures.DefaultHazardTokenThreshold)),
		orchestrator.WithHotspotOptions(hotspots.Options{TopN: countOr(cfg, config.SectionLogicMaps, hotspots.DefaultTopN)}),
	)

	progress := NewProgressConfig(globals)
	spinner := NewSpinner(progress, "Analyzing "+target)
	done := make(chan struct{})
	if spinner != nil {
		go tickSpinner(spinner, done)
	}

	ctx := context.Background()
	start := time.Now()
	bundle, err := orch.Run(ctx, target)
	close(done)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		pxerrors.FatalError(pxerrors.NewInvalidTargetError(
			"Could not analyze target",
			err.Error(),
			"Check that the path exists and is a readable directory",
			err,
		), globals.JSON)
	}

	if !globals.Quiet && globals.Verbose > 0 {
		ui.Infof("analyzed %d files in %s", bundle.TotalFiles, time.Since(start).Round(time.Millisecond))
	}

	if *outPrefix != "" {
		if err := writeJSONFile(*outPrefix+".json", bundle); err != nil {
			pxerrors.FatalError(pxerrors.NewInternalError(
				"Could not write output file",
				err.Error(),
				"Check that the output directory is writable",
				err,
			), globals.JSON)
		}
		if !globals.Quiet {
			ui.Success("wrote " + *outPrefix + ".json")
		}
		return
	}

	if err := output.JSON(bundle); err != nil {
		pxerrors.FatalError(pxerrors.NewInternalError(
			"Could not encode analysis result",
			err.Error(),
			"This is a bug; please report it",
			err,
		), globals.JSON)
	}
}

func countOr(cfg config.Config, section string, fallback int) int {
	if n, ok := cfg.Count(section); ok {
		return n
	}
	return fallback
}

func thresholdOr(cfg config.Config, section string, fallback int64) int64 {
	if n, ok := cfg.Threshold(section); ok {
		return n
	}
	return fallback
}

// tickSpinner advances an indeterminate spinner until done is closed.
// The orchestrator reports no incremental progress of its own, so this
// is the only way to keep the spinner animated across a long Run call.
func tickSpinner(bar *progressbar.ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func writeJSONFile(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return output.JSONTo(f, data)
}
