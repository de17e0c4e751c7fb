// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/kraklabs/pyxray/internal/config"
	pxerrors "github.com/kraklabs/pyxray/internal/errors"
	"github.com/kraklabs/pyxray/internal/ui"
)

// resolveConfig builds the effective section-enable map in the order
// §6 specifies: defaults <- preset <- user config <- CLI flags.
func resolveConfig(presetName, configPath string, disabled []string, globals GlobalFlags) (config.Config, error) {
	cfg := config.Default()

	if presetName != "" {
		preset, err := config.Preset(presetName)
		if err != nil {
			return config.Config{}, pxerrors.NewInvalidArgsError(
				"Invalid --preset value",
				err.Error(),
				"Use one of: minimal, standard, full",
			)
		}
		cfg = config.Merge(cfg, preset)
	}

	if configPath != "" {
		warn := func(msg string) {
			if !globals.Quiet {
				ui.Warning(msg)
			}
		}
		userCfg, err := config.Load(configPath, warn)
		if err != nil {
			return config.Config{}, pxerrors.NewInvalidArgsError(
				"Could not load --config file",
				err.Error(),
				"Check the file exists and is valid YAML matching the section-enable schema",
			)
		}
		cfg = config.Merge(cfg, userCfg)
	}

	for _, name := range disabled {
		cfg = config.DisableSection(cfg, name)
	}

	return cfg, nil
}
