// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package main

import "testing"

func TestNewProgressConfig(t *testing.T) {
	tests := []struct {
		name            string
		globals         GlobalFlags
		expectedEnabled bool
		expectedNoColor bool
	}{
		{
			name:            "default flags - progress disabled in test (not a TTY)",
			globals:         GlobalFlags{},
			expectedEnabled: false,
			expectedNoColor: false,
		},
		{
			name:            "quiet mode - progress disabled",
			globals:         GlobalFlags{Quiet: true},
			expectedEnabled: false,
			expectedNoColor: false,
		},
		{
			name:            "noColor flag propagates to config",
			globals:         GlobalFlags{NoColor: true},
			expectedEnabled: false,
			expectedNoColor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProgressConfig(tt.globals)
			if cfg.Enabled != tt.expectedEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.expectedEnabled)
			}
			if cfg.NoColor != tt.expectedNoColor {
				t.Errorf("NoColor = %v, want %v", cfg.NoColor, tt.expectedNoColor)
			}
		})
	}
}

func TestNewSpinner_NilWhenDisabled(t *testing.T) {
	cfg := NewProgressConfig(GlobalFlags{Quiet: true})
	if bar := NewSpinner(cfg, "Analyzing"); bar != nil {
		t.Errorf("expected nil spinner when progress is disabled, got %v", bar)
	}
}
