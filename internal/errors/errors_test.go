// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot read target", Err: fmt.Errorf("permission denied")},
			want: "Cannot read target: permission denied",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid section key"},
			want: "Invalid section key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	ue := &UserError{Message: "wrapped", Err: inner}
	if !errors.Is(ue, inner) {
		t.Errorf("errors.Is should find the wrapped error")
	}
}

func TestNewInvalidTargetError(t *testing.T) {
	ue := NewInvalidTargetError("Target not found", "the path does not exist", "check the path", nil)
	if ue.ExitCode != ExitTargetNotFound {
		t.Errorf("ExitCode = %d, want %d", ue.ExitCode, ExitTargetNotFound)
	}
}

func TestNewInvalidArgsError(t *testing.T) {
	ue := NewInvalidArgsError("Bad flag", "unknown preset", "use minimal|standard|full")
	if ue.ExitCode != ExitInvalidArgs {
		t.Errorf("ExitCode = %d, want %d", ue.ExitCode, ExitInvalidArgs)
	}
}

func TestNewInternalError(t *testing.T) {
	ue := NewInternalError("Unexpected nil bundle", "orchestrator returned nil", "please report this", nil)
	if ue.ExitCode != ExitInternal {
		t.Errorf("ExitCode = %d, want %d", ue.ExitCode, ExitInternal)
	}
}

func TestUserError_Format(t *testing.T) {
	ue := &UserError{Message: "msg", Cause: "cause", Fix: "fix"}
	out := ue.Format(true)
	if out == "" {
		t.Fatal("Format() returned empty string")
	}
	for _, want := range []string{"msg", "cause", "fix"} {
		if !contains(out, want) {
			t.Errorf("Format() output missing %q: %s", want, out)
		}
	}
}

func TestUserError_ToJSON(t *testing.T) {
	ue := &UserError{Message: "msg", Cause: "cause", Fix: "fix", ExitCode: ExitInvalidArgs}
	js := ue.ToJSON()
	if js.Error != "msg" || js.ExitCode != ExitInvalidArgs {
		t.Errorf("ToJSON() = %+v", js)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
