package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantSilent bool
	}{
		{"nil", nil, ExitOK, false},
		{"plain", base, ExitFailure, false},
		{"command", NewCommandError("filter", base), ExitFailure, false},
		{"exit", NewExitError(ExitInvalid, base), ExitInvalid, false},
		{"silent exit", NewExitError(ExitInvalid, nil), ExitInvalid, true},
		{"wrapped exit", fmt.Errorf("lint: %w", NewExitError(3, nil)), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantCode)
			}
			if got := Silent(tt.err); got != tt.wantSilent {
				t.Errorf("Silent() = %v, want %v", got, tt.wantSilent)
			}
		})
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	base := errors.New("source closed")
	err := NewCommandError("filter", base)
	if !errors.Is(err, base) {
		t.Error("errors.Is() = false, want true")
	}
	if err.Error() != "command filter failed: source closed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("records.path", "required")
	if err.Error() != "config error in records.path: required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExitError_Message(t *testing.T) {
	if got := NewExitError(2, nil).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
}
