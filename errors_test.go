package ckbridge

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"target not found", &TargetNotFoundError{ID: "main"}, ErrTargetNotFound, `"main"`},
		{"unsupported option", &UnsupportedOptionError{Option: "explicitSwapControl"}, ErrUnsupportedOption, "explicitSwapControl"},
		{"context creation", &GpuContextCreationError{Handle: -3}, ErrGpuContextCreation, "err -3"},
		{"feature not compiled", &FeatureNotCompiledError{Entry: "MakeManagedAnimation"}, ErrFeatureNotCompiled, "MakeManagedAnimation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost its category: %v", wrapped)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestTypedErrorsDoNotCrossMatch(t *testing.T) {
	err := &TargetNotFoundError{ID: "x"}
	if errors.Is(err, ErrInvalidTarget) {
		t.Error("TargetNotFoundError should not match ErrInvalidTarget")
	}
	if errors.Is(&UnsupportedOptionError{Option: "a"}, ErrGpuContextCreation) {
		t.Error("UnsupportedOptionError should not match ErrGpuContextCreation")
	}
}

func TestUnsupportedOptionErrorReason(t *testing.T) {
	err := &UnsupportedOptionError{Option: "stencil", Reason: "negative bit depth"}
	if got := err.Error(); !strings.HasSuffix(got, ": negative bit depth") {
		t.Errorf("Error() = %q", got)
	}
}
