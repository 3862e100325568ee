package nfa

import (
	"errors"
	"strings"
	"testing"
)

func TestProgramErrorUnwrap(t *testing.T) {
	err := &ProgramError{Original: "a+", Err: ErrMissingFinalMatch}
	if !errors.Is(err, ErrMissingFinalMatch) {
		t.Error("errors.Is should see through ProgramError to the sentinel")
	}
}

func TestProgramErrorMessageIncludesPattern(t *testing.T) {
	err := &ProgramError{Original: "a+", Err: ErrMissingFinalMatch}
	got := err.Error()
	if got == "" {
		t.Fatal("Error() returned an empty string")
	}
	if !strings.Contains(got, `"a+"`) {
		t.Errorf("Error() = %q, want it to name the pattern %q", got, "a+")
	}
	if !errors.Is(err, ErrMissingFinalMatch) {
		t.Error("expected ErrMissingFinalMatch in the chain")
	}
}

func TestProgramErrorMessageWithoutPattern(t *testing.T) {
	err := &ProgramError{Err: ErrEmptyProgram}
	got := err.Error()
	if got == "" {
		t.Fatal("Error() returned an empty string")
	}
}

func TestNewWrapsSentinelErrors(t *testing.T) {
	_, err := New("bad", nil, nil)
	if !errors.Is(err, ErrEmptyProgram) {
		t.Errorf("New() error chain should contain ErrEmptyProgram, got %v", err)
	}
}
