package nfa

import (
	"errors"
	"fmt"
)

// Sentinel errors for the program invariants a constructed Program is
// expected to satisfy (spec.md §3, §7: "contract violations... detection
// is not required, but implementations should not corrupt memory").
// New checks for these cheaply, at construction time, since the cost is
// paid once per Program rather than once per match.
var (
	// ErrEmptyProgram indicates an instruction stream with no instructions.
	ErrEmptyProgram = errors.New("nfa: program has no instructions")

	// ErrMissingPreamble indicates instruction 0 is not the wrapping Save(0).
	ErrMissingPreamble = errors.New("nfa: instruction 0 is not Save(0)")

	// ErrMissingClosingSave indicates the second-to-last instruction is not
	// the wrapping Save(1).
	ErrMissingClosingSave = errors.New("nfa: second-to-last instruction is not Save(1)")

	// ErrMissingFinalMatch indicates the last instruction is not Match.
	ErrMissingFinalMatch = errors.New("nfa: final instruction is not Match")

	// ErrTargetOutOfRange indicates a Jump or Split instruction names a
	// target pc outside [0, n).
	ErrTargetOutOfRange = errors.New("nfa: Jump/Split target out of range")
)

// ProgramError wraps a violated Program invariant with the pattern it was
// constructed for, mirroring the teacher's CompileError: a sentinel error
// plus enough context to identify which program failed.
type ProgramError struct {
	Original string
	Err      error
}

// Error implements the error interface.
func (e *ProgramError) Error() string {
	if e.Original != "" {
		return fmt.Sprintf("nfa: invalid program for pattern %q: %v", e.Original, e.Err)
	}
	return fmt.Sprintf("nfa: invalid program: %v", e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ProgramError) Unwrap() error {
	return e.Err
}
