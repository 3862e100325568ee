package nfa

// Config governs the one policy decision spec.md §9 leaves open ("Dual VM
// selection"). The Aho-Corasick arity cutoff prefix.Set uses is not part
// of Config; it is a fixed constant in package prefix. Config is a
// deliberately small counterpart to the teacher's
// meta.Config: this core needs one tuning knob where the teacher's full
// strategy selector needs a dozen.
type Config struct {
	// BacktrackMaxWork caps program_size * text_length for ShouldBacktrack:
	// below it, the backtracker's bounded exploration is cheap enough to
	// prefer over building the NFA's thread lists.
	BacktrackMaxWork int
}

// DefaultConfig returns the Config this package uses when none is supplied
// explicitly, mirroring meta.DefaultConfig()'s shape.
func DefaultConfig() Config {
	return Config{BacktrackMaxWork: 10_000}
}

// ShouldBacktrack reports whether the backtracker is preferred over the
// PikeVM for a program of the given instruction count matched against text
// of the given length (spec.md §9: "use the backtracker when
// program_size * text_length is small"). Both engines always agree on the
// result (spec.md §8, invariant 1); this only picks which one runs.
func (c Config) ShouldBacktrack(numInsts, textLen int) bool {
	return numInsts*(textLen+1) <= c.BacktrackMaxWork
}

// Exec runs whichever engine c.ShouldBacktrack selects for text/start
// against p, and is the convenience entry point a caller without its own
// selection policy can use in place of calling ExecNFA/ExecBacktrack
// directly.
func (p *Program) Exec(cfg Config, caps []int, text []byte, start int) bool {
	if cfg.ShouldBacktrack(len(p.Insts), len(text)-start) {
		return p.ExecBacktrack(caps, text, start)
	}
	return p.ExecNFA(caps, text, start)
}
