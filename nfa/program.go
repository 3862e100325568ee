// Package nfa holds the compiled instruction model that both virtual
// machines execute: the Inst tagged union, the Program that wraps a
// validated instruction stream with its extracted metadata, and the two
// engines (PikeVM, BoundedBacktracker) that walk it.
//
// Programs are produced by an external compiler collaborator (out of
// scope here: see New) and, once constructed, are treated as
// immutable — every mutable piece of per-run state lives in the scratch
// pool instead (pool.go).
package nfa

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/regexcore/char"
	"github.com/coregx/regexcore/prefix"
)

// Op identifies the kind of a single Inst (spec.md §3, "Instruction").
type Op uint8

const (
	// OpMatch is a terminal accept.
	OpMatch Op = iota
	// OpSave records the cursor's current byte position into a capture slot.
	OpSave
	// OpJump is an unconditional transfer to another pc.
	OpJump
	// OpSplit is a nondeterministic branch; X is the preferred (leftmost-first) alternative.
	OpSplit
	// OpEmptyLook is a zero-width assertion.
	OpEmptyLook
	// OpChar consumes one scalar equal to C.
	OpChar
	// OpRanges consumes one scalar lying in any of Ranges.
	OpRanges
)

// String returns a human-readable Op name, used by program diagnostics and
// test failure messages.
func (op Op) String() string {
	switch op {
	case OpMatch:
		return "Match"
	case OpSave:
		return "Save"
	case OpJump:
		return "Jump"
	case OpSplit:
		return "Split"
	case OpEmptyLook:
		return "EmptyLook"
	case OpChar:
		return "Char"
	case OpRanges:
		return "Ranges"
	default:
		return "Unknown"
	}
}

// LookKind identifies a zero-width assertion (spec.md §4.4, "Empty-look semantics").
type LookKind uint8

const (
	StartLine LookKind = iota
	EndLine
	StartText
	EndText
	WordBoundary
	NotWordBoundary
)

// String returns a human-readable LookKind name.
func (k LookKind) String() string {
	switch k {
	case StartLine:
		return "StartLine"
	case EndLine:
		return "EndLine"
	case StartText:
		return "StartText"
	case EndText:
		return "EndText"
	case WordBoundary:
		return "WordBoundary"
	case NotWordBoundary:
		return "NotWordBoundary"
	default:
		return "Unknown"
	}
}

// Matches reports whether the assertion holds between the character
// immediately preceding the cursor (prev) and the character at it (cur).
func (k LookKind) Matches(prev, cur char.Char) bool {
	switch k {
	case StartLine:
		return prev.IsAbsent() || prev.Equal('\n')
	case EndLine:
		return cur.IsAbsent() || cur.Equal('\n')
	case StartText:
		return prev.IsAbsent()
	case EndText:
		return cur.IsAbsent()
	case WordBoundary:
		return prev.IsWordChar() != cur.IsWordChar()
	case NotWordBoundary:
		return prev.IsWordChar() == cur.IsWordChar()
	default:
		return false
	}
}

// Range is an inclusive interval of scalar values. A Ranges instruction
// holds a sorted, non-overlapping list of these.
type Range struct {
	Lo, Hi rune
}

// Inst is a single instruction in a compiled Program (spec.md §3). Only the
// fields relevant to Op are meaningful; the zero value of the rest is
// ignored.
type Inst struct {
	Op Op

	// Save: the capture slot to write (even = group start, odd = group end).
	// Jump: the target pc.
	// Split: the preferred (leftmost-first) target pc.
	X int

	// Split: the non-preferred target pc, tried after X on backtrack.
	Y int

	// EmptyLook: which assertion to evaluate.
	Look LookKind

	// Char: the scalar to match.
	C rune

	// Char, Ranges: fold the input character before comparing.
	CaseInsensitive bool

	// Ranges: sorted, non-overlapping inclusive intervals.
	Ranges []Range
}

// InstMatch builds a terminal accept instruction.
func InstMatch() Inst { return Inst{Op: OpMatch} }

// InstSave builds a Save(slot) instruction.
func InstSave(slot int) Inst { return Inst{Op: OpSave, X: slot} }

// InstJump builds a Jump(to) instruction.
func InstJump(to int) Inst { return Inst{Op: OpJump, X: to} }

// InstSplit builds a Split(x, y) instruction; x is tried first.
func InstSplit(x, y int) Inst { return Inst{Op: OpSplit, X: x, Y: y} }

// InstEmptyLook builds an EmptyLook(kind) instruction.
func InstEmptyLook(kind LookKind) Inst { return Inst{Op: OpEmptyLook, Look: kind} }

// InstChar builds a Char{c, case_insensitive} instruction.
func InstChar(c rune, caseInsensitive bool) Inst {
	return Inst{Op: OpChar, C: c, CaseInsensitive: caseInsensitive}
}

// InstRanges builds a Ranges{ranges, case_insensitive} instruction. ranges
// must already be sorted and non-overlapping.
func InstRanges(ranges []Range, caseInsensitive bool) Inst {
	return Inst{Op: OpRanges, Ranges: ranges, CaseInsensitive: caseInsensitive}
}

// matchChar reports whether c satisfies inst, which must be OpChar or OpRanges.
func matchChar(inst Inst, c char.Char) bool {
	if c.IsAbsent() {
		return false
	}
	switch inst.Op {
	case OpChar:
		if inst.CaseInsensitive {
			return c.CaseFold().Equal(char.From(inst.C).CaseFold().Rune())
		}
		return c.Equal(inst.C)
	case OpRanges:
		return matchRanges(inst.Ranges, c, inst.CaseInsensitive)
	default:
		return false
	}
}

// matchRanges implements the range lookup described in spec.md §4.4: a
// linear probe of the first few intervals (cheap for ASCII-heavy inputs,
// where a match is usually in the first range or two), then a binary
// search over the rest.
func matchRanges(ranges []Range, c char.Char, caseInsensitive bool) bool {
	if c.IsAbsent() {
		return false
	}
	r := c.Rune()
	if caseInsensitive {
		return rangesContainFolded(ranges, r)
	}
	return rangesContain(ranges, r)
}

// rangesContainFolded checks r and every rune in its simple case-fold
// orbit against ranges, since a case-insensitive Ranges instruction may
// have been built around only one case variant of a covered rune.
func rangesContainFolded(ranges []Range, r rune) bool {
	if rangesContain(ranges, r) {
		return true
	}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if rangesContain(ranges, f) {
			return true
		}
	}
	return false
}

const linearProbeLimit = 4

func rangesContain(ranges []Range, r rune) bool {
	n := len(ranges)
	probe := n
	if probe > linearProbeLimit {
		probe = linearProbeLimit
	}
	for i := 0; i < probe; i++ {
		if r >= ranges[i].Lo && r <= ranges[i].Hi {
			return true
		}
	}
	lo, hi := probe, n
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case ranges[mid].Hi < r:
			lo = mid + 1
		case ranges[mid].Lo > r:
			hi = mid
		default:
			return true
		}
	}
	return false
}

// Program is the compiled form a VM executes: a linear instruction stream
// plus the metadata extracted from it (spec.md §3).
type Program struct {
	Original string
	Insts    []Inst
	CapNames []string

	Prefixes      *prefix.Set
	AnchoredBegin bool
	AnchoredEnd   bool

	numCaptures int

	pikePool      sync.Pool
	backtrackPool sync.Pool
}

// New validates insts against the invariants spec.md §3 requires of a
// compiled Program, extracts its anchoring flags and literal prefixes, and
// returns the constructed Program. original and capNames are carried
// through unchanged for diagnostics and the named-capture accessors.
//
// Construction is the one place the core checks its external compiler
// collaborator's contract (spec.md §7): a malformed instruction stream is
// a construction-time failure, not a per-match one.
func New(original string, insts []Inst, capNames []string) (*Program, error) {
	if err := validate(insts); err != nil {
		return nil, &ProgramError{Original: original, Err: err}
	}

	p := &Program{
		Original:      original,
		Insts:         insts,
		CapNames:      capNames,
		AnchoredBegin: isAnchoredBegin(insts),
		AnchoredEnd:   isAnchoredEnd(insts),
		numCaptures:   countCaptures(insts),
	}
	p.Prefixes = prefix.NewSet(extractPrefixes(insts)...)
	p.initPools()
	return p, nil
}

func validate(insts []Inst) error {
	n := len(insts)
	if n == 0 {
		return ErrEmptyProgram
	}
	if insts[0].Op != OpSave || insts[0].X != 0 {
		return ErrMissingPreamble
	}
	if n < 2 || insts[n-2].Op != OpSave || insts[n-2].X != 1 {
		return ErrMissingClosingSave
	}
	if insts[n-1].Op != OpMatch {
		return ErrMissingFinalMatch
	}
	for _, inst := range insts {
		switch inst.Op {
		case OpJump:
			if inst.X < 0 || inst.X >= n {
				return ErrTargetOutOfRange
			}
		case OpSplit:
			if inst.X < 0 || inst.X >= n || inst.Y < 0 || inst.Y >= n {
				return ErrTargetOutOfRange
			}
		}
	}
	return nil
}

func isAnchoredBegin(insts []Inst) bool {
	return len(insts) > 1 && insts[1].Op == OpEmptyLook && insts[1].Look == StartText
}

func isAnchoredEnd(insts []Inst) bool {
	n := len(insts)
	return n >= 3 && insts[n-3].Op == OpEmptyLook && insts[n-3].Look == EndText
}

func countCaptures(insts []Inst) int {
	highest := -1
	for _, inst := range insts {
		if inst.Op == OpSave && inst.X > highest {
			highest = inst.X
		}
	}
	return (highest + 1 + 1) / 2
}

// extractPrefixes implements the literal-prefix walk of spec.md §4.3. It
// returns nil when the heuristic gives up, in which case Prefixes is an
// empty Set and every VM falls back to scanning every position.
func extractPrefixes(insts []Inst) [][]byte {
	if len(insts) < 2 {
		return nil
	}
	switch insts[1].Op {
	case OpChar:
		if insts[1].CaseInsensitive {
			return nil
		}
		return [][]byte{literalChain(insts, 1)}
	case OpSplit:
		return extractFromSplit(insts, insts[1])
	default:
		return nil
	}
}

func extractFromSplit(insts []Inst, split Inst) [][]byte {
	isLiteral := func(pc int) bool {
		return insts[pc].Op == OpChar && !insts[pc].CaseInsensitive
	}
	isSplit := func(pc int) bool {
		return insts[pc].Op == OpSplit
	}

	switch {
	case isLiteral(split.X) && isLiteral(split.Y):
		return [][]byte{literalChain(insts, split.X), literalChain(insts, split.Y)}
	case isLiteral(split.X) && isSplit(split.Y):
		rest := extractFromSplit(insts, insts[split.Y])
		if rest == nil {
			return nil
		}
		return append([][]byte{literalChain(insts, split.X)}, rest...)
	case isLiteral(split.Y) && isSplit(split.X):
		rest := extractFromSplit(insts, insts[split.X])
		if rest == nil {
			return nil
		}
		return append([][]byte{literalChain(insts, split.Y)}, rest...)
	default:
		return nil
	}
}

// literalChain walks consecutive case-sensitive Char instructions starting
// at pc, encoding each scalar as UTF-8 and concatenating the result.
func literalChain(insts []Inst, pc int) []byte {
	var buf []byte
	var tmp [utf8.UTFMax]byte
	for pc < len(insts) {
		inst := insts[pc]
		if inst.Op != OpChar || inst.CaseInsensitive {
			break
		}
		n := utf8.EncodeRune(tmp[:], inst.C)
		buf = append(buf, tmp[:n]...)
		pc++
	}
	return buf
}

// NumCaptures returns the number of capture groups, equal to (highest Save
// slot + 1) / 2 (spec.md §6).
func (p *Program) NumCaptures() int {
	return p.numCaptures
}

// AllocCaptures returns a fresh capture buffer of length 2*NumCaptures(),
// with every slot set to the "unset" sentinel -1 (spec.md §6,
// "alloc_captures").
func (p *Program) AllocCaptures() []int {
	caps := make([]int, 2*p.numCaptures)
	for i := range caps {
		caps[i] = -1
	}
	return caps
}

// CaptureNames returns the program's capture-group names, indexed by group
// number (group 0, the whole match, is never named and has an empty
// string placeholder at index 0).
func (p *Program) CaptureNames() []string {
	out := make([]string, len(p.CapNames))
	copy(out, p.CapNames)
	return out
}

// SubexpIndex returns the group number of the first capture group named
// name, and whether one was found.
func (p *Program) SubexpIndex(name string) (int, bool) {
	for i, n := range p.CapNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Clone returns a copy of p with a fresh, empty scratch pool (spec.md
// §9: "cloning a Program creates a fresh empty pool"). The instruction
// stream, capture names, and extracted prefixes are copied rather than
// shared (each Inst is copied by value, so the Ranges slice inside a
// Ranges instruction still shares its backing array with the original)
// so the clone can be mutated independently of the original --
// only Insts ever would be, and Program never exposes a mutator for it,
// but the copy keeps Clone's contract simple to reason about.
func (p *Program) Clone() *Program {
	insts := make([]Inst, len(p.Insts))
	copy(insts, p.Insts)
	names := make([]string, len(p.CapNames))
	copy(names, p.CapNames)

	clone := &Program{
		Original:      p.Original,
		Insts:         insts,
		CapNames:      names,
		Prefixes:      prefix.NewSet(extractPrefixes(insts)...),
		AnchoredBegin: p.AnchoredBegin,
		AnchoredEnd:   p.AnchoredEnd,
		numCaptures:   p.numCaptures,
	}
	clone.initPools()
	return clone
}
