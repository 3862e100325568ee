package nfa

import "github.com/coregx/regexcore/input"

// backtracker runs the bounded backtracking VM described in spec.md §4.5:
// a depth-first walk with an explicit job stack, bounded to worst-case
// O(program_size * input_length) by memoizing visited (pc, byte_pos)
// pairs.
type backtracker struct {
	prog *Program
	cur  input.Cursor
	caps []int // the caller's capture buffer; mutated in place, see step
	st   *backtrackState
}

// ExecBacktrack runs the bounded backtracker against text starting at byte
// offset start, writing capture offsets into caps (spec.md §4.5, "exec").
// caps must be either empty (existence-only mode) or exactly
// 2*NumCaptures() long.
func (p *Program) ExecBacktrack(caps []int, text []byte, start int) bool {
	st := p.getBacktrackState()
	defer p.putBacktrackState(st)
	st.reset(len(text))

	b := &backtracker{prog: p, cur: input.New(text), caps: caps, st: st}
	return b.run(start)
}

// run implements the outer loop shared with the NFA: identical prefix-
// advance logic, retried at each candidate start position until the text
// is exhausted (spec.md §4.5, "Outer loop").
func (b *backtracker) run(start int) bool {
	at := b.cur.At(start)

	if b.prog.AnchoredBegin {
		if !at.IsBeginning() {
			return false
		}
		next, ok := b.cur.PrefixAt(b.prog.Prefixes, at)
		if !ok {
			return false
		}
		return b.backtrack(next)
	}

	for {
		next, ok := b.cur.PrefixAt(b.prog.Prefixes, at)
		if !ok {
			return false
		}
		at = next
		if b.backtrack(at) {
			return true
		}
		if at.IsEnd() {
			return false
		}
		at = b.cur.At(at.NextPos())
	}
}

// backtrack explores every alternative reachable from pc=0 at startAt
// depth-first, returning true as soon as some path reaches Match (spec.md
// §4.5, "backtrack").
func (b *backtracker) backtrack(startAt input.At) bool {
	b.push(0, startAt)
	for {
		job, ok := b.st.pop()
		if !ok {
			return false
		}
		switch job.kind {
		case jobInst:
			if b.step(job.pc, b.cur.At(job.at)) {
				return true
			}
		case jobSaveRestore:
			b.caps[job.slot] = job.old
		case jobSplitNext:
			b.push(job.pc, b.cur.At(job.at))
		}
	}
}

// step is the tight inner loop of spec.md §4.5: it walks instructions that
// don't require revisiting the job stack (Save, Jump, Split, EmptyLook,
// Char, Ranges) in a plain loop, pushing a SplitNext job for the deferred
// branch of every Split and checking the visited set after every pc
// advance to cut off redundant exploration.
func (b *backtracker) step(pc int, at input.At) bool {
	textLen := b.cur.Len()
	capsLen := len(b.caps)

	for {
		inst := b.prog.Insts[pc]
		switch inst.Op {
		case OpMatch:
			return true
		case OpSave:
			if inst.X < capsLen {
				old := b.caps[inst.X]
				b.st.pushSaveRestore(inst.X, old)
				b.caps[inst.X] = at.Pos
			}
			pc++
		case OpJump:
			pc = inst.X
		case OpSplit:
			b.st.pushSplitNext(inst.Y, at)
			pc = inst.X
		case OpEmptyLook:
			prev := b.cur.PreviousAt(at.Pos).Char
			if inst.Look.Matches(prev, at.Char) {
				pc++
			} else {
				return false
			}
		case OpChar, OpRanges:
			if matchChar(inst, at.Char) {
				pc++
				at = b.cur.At(at.NextPos())
			} else {
				return false
			}
		}
		if !b.st.shouldVisit(pc, at.Pos, textLen) {
			return false
		}
	}
}

// push stacks an Inst job for (pc, at) unless that pair has already been
// visited during this ExecBacktrack run.
func (b *backtracker) push(pc int, at input.At) {
	if b.st.shouldVisit(pc, at.Pos, b.cur.Len()) {
		b.st.pushInst(pc, at.Pos)
	}
}
