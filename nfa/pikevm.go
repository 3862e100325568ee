package nfa

import (
	"github.com/coregx/regexcore/input"
)

// pikeVM runs the Thompson NFA simulation described in spec.md §4.4: two
// thread lists ("current", "next") are advanced one input character at a
// time, with epsilon closure computed recursively by add.
type pikeVM struct {
	prog *Program
	cur  input.Cursor
}

// ExecNFA runs the PikeVM against text starting at byte offset start,
// writing capture offsets into caps (spec.md §4.4, "run"). caps must be
// either empty (existence-only mode) or exactly 2*NumCaptures() long, per
// the construction contract in spec.md §7.
func (p *Program) ExecNFA(caps []int, text []byte, start int) bool {
	threads := p.getNfaThreads()
	defer p.putNfaThreads(threads)

	v := &pikeVM{prog: p, cur: input.New(text)}
	return v.exec(threads, caps, start)
}

type stepResult uint8

const (
	stepContinue stepResult = iota
	stepMatch
	stepMatchEarly
)

func (v *pikeVM) exec(q *nfaThreads, caps []int, start int) bool {
	clist, nlist := q.clist, q.nlist
	clist.clear()
	nlist.clear()

	capsLen := len(caps)
	matched := false
	pos := start

	for {
		if clist.len() == 0 {
			if matched {
				break
			}
			if pos != 0 && v.prog.AnchoredBegin {
				break
			}
			if v.prog.Prefixes.Len() > 0 {
				at, ok := v.cur.PrefixAt(v.prog.Prefixes, v.cur.At(pos))
				if !ok {
					break
				}
				pos = at.Pos
			}
		}

		// Simulate the implicit, unanchored ".*?" prefix: inject a fresh
		// thread at pc 0 when clist is empty, or when the program is not
		// anchored and no match has been found yet (spec.md §4.4 step 2).
		if clist.len() == 0 || (!v.prog.AnchoredBegin && !matched) {
			v.add(clist, 0, caps, capsLen, pos)
		}

		curAt := v.cur.At(pos)
		nextPos := curAt.NextPos()

		matchedThisStep := false
		for i := 0; i < clist.len(); i++ {
			pc := clist.pcAt(i)
			threadCaps := clist.capsAt(i)
			switch v.step(caps, capsLen, nlist, threadCaps, pc, curAt, nextPos) {
			case stepMatchEarly:
				return true
			case stepMatch:
				matched = true
				matchedThisStep = true
			}
			if matchedThisStep {
				break
			}
		}

		if curAt.IsEnd() {
			break
		}
		clist, nlist = nlist, clist
		nlist.clear()
		pos = nextPos
	}
	return matched
}

// step consumes at most one character for the instruction at pc (spec.md
// §4.4, "step"): Match reports a result, Char/Ranges test the current
// character and extend the closure into nlist on success. Every other
// instruction was already resolved during the epsilon closure that placed
// it in clist, so step no-ops for it.
func (v *pikeVM) step(
	caps []int, capsLen int,
	nlist *threadList, threadCaps []int,
	pc int, curAt input.At, nextPos int,
) stepResult {
	inst := v.prog.Insts[pc]
	switch inst.Op {
	case OpMatch:
		if capsLen == 0 {
			return stepMatchEarly
		}
		copy(caps, threadCaps)
		return stepMatch
	case OpChar, OpRanges:
		if matchChar(inst, curAt.Char) {
			v.add(nlist, pc+1, threadCaps, capsLen, nextPos)
		}
	}
	return stepContinue
}

// add computes the epsilon closure reachable from pc, recording every
// visited pc in list and threading threadCaps through Save's
// snapshot/restore discipline (spec.md §4.4, "add"; §9, "Save/restore
// during closure").
func (v *pikeVM) add(list *threadList, pc int, threadCaps []int, capsLen int, pos int) {
	if list.contains(pc) {
		return
	}
	slot := list.add(pc)
	inst := v.prog.Insts[pc]

	switch inst.Op {
	case OpEmptyLook:
		prev := v.cur.PreviousAt(pos).Char
		cur := v.cur.At(pos).Char
		if inst.Look.Matches(prev, cur) {
			v.add(list, pc+1, threadCaps, capsLen, pos)
		}
	case OpSave:
		if inst.X >= capsLen {
			v.add(list, pc+1, threadCaps, capsLen, pos)
			return
		}
		old := threadCaps[inst.X]
		threadCaps[inst.X] = pos
		v.add(list, pc+1, threadCaps, capsLen, pos)
		threadCaps[inst.X] = old
	case OpJump:
		v.add(list, inst.X, threadCaps, capsLen, pos)
	case OpSplit:
		v.add(list, inst.X, threadCaps, capsLen, pos)
		v.add(list, inst.Y, threadCaps, capsLen, pos)
	case OpMatch, OpChar, OpRanges:
		copy(slot, threadCaps[:capsLen])
	}
}
